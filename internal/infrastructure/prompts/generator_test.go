package prompts

import (
	"strings"
	"testing"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

func TestGenerateMappingPrompt(t *testing.T) {
	req := &entity.MappingRequest{
		Fields: []entity.DiscoveredField{
			{Type: entity.ControlEmail, ID: "email", Label: "Email Address", Required: true},
		},
		FormSnapshot: `<form><label for="email">Email Address</label></form>`,
		Profile:      &entity.ApplicantProfile{PersonalInfo: entity.PersonalInfo{Email: "a@b.com"}},
	}

	prompt, err := GenerateMappingPrompt(MappingUserTemplate, req)
	if err != nil {
		t.Fatalf("GenerateMappingPrompt failed: %v", err)
	}

	expected := []string{
		`"email": "a@b.com"`,
		"Form fields (1):",
		`"label": "Email Address"`,
		"Form markup:",
		`<label for="email">`,
	}
	for _, want := range expected {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q\n%s", want, prompt)
		}
	}
}

func TestGenerateMappingPrompt_WithoutSnapshot(t *testing.T) {
	req := &entity.MappingRequest{Profile: &entity.ApplicantProfile{}}

	prompt, err := GenerateMappingPrompt(MappingUserTemplate, req)
	if err != nil {
		t.Fatalf("GenerateMappingPrompt failed: %v", err)
	}

	if strings.Contains(prompt, "Form markup") {
		t.Error("Markup section should be omitted without a snapshot")
	}
	if !strings.Contains(prompt, "Form fields (0):") {
		t.Errorf("Unexpected prompt:\n%s", prompt)
	}
}

func TestSystemPromptsEmbedded(t *testing.T) {
	if !strings.Contains(MappingSystemPrompt, `"formFields"`) {
		t.Error("Mapping prompt must describe the formFields reply")
	}
	if !strings.Contains(ChallengeSystemPrompt, `"clickPositions"`) {
		t.Error("Challenge prompt must describe the clickPositions reply")
	}
}

func TestGenerateMappingPrompt_BadTemplate(t *testing.T) {
	if _, err := GenerateMappingPrompt("{{ .Nope", &entity.MappingRequest{}); err == nil {
		t.Error("Expected a parse error")
	}
}
