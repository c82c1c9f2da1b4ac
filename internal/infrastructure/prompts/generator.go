package prompts

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/AnthonySaldana/nujob/internal/domain/entity"
)

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
}

// GenerateMappingPrompt renders the user message of a mapping request.
func GenerateMappingPrompt(baseTemplate string, req *entity.MappingRequest) (string, error) {
	tmpl, err := template.New("mapping").Funcs(funcs).Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}

	return buf.String(), nil
}
