package rodwrapper

import (
	"strings"
	"testing"
)

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func TestCleanSnapshot_RemovesScriptStyle(t *testing.T) {
	snapshot := `
<div class="main">
    <input id="first_name" name="first_name">
    <script>window.dataLayer = []</script>
    <style>.x {}</style>
</div>`

	out := CleanSnapshot(snapshot, &DefaultCleanConfig)

	if contains(out, "<script") || contains(out, "<style") {
		t.Errorf("script/style tags must be removed, output: %s", out)
	}
	if !contains(out, `id="first_name"`) {
		t.Errorf("expected to keep form controls")
	}
	if contains(out, "<body") || contains(out, "<html") {
		t.Errorf("fragment must not be wrapped in html/body, output: %s", out)
	}
}

func TestCleanSnapshot_RemovesComments(t *testing.T) {
	out := CleanSnapshot(`<div><!-- tracking --><label>Email</label></div>`, &DefaultCleanConfig)

	if contains(out, "tracking") {
		t.Errorf("HTML comments must be removed")
	}
}

func TestCleanSnapshot_AttributeFiltering(t *testing.T) {
	snapshot := `<label for="q1" data-x="1" aria-hidden="true" aria-label="Question 1" onclick="go()" style="color:red" class="lbl">Q1</label>`

	out := CleanSnapshot(snapshot, &DefaultCleanConfig)

	if !contains(out, `for="q1"`) || !contains(out, `class="lbl"`) {
		t.Errorf("for/class must be kept, output: %s", out)
	}
	if !contains(out, `aria-label="Question 1"`) {
		t.Errorf("aria-label must be kept")
	}
	for _, gone := range []string{"data-x", "aria-hidden", "onclick", "style="} {
		if contains(out, gone) {
			t.Errorf("%s must be removed, output: %s", gone, out)
		}
	}
}

func TestCleanSnapshot_DropsBlankLines(t *testing.T) {
	out := CleanSnapshot("<div>\n\n\n   \n<p>Hi</p>\n\n</div>", &DefaultCleanConfig)

	if contains(out, "\n\n") {
		t.Errorf("blank lines must be collapsed, output: %q", out)
	}
}

func TestCleanSnapshot_Truncation(t *testing.T) {
	var big strings.Builder
	big.WriteString("<div>")
	for i := 0; i < 20000; i++ {
		big.WriteString("<span>test</span>")
	}
	big.WriteString("</div>")

	out := CleanSnapshot(big.String(), &DefaultCleanConfig)

	if len(out) > DefaultCleanConfig.MaxOutputSize+100 {
		t.Errorf("output must be truncated near the limit, got %d", len(out))
	}
	if !contains(out, "form markup truncated") {
		t.Errorf("truncation notice must appear")
	}
}
