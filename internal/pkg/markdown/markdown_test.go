package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	out, err := Render("# Heading\n\nSome **bold** text.")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	out, err := Render("")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("empty source rendered %q", out)
	}
}
