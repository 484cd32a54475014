package publishing

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World! 2026", "hello-world-2026"},
		{"  Annual   Report  ", "annual-report"},
		{"UPPER lower", "upper-lower"},
		{"already-normalized", "already-normalized"},
		{"double--hyphen", "double-hyphen"},
		{"-leading and trailing-", "leading-and-trailing"},
		{"!!!", ""},
		{"", ""},
		{"Dubai 2025: What's Next?", "dubai-2025-whats-next"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, title := range []string{"Annual Report", "FAQ #1 (updated)", "a  b   c"} {
		once := Normalize(title)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent: %q → %q → %q", title, once, twice)
		}
	}
}

func TestGenerateSlugSuffixing(t *testing.T) {
	var existing []string
	// Three identical titles in one collection get -2, -3 suffixes.
	want := []string{"annual-report", "annual-report-2", "annual-report-3"}
	for i, w := range want {
		got, err := GenerateSlug("Annual Report", existing)
		if err != nil {
			t.Fatalf("creation %d: %v", i+1, err)
		}
		if got != w {
			t.Fatalf("creation %d: got %q, want %q", i+1, got, w)
		}
		existing = append(existing, got)
	}
}

func TestGenerateSlugCaseAndPunctuationCollide(t *testing.T) {
	got, err := GenerateSlug("ANNUAL REPORT!!!", []string{"annual-report"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "annual-report-2" {
		t.Errorf("got %q, want annual-report-2", got)
	}
}

func TestGenerateSlugInvalidTitle(t *testing.T) {
	if _, err := GenerateSlug("?!*", nil); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("got %v, want ErrInvalidTitle", err)
	}
}

func TestGenerateSlugTermination(t *testing.T) {
	existing := make([]string, 0, 50)
	existing = append(existing, "x")
	for i := 2; i <= 50; i++ {
		existing = append(existing, fmt.Sprintf("x-%d", i))
	}
	got, err := GenerateSlug("x", existing)
	if err != nil {
		t.Fatal(err)
	}
	if got != "x-51" {
		t.Errorf("got %q, want x-51", got)
	}
}

func TestValidateManualSlug(t *testing.T) {
	if err := ValidateManualSlug("custom-slug", []string{"other"}); err != nil {
		t.Errorf("free manual slug rejected: %v", err)
	}

	err := ValidateManualSlug("taken", []string{"taken"})
	var conflict *SlugConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want SlugConflictError", err)
	}
	if conflict.Slug != "taken" {
		t.Errorf("conflict slug = %q", conflict.Slug)
	}

	// Manual slugs must already be in normalized form.
	if err := ValidateManualSlug("Not A Slug", nil); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("got %v, want ErrInvalidTitle", err)
	}
}
