package publishing

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// nonSlugChars matches anything that isn't a lowercase letter, digit,
	// whitespace, or hyphen.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-{2,}`)
)

// Normalize turns free text into a URL-safe slug candidate.
// Example: "Hello, World! 2026" → "hello-world-2026".
// Applying Normalize to an already-normalized slug returns it unchanged.
func Normalize(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateSlug produces a slug for title that is absent from existing,
// suffixing -2, -3, … on collision. It is a pure function: the caller owns
// the live uniqueness check and must perform it atomically with the insert.
func GenerateSlug(title string, existing []string) (string, error) {
	base := Normalize(title)
	if base == "" {
		return "", ErrInvalidTitle
	}

	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base, nil
	}
	// At most len(existing)+1 probes before a free candidate is found.
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

// ValidateManualSlug checks an editor-chosen slug against the collection.
// Unlike GenerateSlug it never mutates the input on conflict: editors get a
// SlugConflictError and pick another slug themselves.
func ValidateManualSlug(slug string, existing []string) error {
	if Normalize(slug) != slug || slug == "" {
		return ErrInvalidTitle
	}
	for _, s := range existing {
		if s == slug {
			return &SlugConflictError{Slug: slug}
		}
	}
	return nil
}
