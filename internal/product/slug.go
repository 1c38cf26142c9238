package product

import (
	"regexp"
	"strings"
)

var (
	slugSpaces  = regexp.MustCompile(`[\s\x{200c}]+`) // includes Persian zero-width joiner
	slugStrip   = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
	slugTrimEnd = regexp.MustCompile(`^-+|-+$`)
)

// GenerateSlug builds a URL slug from a title. Persian-only titles reduce to
// an empty string; callers should fall back to a generated id in that case.
func GenerateSlug(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return slugTrimEnd.ReplaceAllString(s, "")
}
