package lib

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

var (
	nonSlugCharsRegExp   = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedDashesRegExp = regexp.MustCompile(`-+`)

	underscoresRegExp       = regexp.MustCompile(`_+`)
	slugDisallowedRegExp    = regexp.MustCompile(`[^-\pL\pN\s]+`)
	slugSeparatorRunsRegExp = regexp.MustCompile(`[-\s]+`)
)

// SanitizeClientName lowercases name, maps '_' and ' ' to '-', drops anything outside [a-z0-9-]
// and collapses dashes.
func SanitizeClientName(name string) string {
	sanitized := strings.ToLower(name)
	sanitized = strings.NewReplacer("_", "-", " ", "-").Replace(sanitized)
	sanitized = nonSlugCharsRegExp.ReplaceAllString(sanitized, "")
	sanitized = repeatedDashesRegExp.ReplaceAllString(sanitized, "-")
	return strings.Trim(sanitized, "-")
}

// Slug transliterates value to ASCII and joins its words with '-', the way Laravel's Str::slug does:
// punctuation such as '.' and '\'' is dropped rather than turned into a separator.
func Slug(value string) string {
	slug := unidecode.Unidecode(value)
	slug = underscoresRegExp.ReplaceAllString(slug, "-")
	slug = strings.ReplaceAll(slug, "@", "-at-")
	slug = slugDisallowedRegExp.ReplaceAllString(strings.ToLower(slug), "")
	slug = slugSeparatorRunsRegExp.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
