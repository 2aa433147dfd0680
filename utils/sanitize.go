package utils

import "github.com/microcosm-cc/bluemonday"

// Habit names, descriptions and categories are plain text; strip any markup
// rather than allowing a safe subset.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize removes all HTML from user supplied text.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
