package utils

import "regexp"

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// SanitizeString strips control characters from free-text fields before they
// are rendered into PDF or spreadsheet cells. Invoice data itself is stored
// as entered; only the rendered output is cleaned.
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
