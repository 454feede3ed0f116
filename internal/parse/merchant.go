package parse

import (
	"regexp"
	"strings"
)

var merchantPattern = regexp.MustCompile(`(?i)\b(?:paid to|to|at)\b\s+([A-Za-z][A-Za-z0-9&.'\-]*(?:\s[A-Za-z][A-Za-z0-9&.'\-]*){0,3})(?:\s+(?:on|using|via|for|successfully)\b|[.\n]|$)`)

// extractMerchant pulls a best-effort merchant name following a to/at
// keyword, capped at four words. Returns "Unknown" when nothing
// matches, never "".
func extractMerchant(text string) string {
	m := merchantPattern.FindStringSubmatch(text)
	if m == nil {
		return "Unknown"
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "Unknown"
	}
	return name
}
