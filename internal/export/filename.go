package export

import (
	"regexp"
	"strings"
)

const maxFilenameLen = 120

var (
	disallowedRuns = regexp.MustCompile(`[^A-Za-z0-9_.\- ]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Filename builds the download attachment name for a file export:
// "{code}-{name}" sanitized for filesystem and header safety, ".xlsx"
// appended. An empty sanitized result falls back to "export".
func Filename(code, name string) string {
	s := code + "-" + name
	s = strings.Trim(s, "-")
	s = disallowedRuns.ReplaceAllString(s, "_")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	if s == "" {
		s = "export"
	}
	return s + ".xlsx"
}
