package parser

import (
	"regexp"
	"strings"
)

const (
	fallbackProjectName = "AndroidApp"
	maxProjectNameLen   = 50
)

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SanitizeProjectName turns a model-proposed project name into a safe
// directory name: filesystem-unsafe characters removed, whitespace collapsed
// to underscores, length capped, with a non-empty fallback.
func SanitizeProjectName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._ ")
	if s == "" {
		return fallbackProjectName
	}
	if len(s) > maxProjectNameLen {
		s = s[:maxProjectNameLen]
	}
	return s
}

// PackageSegment lowercases a sanitized project name into a single valid
// package/namespace segment (letters and digits only, leading digit guarded).
func PackageSegment(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(SanitizeProjectName(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	s := sb.String()
	if s == "" {
		return "app"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "app" + s
	}
	return s
}
