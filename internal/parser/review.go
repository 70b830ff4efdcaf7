package parser

import (
	"regexp"
	"strings"
)

// Explicit defect marker emitted by the review prompt: "DEFECTS: yes" or
// "DEFECTS: no". The marker always wins over the heuristic.
var defectMarker = regexp.MustCompile(`(?im)^\s*DEFECTS:\s*(yes|no)\s*$`)

// Keywords the fallback heuristic treats as a defect signal.
var defectKeywords = []string{"must fix", "critical bug", "does not compile", "crash"}

// HasDefectSignal reports whether a review completion signals defects.
//
// The explicit DEFECTS marker is checked first. When the marker is absent
// and heuristic is true, the text is scanned for a non-empty ISSUES_FOUND
// section or known defect keywords. Without marker or heuristic the review
// is treated as clean.
func HasDefectSignal(review string, heuristic bool) bool {
	if m := defectMarker.FindStringSubmatch(review); m != nil {
		return strings.EqualFold(m[1], "yes")
	}
	if !heuristic {
		return false
	}

	if hasIssuesSection(review) {
		return true
	}
	lower := strings.ToLower(review)
	for _, kw := range defectKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// hasIssuesSection reports whether an ISSUES_FOUND header is followed by at
// least one list item before the next section header.
func hasIssuesSection(review string) bool {
	lines := strings.Split(review, "\n")
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "ISSUES_FOUND") {
			// "ISSUES_FOUND: none" on one line counts as clean.
			rest := strings.TrimSpace(trimmed[len("ISSUES_FOUND"):])
			rest = strings.TrimPrefix(rest, ":")
			rest = strings.TrimSpace(rest)
			if rest != "" && !strings.EqualFold(rest, "none") {
				return true
			}
			inSection = true
			continue
		}
		if inSection {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
				return true
			}
			// Any other content ends the section.
			inSection = false
		}
	}
	return false
}
