package prompt

import (
	"strings"

	"github.com/appforge/appforge/internal/inference"
)

// truncationMarker replaces the middle of an oversized context.
const truncationMarker = "\n\n... [CONTENT TRUNCATED FOR LENGTH] ...\n\n"

// SystemFor returns the system prompt for a pipeline role.
func SystemFor(role inference.Role) string {
	switch role {
	case inference.RolePlanner:
		return PlannerSystem
	case inference.RoleCoder:
		return CoderSystem
	case inference.RoleReviewer:
		return ReviewerSystem
	case inference.RoleDebugger:
		return DebuggerSystem
	default:
		return ""
	}
}

// BuildPlanPrompt constructs the planning stage user prompt.
func BuildPlanPrompt(request string) string {
	return strings.ReplaceAll(planTemplate, "{{REQUEST}}", request)
}

// BuildCodePrompt constructs the coding stage user prompt.
func BuildCodePrompt(request string) string {
	return strings.ReplaceAll(codeTemplate, "{{REQUEST}}", request)
}

// BuildReviewPrompt constructs the review stage user prompt.
func BuildReviewPrompt(request string) string {
	return strings.ReplaceAll(reviewTemplate, "{{REQUEST}}", request)
}

// BuildDebugPrompt constructs the debug stage user prompt with the
// reviewer's feedback appended to the context.
func BuildDebugPrompt(feedback string) string {
	return strings.ReplaceAll(debugTemplate, "{{FEEDBACK}}", feedback)
}

// TruncateContext bounds s to maxChars by keeping the head and tail and
// replacing the middle with a marker. Small-model context windows are the
// constraint here, not correctness of the kept halves.
func TruncateContext(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	keep := maxChars / 2
	return s[:keep] + truncationMarker + s[len(s)-keep:]
}
