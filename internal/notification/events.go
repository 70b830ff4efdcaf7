package notification

import "fmt"

// Event types matching the notification events.
const (
	EventCompleted   = "completed"
	EventBuildFailed = "build_failed"
	EventGenFailed   = "generation_failed"
	EventDegraded    = "degraded"
	EventInterrupted = "interrupted"
)

// FormatEvent creates a notification message for the given event.
func FormatEvent(event string, projectName string, taskID string, exitCode int) string {
	switch event {
	case EventCompleted:
		return fmt.Sprintf("✅ %s [%s] build completed successfully (exit %d)", projectName, taskID, exitCode)
	case EventBuildFailed:
		return fmt.Sprintf("❌ %s [%s] gradle build failed (exit %d)", projectName, taskID, exitCode)
	case EventGenFailed:
		return fmt.Sprintf("🚨 %s [%s] generation pipeline failed (exit %d)", projectName, taskID, exitCode)
	case EventDegraded:
		return fmt.Sprintf("⚠️ %s [%s] review defects unresolved, wrote best available code (exit %d)", projectName, taskID, exitCode)
	case EventInterrupted:
		return fmt.Sprintf("⏸️ %s [%s] interrupted (exit %d)", projectName, taskID, exitCode)
	default:
		return fmt.Sprintf("ℹ️ %s [%s] event: %s (exit %d)", projectName, taskID, event, exitCode)
	}
}
