// Package pipeline drives the staged generation state machine for one task:
// Planning -> Coding -> Reviewing -> {Debugging -> Reviewing}* -> Writing.
//
// Each active stage issues one inference call and appends the completion to
// the task's memory log before transitioning. The debug loop is bounded by
// an explicit counter; exhausting it degrades to Writing with the best
// available code rather than failing the task.
package pipeline

// Stage names, persisted in the task session record.
const (
	StageIdle      = "idle"
	StagePlanning  = "planning"
	StageCoding    = "coding"
	StageReviewing = "reviewing"
	StageDebugging = "debugging"
	StageWriting   = "writing"
)

// Plan is the parsed planning stage output.
type Plan struct {
	ProjectName string
	Description string
}
