// Package inference defines the completion client used by the agent
// pipeline and its Ollama-backed implementation.
package inference

import "context"

// Role identifies the agent persona issuing a completion request. The role
// selects the system prompt template used for the request.
type Role string

const (
	RolePlanner  Role = "planner"
	RoleCoder    Role = "coder"
	RoleReviewer Role = "reviewer"
	RoleDebugger Role = "debugger"
)

// Request carries one completion request. Memory holds the ordered outputs
// of all prior stages of the same task; implementations present it to the
// model as conversation history.
type Request struct {
	Role   Role
	System string
	Prompt string
	Memory []string
}

// Client produces a completion for a request. Implementations must honor
// context cancellation mid-call.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
