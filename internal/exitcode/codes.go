// Package exitcode defines named exit codes for the appforge CLI.
//
// Each code maps a specific termination condition to a numeric value
// recognized by shell scripts and CI pipelines.
package exitcode

const (
	Success          = 0   // Artifact produced or requested action completed
	Error            = 1   // Invalid args, misconfiguration, unexpected failure
	GenerationFailed = 2   // Agent pipeline ended in Error
	ScaffoldFailed   = 3   // Template or filesystem error while scaffolding
	ToolchainFailed  = 4   // Toolchain provisioning failed
	BuildFailed      = 5   // Build ran and failed (non-zero exit, timeout, missing artifact)
	Interrupted      = 130 // SIGINT/SIGTERM received
)

// Name returns the human-readable name for the given exit code.
// Unknown codes return "unknown".
func Name(code int) string {
	switch code {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case GenerationFailed:
		return "GenerationFailed"
	case ScaffoldFailed:
		return "ScaffoldFailed"
	case ToolchainFailed:
		return "ToolchainFailed"
	case BuildFailed:
		return "BuildFailed"
	case Interrupted:
		return "Interrupted"
	default:
		return "unknown"
	}
}
