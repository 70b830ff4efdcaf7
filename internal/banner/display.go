// Package banner provides colored banner display functions for the appforge
// CLI.
//
// Banners go to stderr alongside the log stream; stdout stays reserved for
// the final artifact path.
package banner

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/appforge/appforge/internal/logging"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

const separator = "═══════════════════════════════════════════════════"

// PrintStartupBanner displays the startup banner with the request and the
// configured model and template.
func PrintStartupBanner(request, model, template string) {
	if len(request) > 60 {
		request = request[:57] + "..."
	}
	sep := headerColor(separator)
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, headerColor("  appforge - Android App Generation Pipeline"))
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintf(os.Stderr, "  Request:    %s\n", request)
	fmt.Fprintf(os.Stderr, "  Model:      %s\n", model)
	fmt.Fprintf(os.Stderr, "  Template:   %s\n", template)
	fmt.Fprintln(os.Stderr, sep)
}

// PrintCompletionBanner displays the completion banner with the artifact
// location and total duration.
func PrintCompletionBanner(artifactPath string, durationSecs int) {
	sep := successColor(separator)
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, successColor("  BUILD COMPLETE"))
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintf(os.Stderr, "  Artifact:   %s\n", artifactPath)
	fmt.Fprintf(os.Stderr, "  Duration:   %s\n", logging.FormatDuration(durationSecs))
	fmt.Fprintln(os.Stderr, sep)
}

// PrintFailureBanner displays the failure banner with the terminal reason.
func PrintFailureBanner(reason string, exitCode int) {
	sep := errorColor(separator)
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, errorColor("  FAILED"))
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintf(os.Stderr, "  Reason:     %s\n", reason)
	fmt.Fprintf(os.Stderr, "  Exit code:  %d\n", exitCode)
	fmt.Fprintln(os.Stderr, sep)
}
