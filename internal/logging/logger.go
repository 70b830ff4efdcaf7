// Package logging provides colored, leveled log output for the appforge CLI.
//
// All functions write a prefixed, color-coded line to stderr so that stdout
// stays reserved for machine-readable output (the final artifact path).
// Debug output is suppressed unless verbose mode is enabled via SetVerbose.
package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// verbose controls whether Debug() produces output.
var verbose bool

var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	stagePrefix   = color.New(color.FgCyan).SprintFunc()
	debugPrefix   = color.New(color.FgMagenta).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	verbose = v
}

// Info prints an informational message in blue.
func Info(msg string) {
	fmt.Fprintln(os.Stderr, infoPrefix("[INFO]")+" "+msg)
}

// Success prints a success message in green.
func Success(msg string) {
	fmt.Fprintln(os.Stderr, successPrefix("[OK]")+" "+msg)
}

// Warn prints a warning message in yellow.
func Warn(msg string) {
	fmt.Fprintln(os.Stderr, warnPrefix("[WARN]")+" "+msg)
}

// Error prints an error message in red.
func Error(msg string) {
	fmt.Fprintln(os.Stderr, errorPrefix("[ERROR]")+" "+msg)
}

// Stage prints a pipeline stage header in cyan, surrounded by separator lines.
func Stage(msg string) {
	sep := stagePrefix("──────────────────────────────────────────────────")
	fmt.Fprintln(os.Stderr, sep)
	fmt.Fprintln(os.Stderr, stagePrefix("[STAGE]")+" "+msg)
	fmt.Fprintln(os.Stderr, sep)
}

// Debug prints a debug message, only when verbose mode is enabled.
func Debug(msg string) {
	if !verbose {
		return
	}
	fmt.Fprintln(os.Stderr, debugPrefix("[DEBUG]")+" "+msg)
}

// FormatDuration converts a duration in seconds to a human-readable string.
//
// Examples:
//
//	FormatDuration(45)   => "45s"
//	FormatDuration(90)   => "1m 30s"
//	FormatDuration(3661) => "1h 1m 1s"
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, (seconds%3600)/60, seconds%60)
}
