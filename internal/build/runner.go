// Package build runs Gradle against scaffolded projects and resolves the
// produced artifact.
//
// Builds run with an environment composed solely from the provisioned
// toolchain. Output is streamed to a full log file while a bounded tail is
// kept in memory for failure reporting.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/appforge/appforge/internal/event"
)

// Failure reasons carried by Error.
const (
	ReasonTimeout         = "timeout"
	ReasonFailed          = "build failed"
	ReasonArtifactMissing = "artifact missing"
)

const (
	logFileName      = "build.log"
	defaultTailLines = 200
	artifactRelDir   = "app/build/outputs/apk/debug"
)

// Error is a terminal build failure. Tail holds the last lines of build
// output for diagnosis; the full log is at LogFile.
type Error struct {
	Reason  string
	LogFile string
	Tail    []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result describes a successful build.
type Result struct {
	ArtifactPath string
	LogFile      string
	Duration     time.Duration
}

// Config configures a Runner. GradleBin and Env come from the provisioned
// toolchain.
type Config struct {
	GradleBin string
	Env       []string
	Sink      event.Sink

	// Timeout bounds one gradle invocation. Zero means no limit.
	Timeout time.Duration

	// TailLines bounds the in-memory output tail.
	TailLines int

	// SyncFirst resolves dependencies in a separate gradle invocation
	// before assembling, surfacing resolution failures early.
	SyncFirst bool
}

// Runner executes builds. Safe for concurrent use; each Run is independent.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	if cfg.GradleBin == "" {
		cfg.GradleBin = "gradle"
	}
	if cfg.Sink == nil {
		cfg.Sink = event.Discard
	}
	if cfg.TailLines <= 0 {
		cfg.TailLines = defaultTailLines
	}
	return &Runner{cfg: cfg}
}

// Run builds the project at projectDir and returns the resolved artifact.
// A failed build is never retried.
func (r *Runner) Run(ctx context.Context, projectDir string) (*Result, error) {
	start := time.Now()

	logPath := filepath.Join(projectDir, logFileName)
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create build log: %w", err)
	}
	defer logFile.Close()

	tail := newTailBuffer(r.cfg.TailLines)

	if r.cfg.SyncFirst {
		r.cfg.Sink.Emit(event.Progress("resolving dependencies"))
		if err := r.gradle(ctx, projectDir, logFile, tail, "--no-daemon", "dependencies"); err != nil {
			return nil, r.failure(err, logPath, tail)
		}
	}

	r.cfg.Sink.Emit(event.Progress("running gradle assembleDebug"))
	if err := r.gradle(ctx, projectDir, logFile, tail, "--no-daemon", "assembleDebug"); err != nil {
		return nil, r.failure(err, logPath, tail)
	}

	artifact, err := ResolveArtifact(projectDir)
	if err != nil {
		return nil, &Error{Reason: ReasonArtifactMissing, LogFile: logPath, Tail: tail.Lines(), Err: err}
	}

	res := &Result{ArtifactPath: artifact, LogFile: logPath, Duration: time.Since(start)}
	r.cfg.Sink.Emit(event.OutputFile(artifact))
	return res, nil
}

// gradle runs one gradle invocation, streaming output to the log file and
// the tail buffer. The configured timeout applies per invocation.
func (r *Runner) gradle(ctx context.Context, projectDir string, logFile io.Writer, tail *tailBuffer, args ...string) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	lw := newLineWriter(tail.Add)
	defer lw.Close()

	cmd := exec.CommandContext(ctx, r.cfg.GradleBin, args...)
	cmd.Dir = projectDir
	cmd.Env = r.cfg.Env
	out := io.MultiWriter(logFile, lw)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// failure classifies a gradle error into a build Error.
func (r *Runner) failure(err error, logPath string, tail *tailBuffer) *Error {
	reason := ReasonFailed
	if errors.Is(err, context.DeadlineExceeded) {
		reason = ReasonTimeout
	}
	return &Error{Reason: reason, LogFile: logPath, Tail: tail.Lines(), Err: err}
}

// ResolveArtifact locates the built APK under the standard debug output
// directory, preferring the most recently modified when several exist.
// The returned path is always absolute, regardless of how the project
// directory was given.
func ResolveArtifact(projectDir string) (string, error) {
	dir := filepath.Join(projectDir, filepath.FromSlash(artifactRelDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("no artifact directory %s: %w", dir, err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".apk") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, e.Name()), mod: info.ModTime()})
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no .apk under %s", dir)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mod.After(found[j].mod) })
	abs, err := filepath.Abs(found[0].path)
	if err != nil {
		return "", fmt.Errorf("resolving artifact path: %w", err)
	}
	return abs, nil
}
