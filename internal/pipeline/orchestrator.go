package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appforge/appforge/internal/event"
	"github.com/appforge/appforge/internal/inference"
	"github.com/appforge/appforge/internal/logging"
	"github.com/appforge/appforge/internal/memory"
	"github.com/appforge/appforge/internal/parser"
	"github.com/appforge/appforge/internal/prompt"
	"github.com/appforge/appforge/internal/state"
)

// Config configures an Orchestrator. Client and WorkDir are required.
type Config struct {
	Client inference.Client
	Sink   event.Sink
	Writer Writer

	// WorkDir is the root under which each task gets its own directory.
	WorkDir string

	// Language selects the generated source extension, "kotlin" or "java".
	Language string

	// MaxDebugIterations bounds the review/debug loop. When the bound is
	// reached with defects still flagged, the task degrades to Writing with
	// the best available code.
	MaxDebugIterations int

	// DefectHeuristic enables keyword scanning of reviews that omit the
	// DEFECTS marker. When false, a missing marker means no defects.
	DefectHeuristic bool

	// MaxContextChars caps each memory entry handed to the model. Zero
	// disables truncation.
	MaxContextChars int
}

// Result is the terminal outcome of one task run.
type Result struct {
	TaskID      string
	Status      string
	ProjectName string
	Description string
	TaskDir     string
	OutputFile  string
	Code        string
	Memory      *memory.Log

	// Degraded is set when the debug budget ran out and the last
	// available code was written despite an open review defect.
	Degraded bool
}

// Orchestrator runs the staged generation pipeline. One Orchestrator may
// run many tasks; each Run call gets its own task directory and memory log
// and shares nothing with concurrent runs.
type Orchestrator struct {
	cfg Config
}

// New creates an Orchestrator. Missing optional fields get safe defaults.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Client == nil {
		return nil, errors.New("pipeline: inference client is required")
	}
	if cfg.WorkDir == "" {
		return nil, errors.New("pipeline: work directory is required")
	}
	if cfg.Sink == nil {
		cfg.Sink = event.Discard
	}
	if cfg.Writer == nil {
		cfg.Writer = DiskWriter{}
	}
	if cfg.Language == "" {
		cfg.Language = "kotlin"
	}
	if cfg.MaxDebugIterations < 0 {
		cfg.MaxDebugIterations = 0
	}
	return &Orchestrator{cfg: cfg}, nil
}

// task is the per-run working set. It is never shared across runs.
type task struct {
	id    string
	dir   string
	log   *memory.Log
	state *state.TaskState
}

// Run drives one request through the full pipeline and returns the terminal
// result. The returned error is non-nil only for Error and Cancelled
// outcomes; a debug-bound degradation still ends in Done.
func (o *Orchestrator) Run(ctx context.Context, request string) (*Result, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, errors.New("pipeline: empty request")
	}

	t, err := o.newTask(request)
	if err != nil {
		return nil, err
	}
	res := &Result{TaskID: t.id, TaskDir: t.dir, Memory: t.log}

	plan, err := o.runPlanning(ctx, t, request)
	if err != nil {
		return res, o.fail(t, res, err)
	}
	res.ProjectName = plan.ProjectName
	res.Description = plan.Description
	t.state.ProjectName = plan.ProjectName
	t.state.Description = plan.Description

	code, err := o.runCoding(ctx, t, request)
	if err != nil {
		return res, o.fail(t, res, err)
	}

	for {
		review, err := o.runReviewing(ctx, t, request)
		if err != nil {
			return res, o.fail(t, res, err)
		}
		if !parser.HasDefectSignal(review, o.cfg.DefectHeuristic) {
			break
		}
		if t.state.DebugIterations >= o.cfg.MaxDebugIterations {
			res.Degraded = true
			o.emit(t, event.Progress(fmt.Sprintf(
				"debug limit (%d) reached, writing best available code", o.cfg.MaxDebugIterations)))
			break
		}
		code, err = o.runDebugging(ctx, t, review)
		if err != nil {
			return res, o.fail(t, res, err)
		}
	}
	res.Code = code

	outPath, err := o.runWriting(t, plan, code)
	if err != nil {
		return res, o.fail(t, res, err)
	}
	res.OutputFile = outPath
	t.state.OutputFile = outPath

	o.finish(t, state.StatusDone, "")
	summary := fmt.Sprintf("%s: %s", plan.ProjectName, plan.Description)
	o.emit(t, event.Done(summary))
	res.Status = state.StatusDone
	return res, nil
}

func (o *Orchestrator) newTask(request string) (*task, error) {
	id := uuid.NewString()
	dir := filepath.Join(o.cfg.WorkDir, "task-"+id[:8])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create task directory: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	t := &task{
		id:  id,
		dir: dir,
		log: memory.NewLog(),
		state: &state.TaskState{
			SchemaVersion: state.SchemaVersion,
			TaskID:        id,
			Prompt:        request,
			Stage:         StageIdle,
			Status:        state.StatusRunning,
			StartedAt:     now,
			LastUpdated:   now,
		},
	}
	o.persist(t)
	return t, nil
}

func (o *Orchestrator) runPlanning(ctx context.Context, t *task, request string) (Plan, error) {
	o.transition(t, StagePlanning)
	out, err := o.complete(ctx, t, inference.RolePlanner,
		prompt.SystemFor(inference.RolePlanner), prompt.BuildPlanPrompt(request))
	if err != nil {
		return Plan{}, err
	}
	return parsePlan(out, request), nil
}

func (o *Orchestrator) runCoding(ctx context.Context, t *task, request string) (string, error) {
	o.transition(t, StageCoding)
	out, err := o.complete(ctx, t, inference.RoleCoder,
		prompt.SystemFor(inference.RoleCoder), prompt.BuildCodePrompt(request))
	if err != nil {
		return "", err
	}
	return parser.PrimaryCode(out), nil
}

// runReviewing asks the reviewer to judge the most recent code in memory
// against the original user request.
func (o *Orchestrator) runReviewing(ctx context.Context, t *task, request string) (string, error) {
	o.transition(t, StageReviewing)
	return o.complete(ctx, t, inference.RoleReviewer,
		prompt.SystemFor(inference.RoleReviewer), prompt.BuildReviewPrompt(request))
}

// runDebugging re-invokes the coder with the review feedback and returns the
// revised code. The iteration counter is advanced before the call so a
// failed call still consumes the budget.
func (o *Orchestrator) runDebugging(ctx context.Context, t *task, review string) (string, error) {
	t.state.DebugIterations++
	o.transition(t, StageDebugging)
	o.emit(t, event.Progress(fmt.Sprintf("debug iteration %d/%d",
		t.state.DebugIterations, o.cfg.MaxDebugIterations)))
	out, err := o.complete(ctx, t, inference.RoleCoder,
		prompt.SystemFor(inference.RoleDebugger), prompt.BuildDebugPrompt(review))
	if err != nil {
		return "", err
	}
	return parser.PrimaryCode(out), nil
}

func (o *Orchestrator) runWriting(t *task, plan Plan, code string) (string, error) {
	o.transition(t, StageWriting)
	name := "MainActivity.kt"
	if strings.EqualFold(o.cfg.Language, "java") {
		name = "MainActivity.java"
	}
	path, err := o.cfg.Writer.WriteFile(t.dir, name, []byte(code))
	if err != nil {
		return "", fmt.Errorf("write generated source: %w", err)
	}
	o.emit(t, event.OutputFile(path))
	return path, nil
}

// complete issues one inference call with the current memory snapshot and
// appends the reply to the log.
func (o *Orchestrator) complete(ctx context.Context, t *task, role inference.Role, system, userPrompt string) (string, error) {
	mem := t.log.Texts()
	if o.cfg.MaxContextChars > 0 {
		for i, m := range mem {
			mem[i] = prompt.TruncateContext(m, o.cfg.MaxContextChars)
		}
	}
	out, err := o.cfg.Client.Complete(ctx, inference.Request{
		Role:   role,
		System: system,
		Prompt: userPrompt,
		Memory: mem,
	})
	if err != nil {
		return "", fmt.Errorf("%s stage: %w", t.state.Stage, err)
	}
	t.log.Append(string(role), out)
	return out, nil
}

// fail records the terminal state for an error or cancellation. Cancellation
// is cooperative termination, never reported as an Error event.
func (o *Orchestrator) fail(t *task, res *Result, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		o.finish(t, state.StatusCancelled, err.Error())
		o.emit(t, event.Progress("task cancelled"))
		res.Status = state.StatusCancelled
		return err
	}
	o.finish(t, state.StatusError, err.Error())
	o.emit(t, event.Error(err.Error()))
	res.Status = state.StatusError
	return err
}

// finish persists the terminal status and the memory log markdown.
func (o *Orchestrator) finish(t *task, status, reason string) {
	t.state.Status = status
	t.state.FailureReason = reason
	t.state.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	o.persist(t)
	if err := t.log.WriteMarkdown(filepath.Join(t.dir, "memory.md")); err != nil {
		logging.Warn(fmt.Sprintf("persist memory log: %v", err))
	}
}

func (o *Orchestrator) transition(t *task, stage string) {
	t.state.Stage = stage
	t.state.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	o.persist(t)
	o.emit(t, event.Progress("stage: "+stage))
}

func (o *Orchestrator) persist(t *task) {
	if err := state.Save(t.state, t.dir); err != nil {
		logging.Warn(fmt.Sprintf("persist task state: %v", err))
	}
}

func (o *Orchestrator) emit(t *task, e event.Event) {
	o.cfg.Sink.Emit(e)
}

// parsePlan extracts the plan JSON from the planner output, falling back to
// a sanitized default when the output is malformed.
func parsePlan(out, request string) Plan {
	p := Plan{ProjectName: "AndroidApp", Description: request}
	m := parser.ExtractJSON(out, "project_name")
	if m == nil {
		return p
	}
	if v, ok := m["project_name"].(string); ok && strings.TrimSpace(v) != "" {
		p.ProjectName = parser.SanitizeProjectName(v)
	}
	if v, ok := m["description"].(string); ok && strings.TrimSpace(v) != "" {
		p.Description = strings.TrimSpace(v)
	}
	return p
}
