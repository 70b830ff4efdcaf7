// Package state persists per-task session records so a task's outcome stays
// inspectable after the task object is gone.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const sessionFileName = "session.json"

// SchemaVersion is the current session record layout version.
const SchemaVersion = 1

// Status values for a persisted task record.
const (
	StatusRunning   = "RUNNING"
	StatusDone      = "DONE"
	StatusError     = "ERROR"
	StatusCancelled = "CANCELLED"
)

// TaskState is the persisted record of one generation task. Written to
// <taskDir>/session.json after every stage transition.
type TaskState struct {
	SchemaVersion   int    `json:"schema_version"`
	TaskID          string `json:"task_id"`
	Prompt          string `json:"prompt"`
	ProjectName     string `json:"project_name"`
	Description     string `json:"description"`
	Stage           string `json:"stage"`
	Status          string `json:"status"`
	DebugIterations int    `json:"debug_iterations"`
	StartedAt       string `json:"started_at"`
	LastUpdated     string `json:"last_updated"`
	OutputFile      string `json:"output_file,omitempty"`
	ProjectPath     string `json:"project_path,omitempty"`
	ArtifactPath    string `json:"artifact_path,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// Save persists the task state as indented JSON under dir.
func Save(s *TaskState, dir string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal task state: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create task dir: %w", err)
	}
	path := filepath.Join(dir, sessionFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write task state: %w", err)
	}
	return nil
}

// Load reads and parses the task state from dir.
func Load(dir string) (*TaskState, error) {
	data, err := os.ReadFile(filepath.Join(dir, sessionFileName))
	if err != nil {
		return nil, fmt.Errorf("read task state: %w", err)
	}
	var s TaskState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal task state: %w", err)
	}
	return &s, nil
}
