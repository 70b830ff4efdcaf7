// Package toolchain provisions the managed Android build toolchain: JDK,
// SDK command-line tools, platform packages, and Gradle.
//
// Installed components are recorded in a state file under the managed root.
// The record is append-or-upgrade only: a component is never replaced by a
// lower version. All provisioning for a process is serialized through one
// Provisioner.
package toolchain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	stateFileName = "toolchain.json"

	// StateSchemaVersion is the current state file layout version.
	StateSchemaVersion = 1
)

// Component sources.
const (
	SourceManaged = "managed"
	SourceSystem  = "system"
)

// Component names.
const (
	ComponentJDK          = "jdk"
	ComponentCmdlineTools = "cmdline-tools"
	ComponentGradle       = "gradle"
	ComponentPlatform     = "platform"
	ComponentBuildTools   = "build-tools"
)

// Record describes one installed component.
type Record struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Path        string `json:"path"`
	Source      string `json:"source"`
	SHA256      string `json:"sha256,omitempty"`
	InstalledAt string `json:"installed_at"`
}

// State is the persisted toolchain inventory.
type State struct {
	SchemaVersion    int               `json:"schema_version"`
	LicensesAccepted bool              `json:"licenses_accepted"`
	AcceptedAt       string            `json:"accepted_at,omitempty"`
	Components       map[string]Record `json:"components"`
}

func newState() *State {
	return &State{
		SchemaVersion: StateSchemaVersion,
		Components:    make(map[string]Record),
	}
}

// LoadState reads the state file under root. A missing file yields an empty
// state.
func LoadState(root string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(root, stateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return newState(), nil
		}
		return nil, fmt.Errorf("read toolchain state: %w", err)
	}
	s := newState()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse toolchain state: %w", err)
	}
	if s.Components == nil {
		s.Components = make(map[string]Record)
	}
	return s, nil
}

// Save writes the state file under root.
func (s *State) Save(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create toolchain root: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("encode toolchain state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, stateFileName), data, 0o644); err != nil {
		return fmt.Errorf("write toolchain state: %w", err)
	}
	return nil
}

// Satisfies reports whether the recorded component covers the wanted
// version. Records never downgrade, so an equal or newer recorded version
// satisfies any older request.
func (s *State) Satisfies(name, wantVersion string) bool {
	rec, ok := s.Components[name]
	if !ok {
		return false
	}
	have, err1 := semver.NewVersion(rec.Version)
	want, err2 := semver.NewVersion(wantVersion)
	if err1 != nil || err2 != nil {
		return rec.Version == wantVersion
	}
	return !have.LessThan(want)
}

// Record stores a component, refusing downgrades.
func (s *State) Record(rec Record) error {
	if existing, ok := s.Components[rec.Name]; ok {
		have, err1 := semver.NewVersion(existing.Version)
		next, err2 := semver.NewVersion(rec.Version)
		if err1 == nil && err2 == nil && next.LessThan(have) {
			return fmt.Errorf("component %s: refusing downgrade %s -> %s",
				rec.Name, existing.Version, rec.Version)
		}
	}
	rec.InstalledAt = time.Now().UTC().Format(time.RFC3339)
	s.Components[rec.Name] = rec
	return nil
}
