// Package memory implements the append-only memory log shared by the stages
// of one generation task.
//
// Entries are immutable once appended and ordered by stage completion.
// Stages receive an immutable snapshot, never the live log, so a stage can
// never observe a partial or reordered view.
package memory

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Entry is one stage's recorded output.
type Entry struct {
	Role  string
	Text  string
	Index int
}

// Log is an append-only ordered sequence of stage outputs. Safe for
// concurrent readers; a single orchestrator is the only writer.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records a stage output and returns the stored entry with its
// assigned sequence index.
func (l *Log) Append(role, text string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{Role: role, Text: text, Index: len(l.entries)}
	l.entries = append(l.entries, e)
	return e
}

// Snapshot returns an immutable copy of all entries in append order.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Texts returns the entry texts in append order, the shape consumed by the
// inference client as conversation history.
func (l *Log) Texts() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Text
	}
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// WriteMarkdown persists the log as a markdown document for post-mortem
// inspection. The file outlives the task object.
func (l *Log) WriteMarkdown(path string) error {
	var sb strings.Builder
	sb.WriteString("# Memory Log\n")
	for _, e := range l.Snapshot() {
		sb.WriteString(fmt.Sprintf("\n## %d. %s\n\n%s\n", e.Index+1, e.Role, e.Text))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write memory log: %w", err)
	}
	return nil
}
