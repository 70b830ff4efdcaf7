package inference

import (
	"context"
	"fmt"
	"sync"
)

// StubResponse scripts one reply from the Stub client.
type StubResponse struct {
	Text  string
	Err   error
	Block bool // wait for ctx cancellation instead of answering
}

// Stub is a deterministic in-memory Client for tests. Responses are consumed
// in order per role; when a role's script is exhausted the last entry
// repeats. All calls are recorded for inspection.
type Stub struct {
	mu        sync.Mutex
	responses map[Role][]StubResponse
	consumed  map[Role]int
	Calls     []Request
}

// NewStub creates an empty Stub.
func NewStub() *Stub {
	return &Stub{
		responses: make(map[Role][]StubResponse),
		consumed:  make(map[Role]int),
	}
}

// Script appends scripted responses for a role.
func (s *Stub) Script(role Role, responses ...StubResponse) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[role] = append(s.responses[role], responses...)
	return s
}

// ScriptText appends plain-text responses for a role.
func (s *Stub) ScriptText(role Role, texts ...string) *Stub {
	for _, txt := range texts {
		s.Script(role, StubResponse{Text: txt})
	}
	return s
}

// CallCount returns how many completions were requested for role.
func (s *Stub) CallCount(role Role) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c.Role == role {
			n++
		}
	}
	return n
}

// Complete returns the next scripted response for req.Role.
func (s *Stub) Complete(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, req)

	script := s.responses[req.Role]
	if len(script) == 0 {
		s.mu.Unlock()
		return "", &FatalError{Err: fmt.Errorf("no scripted response for role %q", req.Role)}
	}
	idx := s.consumed[req.Role]
	if idx >= len(script) {
		idx = len(script) - 1
	}
	s.consumed[req.Role]++
	resp := script[idx]
	s.mu.Unlock()

	if resp.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}
