// Package event defines the closed set of progress events emitted by a
// generation task and the sink interface that consumes them.
//
// Events form a tagged variant: consumers switch over Kind exhaustively.
// Delivery order for a single task matches the order its stages complete.
package event

import "fmt"

// Kind tags the variant of an Event.
type Kind int

const (
	// KindProgress reports a human-readable stage transition or advisory.
	KindProgress Kind = iota
	// KindOutputFile reports that a generated file was written.
	KindOutputFile
	// KindDone reports successful terminal completion with a summary.
	KindDone
	// KindError reports terminal failure with a message.
	KindError
)

// String returns the lowercase tag name for the kind.
func (k Kind) String() string {
	switch k {
	case KindProgress:
		return "progress"
	case KindOutputFile:
		return "output_file"
	case KindDone:
		return "done"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one notification from a generation task. Exactly one of the
// payload fields is meaningful for a given Kind: Message for Progress and
// Error, Path for OutputFile, Summary for Done.
type Event struct {
	Kind    Kind
	Message string
	Path    string
	Summary string
}

// Progress constructs a Progress event.
func Progress(message string) Event {
	return Event{Kind: KindProgress, Message: message}
}

// OutputFile constructs an OutputFile event.
func OutputFile(path string) Event {
	return Event{Kind: KindOutputFile, Path: path}
}

// Done constructs a Done event.
func Done(summary string) Event {
	return Event{Kind: KindDone, Summary: summary}
}

// Error constructs an Error event.
func Error(message string) Event {
	return Event{Kind: KindError, Message: message}
}

// String renders the event for display.
func (e Event) String() string {
	switch e.Kind {
	case KindProgress:
		return e.Message
	case KindOutputFile:
		return fmt.Sprintf("wrote %s", e.Path)
	case KindDone:
		return e.Summary
	case KindError:
		return e.Message
	default:
		return fmt.Sprintf("event(%d)", e.Kind)
	}
}

// Sink receives events for display. Implementations must not block the
// emitting task; they consume, they never drive control flow.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) {
	f(e)
}

// Discard is a Sink that drops every event.
var Discard Sink = SinkFunc(func(Event) {})
