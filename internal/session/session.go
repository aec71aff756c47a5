// Package session models the top-level phase state machine for a document
// chat session: documents are ingested, then embedded, then conversed with.
// State is a single immutable value transformed by a pure Reduce function so
// every transition can be enumerated in tests.
package session

// Phase is the top-level mode of the session. Exactly one phase is active at
// any time; Conversing is the steady state.
type Phase int

const (
	PhaseIngesting Phase = iota
	PhaseEmbedding
	PhaseConversing
)

// String returns the display name for each phase
func (p Phase) String() string {
	switch p {
	case PhaseIngesting:
		return "Ingesting"
	case PhaseEmbedding:
		return "Embedding"
	case PhaseConversing:
		return "Conversing"
	}
	return "Unknown"
}

// Event is an input to the state machine.
type Event int

const (
	// EventUploadComplete fires when the initial upload is accepted.
	EventUploadComplete Event = iota
	// EventEmbeddingComplete fires when the embedding tracker reaches 100.
	EventEmbeddingComplete
	// EventNewUploadRequested raises the upload overlay during conversation.
	EventNewUploadRequested
	// EventOverlayClosed cancels the overlay without a phase change.
	EventOverlayClosed
	// EventOverlayUploadComplete fires when an overlay upload is accepted;
	// the session re-enters Embedding before returning to Conversing.
	EventOverlayUploadComplete
)

// String returns the display name for each event
func (e Event) String() string {
	switch e {
	case EventUploadComplete:
		return "UploadComplete"
	case EventEmbeddingComplete:
		return "EmbeddingComplete"
	case EventNewUploadRequested:
		return "NewUploadRequested"
	case EventOverlayClosed:
		return "UploadOverlayClosed"
	case EventOverlayUploadComplete:
		return "OverlayUploadComplete"
	}
	return "Unknown"
}

// State is the complete phase/overlay state of a session. Overlay is only
// meaningful while Conversing: it lets a new upload run without leaving the
// conversation.
type State struct {
	Phase   Phase
	Overlay bool
}

// Initial returns the starting state: Ingesting, no overlay.
func Initial() State {
	return State{Phase: PhaseIngesting}
}

// Reduce applies an event to a state and returns the next state. Events that
// are not valid for the current state are no-ops, not errors: the input state
// is returned unchanged.
func Reduce(s State, e Event) State {
	switch e {
	case EventUploadComplete:
		if s.Phase == PhaseIngesting {
			return State{Phase: PhaseEmbedding}
		}
	case EventEmbeddingComplete:
		if s.Phase == PhaseEmbedding {
			return State{Phase: PhaseConversing}
		}
	case EventNewUploadRequested:
		if s.Phase == PhaseConversing {
			return State{Phase: PhaseConversing, Overlay: true}
		}
	case EventOverlayClosed:
		if s.Phase == PhaseConversing && s.Overlay {
			return State{Phase: PhaseConversing}
		}
	case EventOverlayUploadComplete:
		if s.Phase == PhaseConversing && s.Overlay {
			return State{Phase: PhaseEmbedding}
		}
	}
	return s
}
