package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var allEvents = []Event{
	EventUploadComplete,
	EventEmbeddingComplete,
	EventNewUploadRequested,
	EventOverlayClosed,
	EventOverlayUploadComplete,
}

var allStates = []State{
	{Phase: PhaseIngesting},
	{Phase: PhaseIngesting, Overlay: true}, // unreachable, but Reduce must still be total
	{Phase: PhaseEmbedding},
	{Phase: PhaseEmbedding, Overlay: true}, // unreachable
	{Phase: PhaseConversing},
	{Phase: PhaseConversing, Overlay: true},
}

func TestReduce_TransitionTable(t *testing.T) {
	t.Parallel()

	type key struct {
		s State
		e Event
	}
	// Only the valid transitions change state; everything else is a no-op.
	want := map[key]State{
		{State{Phase: PhaseIngesting}, EventUploadComplete}:                       {Phase: PhaseEmbedding},
		{State{Phase: PhaseEmbedding}, EventEmbeddingComplete}:                    {Phase: PhaseConversing},
		{State{Phase: PhaseConversing}, EventNewUploadRequested}:                  {Phase: PhaseConversing, Overlay: true},
		{State{Phase: PhaseConversing, Overlay: true}, EventNewUploadRequested}:   {Phase: PhaseConversing, Overlay: true},
		{State{Phase: PhaseConversing, Overlay: true}, EventOverlayClosed}:        {Phase: PhaseConversing},
		{State{Phase: PhaseConversing, Overlay: true}, EventOverlayUploadComplete}: {Phase: PhaseEmbedding},
	}

	for _, s := range allStates {
		for _, e := range allEvents {
			got := Reduce(s, e)
			expected, ok := want[key{s, e}]
			if !ok {
				expected = s // no-op
			}
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("Reduce(%+v, %s) mismatch (-want +got):\n%s", s, e, diff)
			}
		}
	}
}

func TestReduce_FullLifecycle(t *testing.T) {
	t.Parallel()

	s := Initial()
	if s.Phase != PhaseIngesting || s.Overlay {
		t.Fatalf("Initial() = %+v, want Ingesting without overlay", s)
	}

	s = Reduce(s, EventUploadComplete)
	if s.Phase != PhaseEmbedding {
		t.Fatalf("after UploadComplete: %+v", s)
	}

	s = Reduce(s, EventEmbeddingComplete)
	if s.Phase != PhaseConversing {
		t.Fatalf("after EmbeddingComplete: %+v", s)
	}

	// Overlay round trip: raise, upload, re-embed, return to conversing.
	s = Reduce(s, EventNewUploadRequested)
	if !s.Overlay {
		t.Fatalf("overlay not raised: %+v", s)
	}
	s = Reduce(s, EventOverlayUploadComplete)
	if s.Phase != PhaseEmbedding || s.Overlay {
		t.Fatalf("overlay upload should re-enter Embedding and drop overlay: %+v", s)
	}
	s = Reduce(s, EventEmbeddingComplete)
	if s.Phase != PhaseConversing {
		t.Fatalf("after second EmbeddingComplete: %+v", s)
	}
}

func TestReduce_OverlayCancel(t *testing.T) {
	t.Parallel()

	s := State{Phase: PhaseConversing, Overlay: true}
	s = Reduce(s, EventOverlayClosed)
	if s.Phase != PhaseConversing || s.Overlay {
		t.Errorf("overlay close should keep phase and drop overlay: %+v", s)
	}
}

func TestReduce_InvalidTransitionsAreNoOps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		s    State
		e    Event
	}{
		{"embedding complete while ingesting", State{Phase: PhaseIngesting}, EventEmbeddingComplete},
		{"upload complete while conversing", State{Phase: PhaseConversing}, EventUploadComplete},
		{"new upload while embedding", State{Phase: PhaseEmbedding}, EventNewUploadRequested},
		{"overlay close without overlay", State{Phase: PhaseConversing}, EventOverlayClosed},
		{"overlay upload without overlay", State{Phase: PhaseConversing}, EventOverlayUploadComplete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Reduce(tc.s, tc.e); got != tc.s {
				t.Errorf("Reduce(%+v, %s) = %+v, want unchanged", tc.s, tc.e, got)
			}
		})
	}
}
