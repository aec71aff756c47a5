package chat

import (
	"context"

	"docchat/cmd/docchat/ui"
	"docchat/internal/backend"
	"docchat/internal/chatstore"
	"docchat/internal/dispatch"
	"docchat/internal/embedding"
	"docchat/internal/resolve"
	"docchat/internal/session"
	"docchat/internal/watch"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the wired collaborators for the chat interface.
type Config struct {
	Backend    *backend.Client
	Store      *chatstore.Store
	Dispatcher *dispatch.Dispatcher
	Tracker    *embedding.Tracker
	Watcher    *watch.Watcher // optional drop-folder source
	Styles     ui.Styles
	PickerDir  string // starting directory for the file picker
}

// =============================================================================
// CORE TYPES
// =============================================================================

// Model is the main model for the interactive chat interface. The session
// phase state machine lives in sess; Update feeds it events and the View
// renders whichever screen the current phase calls for.
type Model struct {
	// UI components
	styles     ui.Styles
	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	chatList   list.Model
	filepicker filepicker.Model
	progress   progress.Model
	renderer   *glamour.TermRenderer

	// Phase state
	sess session.State

	// Collaborators
	store      *chatstore.Store
	dispatcher *dispatch.Dispatcher
	backend    *backend.Client
	tracker    *embedding.Tracker
	watcher    *watch.Watcher
	job        *embedding.Job

	// Resolved render forms for bot messages, keyed by message ID. Misses
	// re-resolve from the stored raw text.
	resolved map[int64]resolve.Content

	// State
	embedPct   int
	uploadErr  string // blocking alert; non-empty means the alert is showing
	showDrawer bool
	isLoading  bool
	width      int
	height     int
	ready      bool

	// Shutdown coordination
	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// chatItem is a list item for the chat history drawer.
type chatItem struct {
	id, title, when string
}

func (i chatItem) Title() string       { return i.title }
func (i chatItem) Description() string { return i.when }
func (i chatItem) FilterValue() string { return i.title }

// Messages for tea updates
type (
	// uploadDoneMsg reports an upload attempt. overlay records whether the
	// upload was started from the conversation overlay.
	uploadDoneMsg struct {
		overlay bool
		jobID   string
		err     error
	}

	// embedProgressMsg carries one progress update from the active job.
	embedProgressMsg struct{ pct int }

	// embedDoneMsg fires exactly once when the active job reaches 100.
	embedDoneMsg struct{}

	// embedStoppedMsg fires when a job's stream ends without completing
	// (cancelled or superseded).
	embedStoppedMsg struct{}

	// queryDoneMsg carries a completed query exchange.
	queryDoneMsg struct {
		result dispatch.Result
		err    error
	}

	// watchBatchMsg carries a debounced set of dropped documents.
	watchBatchMsg struct{ files []string }
)
