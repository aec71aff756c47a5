// Package chat provides the interactive TUI for docchat: document upload,
// embedding progress, and the conversation view, driven by the session phase
// state machine.
package chat

import (
	"context"
	"fmt"

	"docchat/internal/chatstore"
	"docchat/internal/embedding"
	"docchat/internal/logging"
	"docchat/internal/resolve"
	"docchat/internal/watch"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"docchat/internal/session"
)

// defaultChatTitle names the chat seeded at startup.
const defaultChatTitle = "Document Analysis"

// New builds the chat model. The session starts in Ingesting; the first chat
// is created up front so the conversation is ready the moment embedding
// completes.
func New(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Styles.Info

	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf", ".doc", ".docx", ".txt"}
	if cfg.PickerDir != "" {
		fp.CurrentDirectory = cfg.PickerDir
	}

	cl := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	cl.Title = "Chat History"
	cl.SetShowStatusBar(false)
	cl.SetFilteringEnabled(false)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil // safeRenderMarkdown falls back to plain text
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		styles:     cfg.Styles,
		textarea:   ta,
		spinner:    sp,
		chatList:   cl,
		filepicker: fp,
		progress:   progress.New(progress.WithDefaultGradient()),
		renderer:   renderer,
		sess:       session.Initial(),
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		backend:    cfg.Backend,
		tracker:    cfg.Tracker,
		watcher:    cfg.Watcher,
		resolved:   make(map[int64]resolve.Content),
		rootCtx:    ctx,
		rootCancel: cancel,
	}

	id := m.store.CreateChat(defaultChatTitle)
	_ = m.store.SelectChat(id)
	m.refreshChatList()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		m.spinner.Tick,
		m.filepicker.Init(),
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForBatch(m.watcher))
	}
	return tea.Batch(cmds...)
}

// shutdown releases background work on quit. The embedding job's ticks are
// cancelled; an in-flight query is aborted via the root context.
func (m *Model) shutdown() {
	m.rootCancel()
	if m.job != nil {
		m.job.Cancel()
		m.job = nil
	}
	if m.tracker != nil {
		m.tracker.Cancel()
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
	logging.Get(logging.CategorySession).Info("session shut down")
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) uploadCmd(paths []string, overlay bool) tea.Cmd {
	ctx := m.rootCtx
	client := m.backend
	return func() tea.Msg {
		err := client.Upload(ctx, paths)
		return uploadDoneMsg{overlay: overlay, jobID: uuid.NewString(), err: err}
	}
}

func (m Model) sendCmd(chatID, text string) tea.Cmd {
	ctx := m.rootCtx
	d := m.dispatcher
	return func() tea.Msg {
		res, err := d.Send(ctx, chatID, text)
		return queryDoneMsg{result: res, err: err}
	}
}

// waitForEmbedding blocks on the job's progress stream and translates it
// into tea messages, one per command invocation.
func waitForEmbedding(j *embedding.Job) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-j.Updates()
		if ok {
			return embedProgressMsg{pct: p}
		}
		select {
		case <-j.Done():
			return embedDoneMsg{}
		default:
			return embedStoppedMsg{}
		}
	}
}

// waitForBatch blocks on the drop-folder watcher.
func waitForBatch(w *watch.Watcher) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-w.Batches()
		if !ok {
			return nil
		}
		return watchBatchMsg{files: b}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// refreshChatList rebuilds the drawer items from the store.
func (m *Model) refreshChatList() {
	chats := m.store.Chats()
	items := make([]list.Item, 0, len(chats))
	for _, c := range chats {
		items = append(items, chatItem{
			id:    c.ID,
			title: c.Title,
			when:  m.store.TimeAgo(c.LastUpdated),
		})
	}
	m.chatList.SetItems(items)
}

// refreshViewport re-renders the active chat's history into the viewport and
// scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

// activeMessages returns the active chat's messages, or nil when no chat is
// selected.
func (m Model) activeMessages() []chatstore.Message {
	c, ok := m.store.Active()
	if !ok {
		return nil
	}
	return c.Messages
}

// newChatTitle names chats created after the first one.
func newChatTitle(n int) string {
	return fmt.Sprintf("Chat %d", n)
}

// startEmbedding cancels any running job and begins tracking a new one.
func (m *Model) startEmbedding(jobID string) tea.Cmd {
	m.embedPct = 0
	m.job = m.tracker.Start(jobID)
	logging.Get(logging.CategoryEmbedding).Info("tracking embedding job %s", jobID)
	return waitForEmbedding(m.job)
}
