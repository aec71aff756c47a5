package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/logging"
	"docchat/internal/session"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if !m.ready {
			m.ready = true
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}
		m = model

	case uploadDoneMsg:
		return m.handleUploadDone(msg)

	case embedProgressMsg:
		m.embedPct = msg.pct
		if m.job != nil {
			return m, waitForEmbedding(m.job)
		}
		return m, nil

	case embedDoneMsg:
		m.sess = session.Reduce(m.sess, session.EventEmbeddingComplete)
		m.job = nil
		m.refreshViewport()
		logging.Get(logging.CategoryEmbedding).Info("embedding complete")
		return m, nil

	case embedStoppedMsg:
		// A superseded or cancelled job; the replacement job (if any) has
		// its own waitForEmbedding chain.
		return m, nil

	case queryDoneMsg:
		m.isLoading = false
		if msg.err == nil {
			m.resolved[msg.result.Bot.ID] = msg.result.Content
		}
		m.refreshChatList()
		m.refreshViewport()
		return m, nil

	case watchBatchMsg:
		cmd := m.applyUploadBatch(msg.files)
		if m.watcher != nil {
			return m, tea.Batch(cmd, waitForBatch(m.watcher))
		}
		return m, cmd
	}

	return m.updateComponents(msg, cmds)
}

// layout sizes the child components for the current window.
func (m *Model) layout() {
	headerHeight := 1
	footerHeight := 1
	inputHeight := 3

	contentWidth := m.width
	if m.showDrawer {
		contentWidth = m.width - drawerWidth - 1
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	vpHeight := m.height - headerHeight - footerHeight - inputHeight - 2
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(contentWidth - 4)
	m.chatList.SetSize(drawerWidth, vpHeight)
	m.filepicker.Height = vpHeight
	m.progress.Width = min(contentWidth-8, 50)
}

// handleKey routes key presses. handled=false means the key should still
// flow to the focused child component.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	// A failed upload blocks everything until acknowledged.
	if m.uploadErr != "" {
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit, true
		case "enter", "esc":
			m.uploadErr = ""
		}
		return m, nil, true
	}

	switch msg.String() {
	case "ctrl+c":
		m.shutdown()
		return m, tea.Quit, true

	case "esc":
		if m.sess.Overlay {
			m.sess = session.Reduce(m.sess, session.EventOverlayClosed)
			return m, nil, true
		}
		if m.showDrawer {
			m.showDrawer = false
			m.layout()
			m.refreshViewport()
			return m, nil, true
		}
		m.shutdown()
		return m, tea.Quit, true

	case "ctrl+u":
		if m.sess.Phase == session.PhaseConversing && !m.sess.Overlay {
			m.sess = session.Reduce(m.sess, session.EventNewUploadRequested)
			return m, m.filepicker.Init(), true
		}
		return m, nil, true

	case "ctrl+l":
		if m.sess.Phase == session.PhaseConversing && !m.sess.Overlay {
			m.showDrawer = !m.showDrawer
			if m.showDrawer {
				m.refreshChatList()
			}
			m.layout()
			m.refreshViewport()
		}
		return m, nil, true

	case "ctrl+n":
		if m.sess.Phase == session.PhaseConversing && !m.sess.Overlay {
			id := m.store.CreateChat(newChatTitle(m.store.Len() + 1))
			_ = m.store.SelectChat(id)
			m.refreshChatList()
			m.refreshViewport()
		}
		return m, nil, true

	case "enter":
		if m.showDrawer {
			if item, ok := m.chatList.SelectedItem().(chatItem); ok {
				_ = m.store.SelectChat(item.id)
				m.showDrawer = false
				m.layout()
				m.refreshViewport()
			}
			return m, nil, true
		}
		if m.sess.Phase == session.PhaseConversing && !m.sess.Overlay {
			return m.submitQuery()
		}

	case "delete", "ctrl+d":
		if m.showDrawer {
			if item, ok := m.chatList.SelectedItem().(chatItem); ok {
				m.store.DeleteChat(item.id)
				m.refreshChatList()
				m.refreshViewport()
			}
			return m, nil, true
		}
	}

	return m, nil, false
}

// submitQuery validates the composed text and hands it to the dispatcher.
// The dispatcher appends the user message synchronously before the network
// round trip, so the next render already shows it.
func (m Model) submitQuery() (Model, tea.Cmd, bool) {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" || m.dispatcher.Loading() {
		return m, nil, true
	}
	chatID := m.store.ActiveID()
	if chatID == "" {
		return m, nil, true
	}
	m.textarea.Reset()
	m.isLoading = true
	cmd := m.sendCmd(chatID, text)
	// Give the dispatcher a beat to append the user message, then repaint
	// on the next spinner tick.
	return m, tea.Batch(cmd, m.spinner.Tick), true
}

// handleUploadDone applies the result of an upload attempt.
func (m Model) handleUploadDone(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.uploadErr = "Error uploading files. Please try again."
		logging.Get(logging.CategoryBackend).Error("upload failed: %v", msg.err)
		return m, nil
	}
	if msg.overlay {
		m.sess = session.Reduce(m.sess, session.EventOverlayUploadComplete)
	} else {
		m.sess = session.Reduce(m.sess, session.EventUploadComplete)
	}
	return m, m.startEmbedding(msg.jobID)
}

// applyUploadBatch starts an upload for documents dropped into the watch
// folder, raising the overlay path when a conversation is already live.
func (m *Model) applyUploadBatch(files []string) tea.Cmd {
	if len(files) == 0 {
		return nil
	}
	logging.Get(logging.CategoryWatch).Info("uploading %d dropped file(s)", len(files))

	switch m.sess.Phase {
	case session.PhaseIngesting:
		return m.uploadCmd(files, false)
	case session.PhaseEmbedding:
		// Already embedding; the new upload restarts the job when it lands.
		return m.uploadCmd(files, false)
	case session.PhaseConversing:
		if !m.sess.Overlay {
			m.sess = session.Reduce(m.sess, session.EventNewUploadRequested)
		}
		return m.uploadCmd(files, true)
	}
	return nil
}

// updateComponents forwards the message to whichever child owns focus.
func (m Model) updateComponents(msg tea.Msg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	pickerActive := m.sess.Phase == session.PhaseIngesting ||
		(m.sess.Phase == session.PhaseConversing && m.sess.Overlay)

	if pickerActive && m.uploadErr == "" {
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)

		if ok, path := m.filepicker.DidSelectFile(msg); ok {
			overlay := m.sess.Overlay
			cmds = append(cmds, m.uploadCmd([]string{path}, overlay))
		}
		if ok, path := m.filepicker.DidSelectDisabledFile(msg); ok {
			m.uploadErr = "Unsupported file type: " + path
		}
	}

	if m.showDrawer {
		var listCmd tea.Cmd
		m.chatList, listCmd = m.chatList.Update(msg)
		cmds = append(cmds, listCmd)
	} else if m.sess.Phase == session.PhaseConversing && !m.sess.Overlay && m.uploadErr == "" {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	var spinCmd tea.Cmd
	m.spinner, spinCmd = m.spinner.Update(msg)
	if m.isLoading || m.sess.Phase == session.PhaseEmbedding {
		cmds = append(cmds, spinCmd)
		m.refreshViewport()
	}

	return m, tea.Batch(cmds...)
}
