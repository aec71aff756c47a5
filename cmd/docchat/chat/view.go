package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docchat/cmd/docchat/ui"
	"docchat/internal/chatstore"
	"docchat/internal/resolve"
	"docchat/internal/session"
)

const (
	drawerWidth = 32

	appTitle = "Document Q&A Assistant"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.uploadErr != "" {
		return m.viewAlert()
	}

	switch m.sess.Phase {
	case session.PhaseIngesting:
		return m.viewUpload(false)
	case session.PhaseEmbedding:
		return m.viewEmbedding()
	case session.PhaseConversing:
		if m.sess.Overlay {
			return m.viewUpload(true)
		}
		return m.viewConversation()
	}
	return ""
}

// viewAlert renders the blocking upload failure panel.
func (m Model) viewAlert() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.Destructive).
		Padding(1, 3)

	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Error.Render("Upload Failed"),
		"",
		m.styles.Body.Render(m.uploadErr),
		"",
		m.styles.Muted.Render("enter to dismiss"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(body))
}

// viewUpload renders the document picker, either as the initial full-screen
// ingest step or as the overlay raised from a running conversation.
func (m Model) viewUpload(overlay bool) string {
	var b strings.Builder

	title := appTitle
	if overlay {
		title = "Upload More Documents"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Select documents to get started"))
	b.WriteString("\n\n")
	b.WriteString(m.filepicker.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Supported formats: PDF, TXT, DOC, DOCX"))
	b.WriteString("\n")
	if overlay {
		b.WriteString(m.styles.Muted.Render("esc: back to conversation"))
	} else {
		b.WriteString(m.styles.Muted.Render("enter: upload selected file  •  esc: quit"))
	}

	if overlay {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(m.styles.Theme.Border).
			Padding(1, 2)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(b.String()))
	}
	return m.styles.Content.Render(b.String())
}

// viewEmbedding renders the centered progress screen.
func (m Model) viewEmbedding() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Title.Render("Processing Documents"),
		m.styles.Subtitle.Render("Building the search index for your files"),
		"",
		m.progress.ViewAs(float64(m.embedPct)/100),
		"",
		m.styles.Bold.Render(fmt.Sprintf("%d%% Complete", m.embedPct)),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// viewConversation renders the main chat screen with the optional history
// drawer on the left.
func (m Model) viewConversation() string {
	header := m.viewHeader()

	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Border).
		Width(m.viewport.Width - 2).
		Render(m.textarea.View())

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		input,
	)

	if m.showDrawer {
		drawer := lipgloss.NewStyle().
			Width(drawerWidth).
			BorderRight(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(m.styles.Theme.Border).
			Render(m.chatList.View())
		main = lipgloss.JoinHorizontal(lipgloss.Top, drawer, main)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		main,
		m.viewFooter(),
	)
}

func (m Model) viewHeader() string {
	title := m.styles.Header.Render(appTitle)

	var status string
	if m.isLoading {
		status = m.spinner.View() + m.styles.Info.Render(" Thinking")
	} else {
		status = m.styles.Badge.Render("Ready")
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + status
}

func (m Model) viewFooter() string {
	hints := "enter: send  •  ctrl+u: upload  •  ctrl+l: history  •  ctrl+n: new chat  •  ctrl+c: quit"
	if m.showDrawer {
		hints = "enter: open chat  •  delete: remove chat  •  esc: close"
	}
	return m.styles.Footer.Render(hints)
}

// renderHistory renders the active chat's transcript for the viewport.
func (m Model) renderHistory() string {
	msgs := m.activeMessages()
	if m.store.ActiveID() == "" {
		return m.styles.Muted.Render("No chat selected. ctrl+n starts a new one.")
	}
	if len(msgs) == 0 && !m.isLoading {
		return m.styles.Muted.Render("Ask a question about your documents.")
	}

	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}
	if m.isLoading {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Subtitle.Render(" Thinking..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMessage(msg chatstore.Message) string {
	caption := m.styles.Muted.Render(m.store.TimeAgo(msg.Timestamp))
	if msg.IsUser {
		return m.styles.Bold.Render("You ") + caption + "\n" +
			m.styles.UserInput.Render(msg.Text)
	}
	return m.styles.Bold.Render("Assistant ") + caption + "\n" +
		m.styles.BotResponse.Render(m.renderContent(msg))
}

// renderContent turns a bot message's resolved form into display text.
// Cache misses re-resolve from the stored raw text.
func (m Model) renderContent(msg chatstore.Message) string {
	c, ok := m.resolved[msg.ID]
	if !ok {
		c = resolve.Resolve(msg.Text)
	}

	switch c.Kind {
	case resolve.KindList:
		var b strings.Builder
		for _, item := range c.Items {
			b.WriteString("- **")
			b.WriteString(item.Name)
			b.WriteString("**: ")
			b.WriteString(item.Description)
			b.WriteString("\n")
		}
		return m.safeRenderMarkdown(b.String())
	case resolve.KindEmpty:
		return m.styles.Subtitle.Render(resolve.NoItemsText)
	case resolve.KindError:
		return m.styles.Subtitle.Render(resolve.RenderErrorText)
	case resolve.KindNote:
		return m.styles.Subtitle.Render(c.Text)
	default:
		return m.styles.Body.Render(c.Text)
	}
}

// safeRenderMarkdown renders markdown, falling back to the raw text on any
// renderer failure or panic.
func (m Model) safeRenderMarkdown(md string) (out string) {
	out = md
	if m.renderer == nil {
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			out = md
		}
	}()
	rendered, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, "\n")
}
