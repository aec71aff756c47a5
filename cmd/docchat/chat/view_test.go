package chat

import (
	"strings"
	"testing"

	"docchat/internal/chatstore"
	"docchat/internal/dispatch"
	"docchat/internal/resolve"
)

func TestRenderContent_KindsOnCacheMiss(t *testing.T) {
	m := sized(t, newTestModel(t))

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"list", `[{"name":"Vector DB","description":"stores embeddings"}]`, "Vector DB"},
		{"empty list", `[]`, resolve.NoItemsText},
		{"note", `{"message":"Index is warming up"}`, "Index is warming up"},
		{"plain text", "just an answer", "just an answer"},
		{"raw json fallthrough", `{"score":0.93}`, `{"score":0.93}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.renderContent(chatstore.Message{ID: 99, Text: tt.raw})
			if !strings.Contains(got, tt.want) {
				t.Errorf("renderContent(%q) = %q, want it to contain %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRenderHistory_ShowsExchangeAndThinking(t *testing.T) {
	m := toConversing(t, sized(t, newTestModel(t)))
	chatID := m.store.ActiveID()

	if _, err := m.store.AppendMessage(chatID, "what is in the report?", true); err != nil {
		t.Fatal(err)
	}
	if _, err := m.store.AppendMessage(chatID, "The report covers Q3.", false); err != nil {
		t.Fatal(err)
	}
	m.isLoading = true

	out := m.renderHistory()
	for _, want := range []string{"You", "what is in the report?", "Assistant", "The report covers Q3.", "Thinking..."} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistory_FallbackReplyRendersAsText(t *testing.T) {
	m := toConversing(t, sized(t, newTestModel(t)))
	chatID := m.store.ActiveID()

	if _, err := m.store.AppendMessage(chatID, dispatch.FallbackText, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(m.renderHistory(), dispatch.FallbackText) {
		t.Error("the fallback reply must render verbatim")
	}
}

func TestRenderHistory_NoActiveChat(t *testing.T) {
	m := toConversing(t, sized(t, newTestModel(t)))
	m.store.DeleteChat(m.store.ActiveID())

	if !strings.Contains(m.renderHistory(), "No chat selected") {
		t.Error("deleting the active chat must leave a placeholder, not a panic")
	}
}

func TestSafeRenderMarkdown_NilRendererFallsBack(t *testing.T) {
	m := newTestModel(t)
	m.renderer = nil

	const md = "- **a**: b"
	if got := m.safeRenderMarkdown(md); got != md {
		t.Errorf("safeRenderMarkdown without a renderer = %q, want the input back", got)
	}
}

func TestView_ConversationChrome(t *testing.T) {
	m := toConversing(t, sized(t, newTestModel(t)))

	out := m.View()
	if !strings.Contains(out, appTitle) {
		t.Error("conversation view must show the header title")
	}
	if !strings.Contains(out, "Ready") {
		t.Error("idle conversation must show the Ready badge")
	}

	m.isLoading = true
	if !strings.Contains(m.View(), "Thinking") {
		t.Error("loading conversation must show the Thinking status")
	}
}

func TestView_UploadScreenCopy(t *testing.T) {
	m := sized(t, newTestModel(t))

	out := m.View()
	if !strings.Contains(out, "Supported formats: PDF, TXT, DOC, DOCX") {
		t.Error("upload screen must list the supported formats")
	}
}
