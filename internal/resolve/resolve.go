// Package resolve classifies opaque backend answer payloads into renderable
// structure. A payload may be a JSON-encoded list, a structured object, or
// plain prose; the resolver must never let a malformed payload escape as a
// panic. Any internal failure degrades to a per-message placeholder.
package resolve

import "encoding/json"

// Kind says how a resolved payload should be displayed.
type Kind int

const (
	// KindText is plain prose, rendered verbatim.
	KindText Kind = iota
	// KindList is a bulleted item list.
	KindList
	// KindEmpty is an empty item list, rendered as a fixed placeholder.
	KindEmpty
	// KindNote is an informational aside, distinct from a primary answer.
	KindNote
	// KindError is the per-message fault-containment sentinel.
	KindError
)

// Fixed display strings. These are part of the visible contract; tests and
// the UI depend on them byte for byte.
const (
	NoItemsText     = "No items found."
	RenderErrorText = "Error rendering content. Please try again."
)

// Item is one entry of a list payload. Either field may be empty; the rest of
// an element's shape is ignored.
type Item struct {
	Name        string
	Description string
}

// Content is the resolved display form of a payload.
type Content struct {
	Kind  Kind
	Items []Item
	Text  string
}

// Resolve interprets a raw payload string. Resolution order:
//
//  1. JSON array        -> item list ("No items found." when empty)
//  2. object with items -> item list over object.items
//  3. object with a message string -> informational note
//  4. any other valid JSON -> the original raw text, unchanged
//  5. not valid JSON    -> the raw text as-is
//
// Case 4 deliberately returns the raw text rather than a re-rendering of the
// parsed value; see DESIGN.md before changing it. Resolve never panics: an
// internal failure yields the KindError sentinel for this message alone.
func Resolve(raw string) (c Content) {
	defer func() {
		if r := recover(); r != nil {
			c = Content{Kind: KindError, Text: RenderErrorText}
		}
	}()

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Content{Kind: KindText, Text: raw}
	}

	switch val := v.(type) {
	case []any:
		return listContent(val)
	case map[string]any:
		if items, ok := val["items"].([]any); ok {
			return listContent(items)
		}
		if msg, ok := val["message"].(string); ok {
			return Content{Kind: KindNote, Text: msg}
		}
	}
	return Content{Kind: KindText, Text: raw}
}

// listContent builds the item-list form. Every element becomes an item, even
// when it carries neither name nor description; non-object elements render as
// bare bullets.
func listContent(elems []any) Content {
	if len(elems) == 0 {
		return Content{Kind: KindEmpty, Text: NoItemsText}
	}

	items := make([]Item, 0, len(elems))
	for _, e := range elems {
		var it Item
		if m, ok := e.(map[string]any); ok {
			if s, ok := m["name"].(string); ok {
				it.Name = s
			}
			if s, ok := m["description"].(string); ok {
				it.Description = s
			}
		}
		items = append(items, it)
	}
	return Content{Kind: KindList, Items: items}
}
