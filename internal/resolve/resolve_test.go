package resolve

import (
	"strings"
	"testing"
)

func TestResolve_Array(t *testing.T) {
	t.Parallel()

	c := Resolve(`[{"name":"A","description":"d"}]`)
	if c.Kind != KindList {
		t.Fatalf("Kind = %v, want KindList", c.Kind)
	}
	if len(c.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(c.Items))
	}
	if c.Items[0].Name != "A" || c.Items[0].Description != "d" {
		t.Errorf("Items[0] = %+v", c.Items[0])
	}
}

func TestResolve_EmptyArray(t *testing.T) {
	t.Parallel()

	c := Resolve(`[]`)
	if c.Kind != KindEmpty {
		t.Fatalf("Kind = %v, want KindEmpty", c.Kind)
	}
	if c.Text != NoItemsText {
		t.Errorf("Text = %q, want %q", c.Text, NoItemsText)
	}
}

func TestResolve_ArrayOfPrimitives(t *testing.T) {
	t.Parallel()

	// Elements without name/description still count as list items.
	c := Resolve(`["item1","item2"]`)
	if c.Kind != KindList {
		t.Fatalf("Kind = %v, want KindList", c.Kind)
	}
	if len(c.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(c.Items))
	}
	for i, it := range c.Items {
		if it.Name != "" || it.Description != "" {
			t.Errorf("Items[%d] = %+v, want empty fields", i, it)
		}
	}
}

func TestResolve_PartialItems(t *testing.T) {
	t.Parallel()

	c := Resolve(`[{"name":"only name"},{"description":"only desc"},{"other":1}]`)
	if c.Kind != KindList || len(c.Items) != 3 {
		t.Fatalf("got %+v", c)
	}
	if c.Items[0].Name != "only name" || c.Items[0].Description != "" {
		t.Errorf("Items[0] = %+v", c.Items[0])
	}
	if c.Items[1].Name != "" || c.Items[1].Description != "only desc" {
		t.Errorf("Items[1] = %+v", c.Items[1])
	}
}

func TestResolve_ObjectWithItems(t *testing.T) {
	t.Parallel()

	c := Resolve(`{"items":[{"name":"A"}],"message":"ignored"}`)
	if c.Kind != KindList {
		t.Fatalf("Kind = %v, want KindList (items wins over message)", c.Kind)
	}
	if len(c.Items) != 1 || c.Items[0].Name != "A" {
		t.Errorf("Items = %+v", c.Items)
	}

	if c := Resolve(`{"items":[]}`); c.Kind != KindEmpty {
		t.Errorf("empty items array: Kind = %v, want KindEmpty", c.Kind)
	}
}

func TestResolve_ObjectWithNonArrayItems(t *testing.T) {
	t.Parallel()

	// items that is not an array falls through to the message case.
	c := Resolve(`{"items":"not an array","message":"hi"}`)
	if c.Kind != KindNote || c.Text != "hi" {
		t.Errorf("got %+v, want note %q", c, "hi")
	}
}

func TestResolve_ObjectWithMessage(t *testing.T) {
	t.Parallel()

	c := Resolve(`{"message":"hi"}`)
	if c.Kind != KindNote {
		t.Fatalf("Kind = %v, want KindNote", c.Kind)
	}
	if c.Text != "hi" {
		t.Errorf("Text = %q, want %q", c.Text, "hi")
	}
}

func TestResolve_UnrecognizedJSONFallsBackToRawText(t *testing.T) {
	t.Parallel()

	// Parsed JSON that matches no case renders the original raw text, not a
	// re-serialization of the parsed value.
	cases := []string{
		`{"answer": 42}`,
		`{"message": 5}`, // message must be a string to count
		`"a plain json string"`,
		`42`,
		`true`,
		`null`,
	}
	for _, raw := range cases {
		c := Resolve(raw)
		if c.Kind != KindText {
			t.Errorf("Resolve(%q).Kind = %v, want KindText", raw, c.Kind)
		}
		if c.Text != raw {
			t.Errorf("Resolve(%q).Text = %q, want the raw input", raw, c.Text)
		}
	}
}

func TestResolve_InvalidJSON(t *testing.T) {
	t.Parallel()

	c := Resolve("not json")
	if c.Kind != KindText || c.Text != "not json" {
		t.Errorf("got %+v, want verbatim raw text", c)
	}
}

func TestResolve_NeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"{",
		"[",
		`{"items":[null,1,[],{}]}`,
		`[[["deep"]]]`,
		strings.Repeat("[", 1000),
		string([]byte{0xff, 0xfe, 0x00}),
		`{"name":` + strings.Repeat(`"x",`, 10) + `}`,
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Resolve(%.20q...) panicked: %v", in, r)
				}
			}()
			_ = Resolve(in)
		}()
	}
}
