package diagram

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPropertyMapOrder(t *testing.T) {
	var m PropertyMap
	m = m.Set("id", Property{Type: TypeString})
	m = m.Set("name", Property{Type: TypeString})
	m = m.Set("age", Property{Type: TypeNumber})

	want := []string{"id", "name", "age"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Replacing an existing key must keep its slot.
	m = m.Set("name", Property{Type: TypeBoolean})
	if m.Keys()[1] != "name" {
		t.Errorf("replaced key moved: keys = %v", m.Keys())
	}
	p, _ := m.Get("name")
	if p.Type != TypeBoolean {
		t.Errorf("replaced type = %v, want %v", p.Type, TypeBoolean)
	}
}

func TestPropertyMapImmutability(t *testing.T) {
	base := PropertyMap{}.Set("id", Property{Type: TypeString})

	_ = base.Set("extra", Property{Type: TypeNumber})
	_ = base.Delete("id")
	_ = base.Rename("id", "uuid")

	if base.Len() != 1 || !base.Has("id") {
		t.Errorf("receiver mutated: %v", base.Keys())
	}
}

func TestPropertyMapDelete(t *testing.T) {
	m := PropertyMap{}.
		Set("a", Property{Type: TypeString}).
		Set("b", Property{Type: TypeString}).
		Set("c", Property{Type: TypeString})

	m = m.Delete("b")
	if m.Has("b") {
		t.Error("deleted key still present")
	}
	if got := m.Keys(); got[0] != "a" || got[1] != "c" {
		t.Errorf("keys after delete = %v, want [a c]", got)
	}
}

func TestPropertyMapRename(t *testing.T) {
	m := PropertyMap{}.
		Set("first", Property{Type: TypeString, Description: "keep me"}).
		Set("second", Property{Type: TypeNumber})

	m = m.Rename("first", "primary")
	if m.Has("first") {
		t.Error("old key still present after rename")
	}
	if got := m.Keys()[0]; got != "primary" {
		t.Errorf("renamed key moved: keys[0] = %q, want primary", got)
	}
	p, ok := m.Get("primary")
	if !ok || p.Description != "keep me" {
		t.Errorf("rename lost property fields: %+v", p)
	}

	// Renaming an absent key is a no-op.
	same := m.Rename("missing", "anything")
	if len(same) != len(m) {
		t.Errorf("rename of missing key changed the map: %v", same.Keys())
	}
}

func TestPropertyMapJSONRoundTrip(t *testing.T) {
	input := `{
		"zebra": {"type": "string"},
		"apple": {"type": "number", "required": true},
		"mango": {"type": "array", "items": {"name": "items", "type": "reference", "referenceEntityId": "e1"}}
	}`

	var m PropertyMap
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Document order wins, not lexical order.
	want := []string{"zebra", "apple", "mango"}
	for i, key := range m.Keys() {
		if key != want[i] {
			t.Fatalf("keys = %v, want %v", m.Keys(), want)
		}
	}

	p, _ := m.Get("mango")
	if p.Items == nil || p.Items.ReferenceEntityID != "e1" {
		t.Errorf("nested items lost: %+v", p.Items)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// zebra must be serialized before apple.
	s := string(out)
	if strings.Index(s, "zebra") > strings.Index(s, "apple") {
		t.Errorf("output order not preserved: %s", s)
	}

	var back PropertyMap
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("round-trip unmarshal: %v", err)
	}
	if back.Len() != m.Len() {
		t.Errorf("round-trip len = %d, want %d", back.Len(), m.Len())
	}
}

func TestPropertyMapUnmarshalNull(t *testing.T) {
	m := PropertyMap{}.Set("stale", Property{Type: TypeString})
	if err := json.Unmarshal([]byte("null"), &m); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if m != nil {
		t.Errorf("null should clear the map, got %v", m.Keys())
	}
}

func TestPropertyMapUnmarshalDuplicateKeys(t *testing.T) {
	input := `{
		"id": {"type": "string"},
		"name": {"type": "string"},
		"id": {"type": "number", "description": "second wins"}
	}`

	var m PropertyMap
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2 (duplicate collapsed)", m.Len())
	}
	// The duplicate replaces the earlier entry in place.
	if got := m.Keys(); got[0] != "id" || got[1] != "name" {
		t.Errorf("keys = %v, want [id name]", got)
	}
	p, _ := m.Get("id")
	if p.Type != TypeNumber || p.Description != "second wins" {
		t.Errorf("id = %+v, want the later entry", p)
	}
}

func TestPropertyMapUnmarshalRejectsArray(t *testing.T) {
	var m PropertyMap
	if err := json.Unmarshal([]byte(`[{"name": "a"}]`), &m); err == nil {
		t.Error("expected error for array input")
	}
}

func TestPropertyClone(t *testing.T) {
	items := Property{Name: "items", Type: TypeReference, ReferenceEntityID: "e1"}
	p := Property{
		Name:  "orders",
		Type:  TypeArray,
		Items: &items,
		Properties: PropertyMap{
			{Name: "nested", Type: TypeObject, Properties: PropertyMap{
				{Name: "deep", Type: TypeString},
			}},
		},
	}

	c := p.Clone()
	c.Items.ReferenceEntityID = "changed"
	c.Properties[0].Properties[0].Type = TypeNumber

	if p.Items.ReferenceEntityID != "e1" {
		t.Error("clone shares items pointer")
	}
	if p.Properties[0].Properties[0].Type != TypeString {
		t.Error("clone shares nested property storage")
	}
}
