package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type classifies the value shape of a property.
type Type string

// Property types. Reference properties carry a ReferenceEntityID pointing at
// the target entity; array properties carry an Items descriptor; object
// properties carry a nested property map.
const (
	TypeString    Type = "string"
	TypeNumber    Type = "number"
	TypeBoolean   Type = "boolean"
	TypeArray     Type = "array"
	TypeObject    Type = "object"
	TypeReference Type = "reference"
	TypeAny       Type = "any"
)

// ValidTypes is the set of supported property types.
var ValidTypes = map[Type]bool{
	TypeString:    true,
	TypeNumber:    true,
	TypeBoolean:   true,
	TypeArray:     true,
	TypeObject:    true,
	TypeReference: true,
	TypeAny:       true,
}

// Property is a named, typed field of an entity or of a nested object
// property.
//
// ReferenceEntityID is set if and only if Type is TypeReference (it may be
// empty for a dangling reference that never resolved during import). Items is
// present iff Type is TypeArray, and Properties iff Type is TypeObject.
type Property struct {
	Name              string      `json:"name" bson:"name"`
	Type              Type        `json:"type" bson:"type"`
	Description       string      `json:"description,omitempty" bson:"description,omitempty"`
	Required          bool        `json:"required,omitempty" bson:"required,omitempty"`
	Ref               string      `json:"ref,omitempty" bson:"ref,omitempty"` // raw cross-reference name, pre-resolution only
	ReferenceEntityID string      `json:"referenceEntityId,omitempty" bson:"referenceEntityId,omitempty"`
	Items             *Property   `json:"items,omitempty" bson:"items,omitempty"`
	Properties        PropertyMap `json:"properties,omitempty" bson:"properties,omitempty"`
}

// Clone returns a deep copy of the property, including nested items and
// object properties.
func (p Property) Clone() Property {
	out := p
	if p.Items != nil {
		items := p.Items.Clone()
		out.Items = &items
	}
	out.Properties = p.Properties.Clone()
	return out
}

// PropertyMap is an ordered association of property names to properties.
//
// It serializes as a JSON object keyed by property name, preserving insertion
// order on output. Setting an existing key replaces the property in place
// (last write wins); setting a new key appends. All mutating methods return a
// new PropertyMap and leave the receiver untouched.
type PropertyMap []Property

// Get returns the property stored under name.
func (m PropertyMap) Get(name string) (Property, bool) {
	for _, p := range m {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Has reports whether a property is stored under name.
func (m PropertyMap) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Set returns a copy of the map with p stored under name. An existing entry
// keeps its position; a new entry is appended.
func (m PropertyMap) Set(name string, p Property) PropertyMap {
	p.Name = name
	out := make(PropertyMap, len(m), len(m)+1)
	copy(out, m)
	for i := range out {
		if out[i].Name == name {
			out[i] = p
			return out
		}
	}
	return append(out, p)
}

// Delete returns a copy of the map without the named property.
func (m PropertyMap) Delete(name string) PropertyMap {
	out := make(PropertyMap, 0, len(m))
	for _, p := range m {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return out
}

// Rename returns a copy of the map with the property stored under oldName
// re-keyed to newName, preserving its position and all other fields.
// If oldName is absent the map is returned unchanged.
func (m PropertyMap) Rename(oldName, newName string) PropertyMap {
	if !m.Has(oldName) {
		return m
	}
	out := m.Clone()
	for i := range out {
		if out[i].Name == oldName {
			out[i].Name = newName
			break
		}
	}
	return out
}

// Keys returns the property names in insertion order.
func (m PropertyMap) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Name
	}
	return keys
}

// Len returns the number of properties in the map.
func (m PropertyMap) Len() int { return len(m) }

// Clone returns a deep copy of the map.
func (m PropertyMap) Clone() PropertyMap {
	if m == nil {
		return nil
	}
	out := make(PropertyMap, len(m))
	for i, p := range m {
		out[i] = p.Clone()
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m PropertyMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the map, preserving the key order
// of the document. The object key wins over any embedded "name" field, and a
// duplicated key replaces the earlier entry in place, matching [PropertyMap.Set].
func (m *PropertyMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // JSON null
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	out := PropertyMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: expected string key, got %v", keyTok)
		}
		var p Property
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
		out = out.Set(key, p)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}

	*m = out
	return nil
}
