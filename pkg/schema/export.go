package schema

import (
	"bytes"
	"encoding/json"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// Format selects an export representation.
type Format string

// Export formats.
const (
	// FormatInternal is the diagram round-trip JSON itself.
	FormatInternal Format = "internal"
	// FormatOpenAPI nests definitions under components.schemas and renders
	// cross-references as $ref strings.
	FormatOpenAPI Format = "openapi"
	// FormatNoSQL emits document-database collections whose reference fields
	// carry an explicit {type: "reference", reference: <name>} descriptor.
	FormatNoSQL Format = "nosql"
	// FormatJSONSchema mirrors the OpenAPI shape with $ref paths pointing
	// into a flat definitions map.
	FormatJSONSchema Format = "json-schema"
)

// DefaultFormat is used when the caller does not request a format.
const DefaultFormat = FormatInternal

// ValidFormats is the set of supported export formats.
var ValidFormats = map[Format]bool{
	FormatInternal:   true,
	FormatOpenAPI:    true,
	FormatNoSQL:      true,
	FormatJSONSchema: true,
}

// ParseFormat validates a format flag. An empty string selects
// [DefaultFormat].
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return DefaultFormat, nil
	}
	f := Format(s)
	if !ValidFormats[f] {
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"invalid export format: %q (must be one of: internal, openapi, nosql, json-schema)", s)
	}
	return f, nil
}

// Export serializes a diagram into the requested format as pretty-printed
// JSON. A reference whose target entity no longer exists is exported as a
// plain string with an explanatory description suffix instead of failing.
func Export(d diagram.Diagram, f Format) ([]byte, error) {
	switch f {
	case FormatInternal:
		return diagram.Marshal(d)
	case FormatOpenAPI, FormatNoSQL, FormatJSONSchema:
		x := &exporter{format: f, names: make(map[string]string, len(d.Entities))}
		for _, e := range d.Entities {
			x.names[e.ID] = e.Name
		}
		return marshalIndent(x.document(d))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid export format: %q", f)
	}
}

type exporter struct {
	format Format
	names  map[string]string // entity id -> name
}

func (x *exporter) document(d diagram.Diagram) orderedMap {
	title := d.Metadata.Title
	if title == "" {
		title = "Untitled Diagram"
	}
	version := d.Metadata.Version
	if version == "" {
		version = "1.0.0"
	}

	switch x.format {
	case FormatOpenAPI:
		info := orderedMap{{"title", title}}
		if d.Metadata.Description != "" {
			info = append(info, entry{"description", d.Metadata.Description})
		}
		info = append(info, entry{"version", version})
		return orderedMap{
			{"openapi", "3.0.0"},
			{"info", info},
			{"components", orderedMap{{"schemas", x.definitions(d)}}},
		}

	case FormatJSONSchema:
		doc := orderedMap{
			{"$schema", "http://json-schema.org/draft-07/schema#"},
			{"title", title},
		}
		if d.Metadata.Description != "" {
			doc = append(doc, entry{"description", d.Metadata.Description})
		}
		return append(doc, entry{"definitions", x.definitions(d)})

	default: // FormatNoSQL
		db := orderedMap{{"name", title}}
		if d.Metadata.Description != "" {
			db = append(db, entry{"description", d.Metadata.Description})
		}
		db = append(db, entry{"version", version})

		collections := make([]any, 0, len(d.Entities))
		for _, e := range d.Entities {
			collections = append(collections, x.collection(e))
		}
		return orderedMap{
			{"database", db},
			{"collections", collections},
		}
	}
}

// definitions renders the schemas/definitions map in entity order.
func (x *exporter) definitions(d diagram.Diagram) orderedMap {
	defs := make(orderedMap, 0, len(d.Entities))
	for _, e := range d.Entities {
		defs = append(defs, entry{e.Name, x.definition(e)})
	}
	return defs
}

func (x *exporter) definition(e diagram.Entity) orderedMap {
	def := orderedMap{{"type", "object"}}
	if e.Description != "" {
		def = append(def, entry{"description", e.Description})
	}
	if e.Properties.Len() > 0 {
		props := make(orderedMap, 0, e.Properties.Len())
		for _, p := range e.Properties {
			props = append(props, entry{p.Name, x.property(p)})
		}
		def = append(def, entry{"properties", props})
	}
	if len(e.Required) > 0 {
		def = append(def, entry{"required", e.Required})
	}
	return def
}

func (x *exporter) collection(e diagram.Entity) orderedMap {
	coll := orderedMap{{"name", e.Name}}
	if e.Description != "" {
		coll = append(coll, entry{"description", e.Description})
	}
	if e.Properties.Len() > 0 {
		fields := make(orderedMap, 0, e.Properties.Len())
		for _, p := range e.Properties {
			fields = append(fields, entry{p.Name, x.property(p)})
		}
		coll = append(coll, entry{"fields", fields})
	}
	if len(e.Required) > 0 {
		coll = append(coll, entry{"required", e.Required})
	}
	return coll
}

// property renders one property recursively, mirroring the three structured
// shapes (reference, array, object) plus pass-through scalars.
func (x *exporter) property(p diagram.Property) orderedMap {
	switch p.Type {
	case diagram.TypeReference:
		name, ok := x.names[p.ReferenceEntityID]
		if p.ReferenceEntityID == "" || !ok {
			return orderedMap{
				{"type", "string"},
				{"description", danglingNote(p.Description)},
			}
		}
		switch x.format {
		case FormatOpenAPI:
			return orderedMap{{"$ref", "#/components/schemas/" + name}}
		case FormatJSONSchema:
			return orderedMap{{"$ref", "#/definitions/" + name}}
		default: // FormatNoSQL
			out := orderedMap{
				{"type", "reference"},
				{"reference", name},
			}
			if p.Description != "" {
				out = append(out, entry{"description", p.Description})
			}
			return out
		}

	case diagram.TypeArray:
		out := orderedMap{{"type", "array"}}
		if p.Description != "" {
			out = append(out, entry{"description", p.Description})
		}
		if p.Items != nil {
			out = append(out, entry{"items", x.property(*p.Items)})
		}
		return out

	case diagram.TypeObject:
		out := orderedMap{{"type", "object"}}
		if p.Description != "" {
			out = append(out, entry{"description", p.Description})
		}
		if p.Properties.Len() > 0 {
			nested := make(orderedMap, 0, p.Properties.Len())
			for _, child := range p.Properties {
				nested = append(nested, entry{child.Name, x.property(child)})
			}
			key := "properties"
			if x.format == FormatNoSQL {
				key = "fields"
			}
			out = append(out, entry{key, nested})
		}
		return out

	default:
		out := orderedMap{{"type", string(p.Type)}}
		if p.Description != "" {
			out = append(out, entry{"description", p.Description})
		}
		return out
	}
}

// danglingNote annotates a property whose reference target no longer exists.
func danglingNote(description string) string {
	if description == "" {
		return "Unresolved reference"
	}
	return description + " (unresolved reference)"
}

// orderedMap is a JSON object that marshals its entries in insertion order,
// keeping exported documents deterministic.
type orderedMap []entry

type entry struct {
	key string
	val any
}

// MarshalJSON implements json.Marshaler.
func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.val)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode export document")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "format export document")
	}
	return out.Bytes(), nil
}
