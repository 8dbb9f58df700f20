// Package schema converts between the diagram model and external schema
// interchange formats.
//
// The importer reads an OpenAPI-like document (named type definitions under
// components.schemas or a flat definitions map, with $ref/array-items
// cross-references) into a [diagram.Diagram], wiring reference relationships
// and running the hierarchical layout. The exporter is the inverse: it
// serializes a diagram into one of four formats selected by a string flag
// (internal, openapi, nosql, json-schema), resolving referenceEntityId links
// back into cross-references.
//
// Documents are parsed through yaml.v3 nodes, which accepts both JSON and
// YAML input and preserves key order, so palette colors and relationship
// wiring are deterministic in definition-encounter order. Shape is validated
// incrementally: the first structural mismatch is reported with its document
// path instead of accepting an untyped blob throughout.
package schema

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/schemadraw/schemadraw/pkg/errors"
)

// Kind discriminates the two accepted import shapes.
type Kind int

const (
	// KindUnknown means the input matched neither accepted shape.
	KindUnknown Kind = iota
	// KindDiagram is the diagram round-trip format (entities/relationships).
	KindDiagram
	// KindDocument is an external schema document (components.schemas,
	// a top-level openapi marker, or a flat definitions map).
	KindDocument
)

// Document is the parsed, order-preserving form of an external schema
// document. Definitions appear in document order.
type Document struct {
	Title       string
	Description string
	Version     string
	Definitions []Definition
}

// Definition is one named type definition.
type Definition struct {
	Name        string
	Type        string
	Description string
	Properties  []DocProperty
	Required    []string
}

// DocProperty is one field of a definition. Ref holds the local name
// extracted from a $ref path; for array properties Items describes the
// element, and for object properties Properties holds the nested fields.
type DocProperty struct {
	Name        string
	Type        string
	Description string
	Ref         string
	Items       *DocProperty
	Properties  []DocProperty
}

// Sniff decides how a blob of external bytes should be interpreted: as a
// diagram (entities/relationships/metadata present), as a schema document
// (components.schemas, openapi marker, or definitions present), or neither.
func Sniff(data []byte) Kind {
	root, err := parseRoot(data)
	if err != nil {
		return KindUnknown
	}
	if mapKey(root, "entities") != nil || mapKey(root, "relationships") != nil {
		return KindDiagram
	}
	if mapKey(root, "openapi") != nil || mapKey(root, "definitions") != nil {
		return KindDocument
	}
	if components := mapKey(root, "components"); components != nil && mapKey(components, "schemas") != nil {
		return KindDocument
	}
	return KindUnknown
}

// ParseDocument parses an external schema document from JSON or YAML bytes.
// Returns an INVALID_DOCUMENT error naming the first structural mismatch.
func ParseDocument(data []byte) (*Document, error) {
	root, err := parseRoot(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	if info := mapKey(root, "info"); info != nil {
		if info.Kind != yaml.MappingNode {
			return nil, shapeError("info", "mapping", info)
		}
		doc.Title = scalarKey(info, "title")
		doc.Description = scalarKey(info, "description")
		doc.Version = scalarKey(info, "version")
	}

	schemas := mapKey(root, "definitions")
	path := "definitions"
	if components := mapKey(root, "components"); components != nil {
		if components.Kind != yaml.MappingNode {
			return nil, shapeError("components", "mapping", components)
		}
		schemas = mapKey(components, "schemas")
		path = "components.schemas"
	}
	if schemas == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument,
			"document has no components.schemas or definitions section")
	}
	if schemas.Kind != yaml.MappingNode {
		return nil, shapeError(path, "mapping", schemas)
	}

	for i := 0; i < len(schemas.Content)-1; i += 2 {
		name := schemas.Content[i].Value
		def, err := parseDefinition(path+"."+name, name, schemas.Content[i+1])
		if err != nil {
			return nil, err
		}
		doc.Definitions = append(doc.Definitions, def)
	}
	return doc, nil
}

func parseDefinition(path, name string, node *yaml.Node) (Definition, error) {
	if node.Kind != yaml.MappingNode {
		return Definition{}, shapeError(path, "mapping", node)
	}
	def := Definition{
		Name:        name,
		Type:        scalarKey(node, "type"),
		Description: scalarKey(node, "description"),
	}

	if req := mapKey(node, "required"); req != nil {
		if req.Kind != yaml.SequenceNode {
			return Definition{}, shapeError(path+".required", "sequence", req)
		}
		if err := req.Decode(&def.Required); err != nil {
			return Definition{}, errors.Wrap(errors.ErrCodeInvalidDocument, err,
				"%s.required: not a list of names", path)
		}
	}

	if props := mapKey(node, "properties"); props != nil {
		if props.Kind != yaml.MappingNode {
			return Definition{}, shapeError(path+".properties", "mapping", props)
		}
		for i := 0; i < len(props.Content)-1; i += 2 {
			key := props.Content[i].Value
			p, err := parseProperty(path+".properties."+key, key, props.Content[i+1])
			if err != nil {
				return Definition{}, err
			}
			def.Properties = append(def.Properties, p)
		}
	}
	return def, nil
}

func parseProperty(path, name string, node *yaml.Node) (DocProperty, error) {
	if node.Kind != yaml.MappingNode {
		return DocProperty{}, shapeError(path, "mapping", node)
	}
	p := DocProperty{
		Name:        name,
		Type:        scalarKey(node, "type"),
		Description: scalarKey(node, "description"),
	}
	if ref := scalarKey(node, "$ref"); ref != "" {
		p.Ref = refName(ref)
	}

	if items := mapKey(node, "items"); items != nil {
		item, err := parseProperty(path+".items", "items", items)
		if err != nil {
			return DocProperty{}, err
		}
		p.Items = &item
	}

	if props := mapKey(node, "properties"); props != nil {
		if props.Kind != yaml.MappingNode {
			return DocProperty{}, shapeError(path+".properties", "mapping", props)
		}
		for i := 0; i < len(props.Content)-1; i += 2 {
			key := props.Content[i].Value
			nested, err := parseProperty(path+".properties."+key, key, props.Content[i+1])
			if err != nil {
				return DocProperty{}, err
			}
			p.Properties = append(p.Properties, nested)
		}
	}
	return p, nil
}

// refName extracts the local definition name from a $ref path, e.g.
// "#/components/schemas/User" yields "User".
func refName(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// parseRoot decodes bytes (JSON or YAML) into the top-level mapping node.
func parseRoot(data []byte) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "unparseable document")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "empty document")
	}
	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, shapeError("document root", "mapping", body)
	}
	return body, nil
}

// mapKey returns the value node stored under key in a mapping node, or nil.
func mapKey(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// scalarKey returns the scalar value stored under key, or "" when the key is
// absent or not a scalar.
func scalarKey(node *yaml.Node, key string) string {
	v := mapKey(node, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}

func shapeError(path, want string, node *yaml.Node) error {
	return errors.New(errors.ErrCodeInvalidDocument,
		"%s: expected %s, got %s", path, want, kindName(node.Kind))
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
