package schema

import (
	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/layout"
)

// Import translates a parsed schema document into a diagram.
//
// It runs three passes, in this order because the later passes need every
// entity to exist first:
//
//  1. Entity pass: one entity per definition, with a fresh id, recursively
//     converted properties, the definition's required list, a palette color
//     in encounter order, and a placeholder (0,0) position.
//  2. Relationship pass: top-level properties (and their array items) whose
//     cross-reference resolves to a known entity get their
//     referenceEntityId set and a reference relationship appended. An
//     unresolvable $ref stays a reference without a target: a dangling
//     reference the rest of the system tolerates, not an import error.
//     Nested object properties only get their $ref-resolved type; they do
//     not generate relationships.
//  3. Layout pass: the hierarchical strategy assigns the final positions.
func Import(doc *Document) diagram.Diagram {
	d := diagram.Diagram{
		Metadata: diagram.Metadata{
			Title:       doc.Title,
			Description: doc.Description,
			Version:     doc.Version,
		},
	}

	// Pass 1: entities.
	for i, def := range doc.Definitions {
		entityType := def.Type
		if entityType == "" {
			entityType = "object"
		}
		e := diagram.Entity{
			ID:          diagram.NewID(),
			Name:        def.Name,
			Type:        entityType,
			Description: def.Description,
			Color:       diagram.PaletteColor(i),
			Required:    append([]string(nil), def.Required...),
		}
		for _, p := range def.Properties {
			e.Properties = append(e.Properties, convertProperty(p))
		}
		for _, name := range def.Required {
			if p, ok := e.Properties.Get(name); ok {
				p.Required = true
				e.Properties = e.Properties.Set(name, p)
			}
		}
		d.Entities = append(d.Entities, e)
	}

	// Pass 2: resolve top-level cross-references into relationships.
	byName := make(map[string]string, len(d.Entities))
	for _, e := range d.Entities {
		byName[e.Name] = e.ID
	}
	for i := range d.Entities {
		owner := &d.Entities[i]
		for j := range owner.Properties {
			p := &owner.Properties[j]
			switch {
			case p.Type == diagram.TypeReference && p.Ref != "":
				if targetID, ok := byName[p.Ref]; ok {
					p.ReferenceEntityID = targetID
					p.Ref = ""
					d.Relationships = append(d.Relationships, referenceRelationship(owner.ID, targetID))
				}
			case p.Type == diagram.TypeArray && p.Items != nil &&
				p.Items.Type == diagram.TypeReference && p.Items.Ref != "":
				if targetID, ok := byName[p.Items.Ref]; ok {
					p.Items.ReferenceEntityID = targetID
					p.Items.Ref = ""
					d.Relationships = append(d.Relationships, referenceRelationship(owner.ID, targetID))
				}
			}
		}
	}

	// Pass 3: positions.
	return layout.Apply(layout.StrategyHierarchy, d)
}

// convertProperty maps a document property onto the diagram model. A $ref at
// any nesting depth becomes a reference-typed property; resolution to an
// entity id happens in the relationship pass and only for the top level.
func convertProperty(p DocProperty) diagram.Property {
	out := diagram.Property{
		Name:        p.Name,
		Description: p.Description,
	}
	switch {
	case p.Ref != "":
		out.Type = diagram.TypeReference
		out.Ref = p.Ref
	case p.Type == "array":
		out.Type = diagram.TypeArray
		if p.Items != nil {
			items := convertProperty(*p.Items)
			out.Items = &items
		}
	case p.Type == "object":
		out.Type = diagram.TypeObject
		for _, nested := range p.Properties {
			out.Properties = append(out.Properties, convertProperty(nested))
		}
	default:
		out.Type = scalarType(p.Type)
	}
	return out
}

// scalarType maps external scalar type names onto the model's closed set.
func scalarType(t string) diagram.Type {
	switch t {
	case "string":
		return diagram.TypeString
	case "number", "integer":
		return diagram.TypeNumber
	case "boolean":
		return diagram.TypeBoolean
	default:
		return diagram.TypeAny
	}
}

func referenceRelationship(sourceID, targetID string) diagram.Relationship {
	return diagram.Relationship{
		ID:     diagram.NewID(),
		Source: sourceID,
		Target: targetID,
		Type:   diagram.RelationReference,
	}
}
