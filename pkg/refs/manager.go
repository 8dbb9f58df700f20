// Package refs keeps reference-typed properties and diagram relationships
// mutually consistent across edits.
//
// The schema graph has a correspondence invariant: every reference-typed
// relationship matches a property in its source entity whose
// referenceEntityId names the target. This package is the sole writer of
// that correspondence. It exposes five operations, one per triggering edit:
//
//   - [Connect]: the user drew a new edge between two entities
//   - [RetypeToReference]: a property's type changed to "reference"
//   - [RetypeFromReference]: a reference property changed to another type
//     or was deleted
//   - [DeleteEntity]: an entity was removed
//   - [RenameEntity]: an entity's display name changed
//
// [Retype] is the entry point for arbitrary type changes: it routes through
// the two retype operations when either side of the transition is a
// reference, and applies plain transitions (string to number, object to
// boolean, ...) directly.
//
// All operations are pure functions from a diagram to a new diagram; the
// input is never mutated. Unknown ids and no-op conditions (connecting an
// already-connected pair, retyping to the current type) return the input
// unchanged rather than erroring, so every operation is total.
//
// Connect writes the synthesized property into the edge's source entity.
// The upstream variants of this operation disagreed on which endpoint
// receives the property; source-side is the documented policy here.
//
// RetypeFromReference removes only reference-typed relationships for the
// owner/old-target pair. Composition, aggregation and inheritance edges
// carry no property correspondence, so demoting a property never touches
// them.
package refs

import (
	"fmt"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

// Offsets applied to a synthesized entity's position so the new node does
// not overlap the entity whose property spawned it.
const (
	spawnOffsetX = 280
	spawnOffsetY = 40
)

// Connect wires a drawn edge between two existing entities: it derives a
// lower-camel property key from the target's name, writes a reference
// property under that key into the source entity, and records a
// reference-typed relationship between the pair unless one already exists.
//
// Connect is idempotent: if the derived property already references the
// target, the diagram is returned unchanged. Unknown source or target ids
// also return the diagram unchanged.
func Connect(d diagram.Diagram, sourceID, targetID string) diagram.Diagram {
	source, ok := d.EntityByID(sourceID)
	if !ok {
		return d
	}
	target, ok := d.EntityByID(targetID)
	if !ok {
		return d
	}

	key := PropertyKey(target.Name)
	if p, ok := source.Properties.Get(key); ok &&
		p.Type == diagram.TypeReference && p.ReferenceEntityID == target.ID {
		return d
	}

	out := d.Clone()
	for i := range out.Entities {
		if out.Entities[i].ID != sourceID {
			continue
		}
		out.Entities[i].Properties = out.Entities[i].Properties.Set(key, diagram.Property{
			Type:              diagram.TypeReference,
			Description:       referenceDescription(target.Name),
			ReferenceEntityID: target.ID,
		})
	}
	if !out.HasRelationship(sourceID, targetID, diagram.RelationReference) {
		out.Relationships = append(out.Relationships, diagram.Relationship{
			ID:     diagram.NewID(),
			Source: sourceID,
			Target: targetID,
			Type:   diagram.RelationReference,
		})
	}
	return out
}

// RetypeToReference handles a property whose type was changed to
// "reference". If an entity already exists whose name case-insensitively
// equals the title-cased property key, the property is pointed at it and a
// relationship is added only when the pair is not already related.
// Otherwise a brand-new entity is synthesized: fresh id, title-cased name,
// a description naming the owner and property, and a position offset from
// the owner so the new node does not overlap it.
//
// A property that is already a resolved reference, or an unknown owner or
// property name, returns the diagram unchanged.
func RetypeToReference(d diagram.Diagram, ownerID, propName string) diagram.Diagram {
	owner, ok := d.EntityByID(ownerID)
	if !ok {
		return d
	}
	prop, ok := owner.Properties.Get(propName)
	if !ok {
		return d
	}
	if prop.Type == diagram.TypeReference && prop.ReferenceEntityID != "" {
		return d
	}

	out := d.Clone()
	name := EntityName(propName)
	target, found := out.EntityByName(name)
	if !found {
		target = diagram.Entity{
			ID:          diagram.NewID(),
			Name:        name,
			Type:        "object",
			Description: fmt.Sprintf("%s referenced by %s.%s", name, owner.Name, propName),
			Color:       diagram.PaletteColor(len(out.Entities)),
			Position: diagram.Point{
				X: owner.Position.X + spawnOffsetX,
				Y: owner.Position.Y + spawnOffsetY,
			},
		}
		out.Entities = append(out.Entities, target)
	}

	for i := range out.Entities {
		if out.Entities[i].ID != ownerID {
			continue
		}
		next := prop.Clone()
		next.Type = diagram.TypeReference
		next.ReferenceEntityID = target.ID
		next.Ref = ""
		next.Items = nil
		next.Properties = nil
		out.Entities[i].Properties = out.Entities[i].Properties.Set(propName, next)
	}

	if !out.HasRelationship(ownerID, target.ID, diagram.RelationReference) {
		out.Relationships = append(out.Relationships, diagram.Relationship{
			ID:     diagram.NewID(),
			Source: ownerID,
			Target: target.ID,
			Type:   diagram.RelationReference,
		})
	}
	return out
}

// RetypeFromReference handles a reference property whose type was changed
// away from "reference" (or that was deleted while still a reference). The
// property is demoted to a plain string with its reference fields cleared,
// and exactly the reference relationships from the owner to the old target
// are removed. The target entity itself is left in place.
//
// If the named property is not currently a reference the diagram is
// returned unchanged.
func RetypeFromReference(d diagram.Diagram, ownerID, propName string) diagram.Diagram {
	owner, ok := d.EntityByID(ownerID)
	if !ok {
		return d
	}
	prop, ok := owner.Properties.Get(propName)
	if !ok || prop.Type != diagram.TypeReference {
		return d
	}
	oldTarget := prop.ReferenceEntityID

	out := d.Clone()
	for i := range out.Entities {
		if out.Entities[i].ID != ownerID {
			continue
		}
		next := prop.Clone()
		next.Type = diagram.TypeString
		next.ReferenceEntityID = ""
		next.Ref = ""
		out.Entities[i].Properties = out.Entities[i].Properties.Set(propName, next)
	}

	if oldTarget != "" {
		kept := out.Relationships[:0]
		for _, r := range out.Relationships {
			if r.Type == diagram.RelationReference && r.Source == ownerID && r.Target == oldTarget {
				continue
			}
			kept = append(kept, r)
		}
		out.Relationships = kept
	}
	return out
}

// Retype changes a property's type. A change to "reference" goes through
// [RetypeToReference]; a change away from a reference goes through
// [RetypeFromReference] first, then the requested type is applied on top of
// the demoted property. Plain transitions between non-reference types set
// the type directly, dropping structured payloads (array items, nested
// object properties) that no longer apply.
//
// Unknown owners or property names, and retyping a property to its current
// type, return the diagram unchanged.
func Retype(d diagram.Diagram, ownerID, propName string, typ diagram.Type) diagram.Diagram {
	owner, ok := d.EntityByID(ownerID)
	if !ok {
		return d
	}
	prop, ok := owner.Properties.Get(propName)
	if !ok {
		return d
	}
	if typ == diagram.TypeReference {
		return RetypeToReference(d, ownerID, propName)
	}
	if prop.Type == diagram.TypeReference {
		d = RetypeFromReference(d, ownerID, propName)
	}
	return setType(d, ownerID, propName, typ)
}

// setType applies a plain type change to an existing property. The owner and
// property are known to exist.
func setType(d diagram.Diagram, ownerID, propName string, typ diagram.Type) diagram.Diagram {
	owner, _ := d.EntityByID(ownerID)
	prop, _ := owner.Properties.Get(propName)
	if prop.Type == typ {
		return d
	}

	out := d.Clone()
	for i := range out.Entities {
		if out.Entities[i].ID != ownerID {
			continue
		}
		next := prop.Clone()
		next.Type = typ
		next.Ref = ""
		if typ != diagram.TypeArray {
			next.Items = nil
		}
		if typ != diagram.TypeObject {
			next.Properties = nil
		}
		out.Entities[i].Properties = out.Entities[i].Properties.Set(propName, next)
	}
	return out
}

// DeleteEntity removes an entity and cascade-cleans everything that pointed
// at it: every property anywhere in the diagram (including nested object
// properties and array items) whose referenceEntityId named the entity is
// demoted to a string with the reference cleared, and every relationship
// touching the entity is dropped.
//
// An unknown id returns the diagram unchanged.
func DeleteEntity(d diagram.Diagram, entityID string) diagram.Diagram {
	if _, ok := d.EntityByID(entityID); !ok {
		return d
	}

	out := d.Clone()
	entities := out.Entities[:0]
	for _, e := range out.Entities {
		if e.ID == entityID {
			continue
		}
		for i := range e.Properties {
			e.Properties[i] = scrubReference(e.Properties[i], entityID)
		}
		entities = append(entities, e)
	}
	out.Entities = entities

	kept := out.Relationships[:0]
	for _, r := range out.Relationships {
		if r.Source == entityID || r.Target == entityID {
			continue
		}
		kept = append(kept, r)
	}
	out.Relationships = kept
	return out
}

// RenameEntity applies an entity rename to everything derived from the old
// name: the entity's own label, the descriptions of all properties that
// reference it, and the keys of referencing properties whose key exactly
// equals the camel-cased old name. Relationships are untouched since they
// reference ids, not names.
func RenameEntity(d diagram.Diagram, entityID, oldName, newName string) diagram.Diagram {
	if _, ok := d.EntityByID(entityID); !ok {
		return d
	}

	out := d.Clone()
	oldKey := PropertyKey(oldName)
	newKey := PropertyKey(newName)

	for i := range out.Entities {
		if out.Entities[i].ID == entityID {
			out.Entities[i].Name = newName
		}
		out.Entities[i].Properties = renameReferences(
			out.Entities[i].Properties, entityID, oldKey, newKey, newName)
	}
	return out
}

// renameReferences rewrites a property map in place (the map is already a
// private clone) and returns it. Properties referencing the renamed entity
// get a fresh description; those additionally keyed by the old derived name
// are re-keyed to the new one.
func renameReferences(props diagram.PropertyMap, entityID, oldKey, newKey, newName string) diagram.PropertyMap {
	for i := range props {
		p := &props[i]
		if p.ReferenceEntityID == entityID {
			p.Description = referenceDescription(newName)
			if p.Name == oldKey {
				p.Name = newKey
			}
		}
		if p.Items != nil && p.Items.ReferenceEntityID == entityID {
			p.Items.Description = referenceDescription(newName)
		}
		p.Properties = renameReferences(p.Properties, entityID, oldKey, newKey, newName)
	}
	return props
}

// scrubReference demotes p (and its nested items and object properties) to a
// plain string wherever it references the deleted entity.
func scrubReference(p diagram.Property, entityID string) diagram.Property {
	if p.ReferenceEntityID == entityID {
		p.Type = diagram.TypeString
		p.ReferenceEntityID = ""
		p.Ref = ""
	}
	if p.Items != nil {
		items := scrubReference(*p.Items, entityID)
		p.Items = &items
	}
	for i := range p.Properties {
		p.Properties[i] = scrubReference(p.Properties[i], entityID)
	}
	return p
}
