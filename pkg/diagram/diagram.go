// Package diagram defines the schema graph model: entities with typed
// properties, directed relationships between entities, and the Diagram
// aggregate that ties them together.
//
// # Model
//
//   - [Entity]: a schema node (one type/collection in the modeled database)
//   - [Property]: one named field of an entity or nested object property
//   - [Relationship]: a directed edge between two entities
//   - [Diagram]: the aggregate root with free-form metadata
//
// Entities and relationships reference each other only by opaque id strings,
// never by direct ownership links, so the model is cycle-free even when the
// relationship graph is not. Lookups go through [Diagram.EntityByID] and
// [Diagram.EntityByName].
//
// # Copy-on-Write
//
// Every operation on the model returns freshly constructed values; nothing in
// this package (or in the packages built on it) mutates its inputs. Use
// [Diagram.Clone] to obtain an independent deep copy before editing slices or
// property maps in place.
//
// # Serialization
//
// Diagrams round-trip through a single JSON document (see [Marshal] and
// [Unmarshal]). All fields other than id/source/target/name/type are optional
// and default to their zero values on absence.
package diagram

import (
	"strings"

	"github.com/google/uuid"
)

// RelationType classifies a relationship edge.
type RelationType string

// Relationship types.
const (
	RelationReference   RelationType = "reference"
	RelationComposition RelationType = "composition"
	RelationAggregation RelationType = "aggregation"
	RelationInheritance RelationType = "inheritance"
)

// Point is a 2D canvas position.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Entity is a schema node. The ID is stable identity assigned at creation and
// never reused; Name is a human label and not guaranteed unique.
//
// Type, Description and Color are display/classification metadata with no
// graph semantics. Position is authoritative everywhere except inside the
// layout engine, which treats it as output (and, for force-directed
// relaxation, as an initial placement hint).
type Entity struct {
	ID          string      `json:"id" bson:"id"`
	Name        string      `json:"name" bson:"name"`
	Type        string      `json:"type,omitempty" bson:"type,omitempty"`
	Description string      `json:"description,omitempty" bson:"description,omitempty"`
	Color       string      `json:"color,omitempty" bson:"color,omitempty"`
	Properties  PropertyMap `json:"properties,omitempty" bson:"properties,omitempty"`
	Required    []string    `json:"required,omitempty" bson:"required,omitempty"`
	Position    Point       `json:"position" bson:"position"`
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	out := e
	out.Properties = e.Properties.Clone()
	if e.Required != nil {
		out.Required = make([]string, len(e.Required))
		copy(out.Required, e.Required)
	}
	return out
}

// Relationship is a directed edge between two entities, identified by their
// ids. Every reference-typed relationship corresponds to a reference property
// in its source or target entity; the refs package is the sole writer that
// keeps that correspondence consistent.
type Relationship struct {
	ID     string       `json:"id" bson:"id"`
	Source string       `json:"source" bson:"source"`
	Target string       `json:"target" bson:"target"`
	Type   RelationType `json:"type" bson:"type"`
	Label  string       `json:"label,omitempty" bson:"label,omitempty"`
}

// Metadata holds free-form document information.
type Metadata struct {
	Title       string `json:"title,omitempty" bson:"title,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Version     string `json:"version,omitempty" bson:"version,omitempty"`
}

// Diagram is the aggregate root: an ordered sequence of entities, an ordered
// sequence of relationships, and document metadata.
type Diagram struct {
	Entities      []Entity       `json:"entities" bson:"entities"`
	Relationships []Relationship `json:"relationships" bson:"relationships"`
	Metadata      Metadata       `json:"metadata" bson:"metadata"`
}

// Clone returns a deep copy of the diagram.
func (d Diagram) Clone() Diagram {
	out := d
	if d.Entities != nil {
		out.Entities = make([]Entity, len(d.Entities))
		for i, e := range d.Entities {
			out.Entities[i] = e.Clone()
		}
	}
	if d.Relationships != nil {
		out.Relationships = make([]Relationship, len(d.Relationships))
		copy(out.Relationships, d.Relationships)
	}
	return out
}

// EntityByID returns the entity with the given id.
func (d Diagram) EntityByID(id string) (Entity, bool) {
	for _, e := range d.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// EntityByName returns the first entity whose name matches name
// case-insensitively.
func (d Diagram) EntityByName(name string) (Entity, bool) {
	for _, e := range d.Entities {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Entity{}, false
}

// HasRelationship reports whether a relationship of the given type exists
// between source and target.
func (d Diagram) HasRelationship(source, target string, typ RelationType) bool {
	for _, r := range d.Relationships {
		if r.Source == source && r.Target == target && r.Type == typ {
			return true
		}
	}
	return false
}

// NewID returns a fresh unique identifier for entities and relationships.
func NewID() string {
	return uuid.NewString()
}
