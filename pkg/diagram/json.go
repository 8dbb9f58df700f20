package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidEntityID is returned by [Validate] when an entity has an
	// empty id. All entities must have non-empty identifiers.
	ErrInvalidEntityID = errors.New("entity ID must not be empty")

	// ErrDuplicateEntityID is returned by [Validate] when two entities share
	// an id. Entity ids must be unique across the diagram.
	ErrDuplicateEntityID = errors.New("duplicate entity ID")

	// ErrUnknownEndpoint is returned by [Validate] when a relationship names
	// a source or target entity that does not exist.
	ErrUnknownEndpoint = errors.New("relationship endpoint does not exist")

	// ErrStrayReferenceID is returned by [Validate] when a property carries a
	// referenceEntityId but is not reference-typed. The reverse (a reference
	// property with an empty id) is a tolerated dangling reference, not an
	// error.
	ErrStrayReferenceID = errors.New("referenceEntityId set on non-reference property")
)

// Marshal serializes a diagram to pretty-printed JSON bytes. Property maps
// are emitted in insertion order, so output is deterministic.
func Marshal(d Diagram) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Diagram and validates its
// structure. Malformed JSON and structural violations are both reported as
// errors; the caller receives either a valid diagram or nothing.
func Unmarshal(data []byte) (Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return Diagram{}, fmt.Errorf("decode diagram: %w", err)
	}
	if err := Validate(d); err != nil {
		return Diagram{}, err
	}
	return d, nil
}

// Validate checks the structural invariants of a diagram:
//
//   - every entity has a unique, non-empty id
//   - every relationship endpoint names an existing entity
//   - referenceEntityId appears only on reference-typed properties
//     (including array items), and when set it names an existing entity
//
// A reference property with an empty referenceEntityId is legal: it is a
// dangling reference produced by an unresolved $ref during import.
func Validate(d Diagram) error {
	seen := make(map[string]bool, len(d.Entities))
	for _, e := range d.Entities {
		if e.ID == "" {
			return fmt.Errorf("entity %q: %w", e.Name, ErrInvalidEntityID)
		}
		if seen[e.ID] {
			return fmt.Errorf("entity %s: %w", e.ID, ErrDuplicateEntityID)
		}
		seen[e.ID] = true
	}

	for _, r := range d.Relationships {
		if !seen[r.Source] {
			return fmt.Errorf("relationship %s: source %s: %w", r.ID, r.Source, ErrUnknownEndpoint)
		}
		if !seen[r.Target] {
			return fmt.Errorf("relationship %s: target %s: %w", r.ID, r.Target, ErrUnknownEndpoint)
		}
	}

	for _, e := range d.Entities {
		for _, p := range e.Properties {
			if err := validateProperty(e, p, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateProperty(owner Entity, p Property, entities map[string]bool) error {
	if p.ReferenceEntityID != "" {
		if p.Type != TypeReference {
			return fmt.Errorf("entity %s property %s: %w", owner.ID, p.Name, ErrStrayReferenceID)
		}
		if !entities[p.ReferenceEntityID] {
			return fmt.Errorf("entity %s property %s: target %s: %w",
				owner.ID, p.Name, p.ReferenceEntityID, ErrUnknownEndpoint)
		}
	}
	if p.Items != nil {
		if err := validateProperty(owner, *p.Items, entities); err != nil {
			return err
		}
	}
	for _, nested := range p.Properties {
		if err := validateProperty(owner, nested, entities); err != nil {
			return err
		}
	}
	return nil
}
