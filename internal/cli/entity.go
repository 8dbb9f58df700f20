package cli

import (
	"github.com/spf13/cobra"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/refs"
)

// newEntityCmd creates the entity command group for reference-manager edits
// against a diagram file. Entities are addressed by name (case-insensitive)
// or by id.
func newEntityCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Edit diagram entities through the reference manager",
		Long: `Edit diagram entities through the reference manager.

Every subcommand loads the diagram file, applies one consistency-preserving
operation, and writes the result back. Reference-typed properties and
relationships are kept in sync automatically: connecting entities creates
the reference property, deleting an entity demotes everything that pointed
at it, renaming rewrites derived property keys and descriptions.`,
	}

	cmd.PersistentFlags().StringVarP(&file, "file", "f", "diagram.json", "diagram file to edit")

	cmd.AddCommand(newEntityConnectCmd(&file))
	cmd.AddCommand(newEntityDeleteCmd(&file))
	cmd.AddCommand(newEntityRenameCmd(&file))
	cmd.AddCommand(newEntityRetypeCmd(&file))

	return cmd
}

func newEntityConnectCmd(file *string) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Draw a reference edge between two entities",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editDiagram(*file, func(d diagram.Diagram) (diagram.Diagram, error) {
				source, err := resolveEntity(d, args[0])
				if err != nil {
					return d, err
				}
				target, err := resolveEntity(d, args[1])
				if err != nil {
					return d, err
				}
				return refs.Connect(d, source.ID, target.ID), nil
			})
		},
	}
}

func newEntityDeleteCmd(file *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity>",
		Short: "Delete an entity and clean up everything referencing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editDiagram(*file, func(d diagram.Diagram) (diagram.Diagram, error) {
				e, err := resolveEntity(d, args[0])
				if err != nil {
					return d, err
				}
				return refs.DeleteEntity(d, e.ID), nil
			})
		},
	}
}

func newEntityRenameCmd(file *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <entity> <new-name>",
		Short: "Rename an entity and rewrite derived property keys",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editDiagram(*file, func(d diagram.Diagram) (diagram.Diagram, error) {
				e, err := resolveEntity(d, args[0])
				if err != nil {
					return d, err
				}
				return refs.RenameEntity(d, e.ID, e.Name, args[1]), nil
			})
		},
	}
}

func newEntityRetypeCmd(file *string) *cobra.Command {
	return &cobra.Command{
		Use:   "retype <entity> <property> <type>",
		Short: "Change a property's type, keeping references consistent",
		Long: `Change a property's type, keeping references consistent.

Retyping to "reference" points the property at an entity matching the
title-cased property name, synthesizing one when no match exists. Retyping a
reference to anything else removes the matching relationship before applying
the new type. Plain transitions between non-reference types apply directly.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := diagram.Type(args[2])
			if !diagram.ValidTypes[typ] {
				return errors.New(errors.ErrCodeInvalidInput, "unknown property type: %q", args[2])
			}
			return editDiagram(*file, func(d diagram.Diagram) (diagram.Diagram, error) {
				e, err := resolveEntity(d, args[0])
				if err != nil {
					return d, err
				}
				if !e.Properties.Has(args[1]) {
					return d, errors.New(errors.ErrCodePropertyNotFound,
						"property %q not found on %s", args[1], e.Name)
				}
				return refs.Retype(d, e.ID, args[1], typ), nil
			})
		},
	}
}

// editDiagram loads the diagram file, applies fn and writes the result back.
func editDiagram(path string, fn func(diagram.Diagram) (diagram.Diagram, error)) error {
	d, err := readDiagramFile(path)
	if err != nil {
		return err
	}
	next, err := fn(d)
	if err != nil {
		return err
	}
	if err := writeDiagramFile(next, path); err != nil {
		return err
	}
	printSummary(next)
	return nil
}

// resolveEntity finds an entity by id first, then by case-insensitive name.
func resolveEntity(d diagram.Diagram, ref string) (diagram.Entity, error) {
	if e, ok := d.EntityByID(ref); ok {
		return e, nil
	}
	if e, ok := d.EntityByName(ref); ok {
		return e, nil
	}
	return diagram.Entity{}, errors.New(errors.ErrCodeEntityNotFound, "entity %q not found", ref)
}
