package schema

import (
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/errors"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"DiagramEntities", `{"entities": [], "relationships": []}`, KindDiagram},
		{"DiagramRelationshipsOnly", `{"relationships": []}`, KindDiagram},
		{"OpenAPIMarker", `{"openapi": "3.0.0", "components": {"schemas": {}}}`, KindDocument},
		{"ComponentsSchemas", `{"components": {"schemas": {"User": {"type": "object"}}}}`, KindDocument},
		{"FlatDefinitions", `{"definitions": {"User": {"type": "object"}}}`, KindDocument},
		{"YAMLDocument", "openapi: 3.0.0\ncomponents:\n  schemas: {}\n", KindDocument},
		{"UnrelatedObject", `{"hello": "world"}`, KindUnknown},
		{"Garbage", `{{{{`, KindUnknown},
		{"ScalarRoot", `42`, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff([]byte(tt.input)); got != tt.want {
				t.Errorf("Sniff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDocumentJSON(t *testing.T) {
	input := `{
		"openapi": "3.0.0",
		"info": {"title": "Shop API", "description": "A shop", "version": "2.1.0"},
		"components": {
			"schemas": {
				"User": {
					"type": "object",
					"description": "A registered user",
					"properties": {
						"id": {"type": "string"},
						"age": {"type": "integer"}
					},
					"required": ["id"]
				},
				"Order": {
					"type": "object",
					"properties": {
						"user": {"$ref": "#/components/schemas/User"},
						"items": {"type": "array", "items": {"$ref": "#/components/schemas/User"}}
					}
				}
			}
		}
	}`

	doc, err := ParseDocument([]byte(input))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	if doc.Title != "Shop API" || doc.Version != "2.1.0" {
		t.Errorf("info = %q/%q, want Shop API/2.1.0", doc.Title, doc.Version)
	}
	if len(doc.Definitions) != 2 {
		t.Fatalf("definitions = %d, want 2", len(doc.Definitions))
	}
	// Document order, not lexical order.
	if doc.Definitions[0].Name != "User" || doc.Definitions[1].Name != "Order" {
		t.Errorf("definition order = %s, %s", doc.Definitions[0].Name, doc.Definitions[1].Name)
	}

	user := doc.Definitions[0]
	if user.Description != "A registered user" {
		t.Errorf("description = %q", user.Description)
	}
	if len(user.Required) != 1 || user.Required[0] != "id" {
		t.Errorf("required = %v", user.Required)
	}

	order := doc.Definitions[1]
	if order.Properties[0].Ref != "User" {
		t.Errorf("$ref name = %q, want User", order.Properties[0].Ref)
	}
	if order.Properties[1].Items == nil || order.Properties[1].Items.Ref != "User" {
		t.Errorf("array items ref = %+v", order.Properties[1].Items)
	}
}

func TestParseDocumentYAML(t *testing.T) {
	input := `
info:
  title: Blog
definitions:
  Post:
    type: object
    properties:
      title:
        type: string
      author:
        $ref: "#/definitions/Author"
  Author:
    type: object
`
	doc, err := ParseDocument([]byte(input))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Title != "Blog" {
		t.Errorf("title = %q, want Blog", doc.Title)
	}
	if len(doc.Definitions) != 2 || doc.Definitions[0].Name != "Post" {
		t.Fatalf("definitions = %+v", doc.Definitions)
	}
	if doc.Definitions[0].Properties[1].Ref != "Author" {
		t.Errorf("ref = %q, want Author", doc.Definitions[0].Properties[1].Ref)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{
			name:     "NoSchemas",
			input:    `{"info": {"title": "x"}}`,
			wantPath: "components.schemas or definitions",
		},
		{
			name:     "SchemasNotMapping",
			input:    `{"components": {"schemas": []}}`,
			wantPath: "components.schemas",
		},
		{
			name:     "DefinitionNotMapping",
			input:    `{"definitions": {"User": "nope"}}`,
			wantPath: "definitions.User",
		},
		{
			name:     "PropertyNotMapping",
			input:    `{"definitions": {"User": {"properties": {"id": 5}}}}`,
			wantPath: "definitions.User.properties.id",
		},
		{
			name:     "RequiredNotSequence",
			input:    `{"definitions": {"User": {"required": "id"}}}`,
			wantPath: "definitions.User.required",
		},
		{
			name:     "InfoNotMapping",
			input:    `{"info": "x", "definitions": {}}`,
			wantPath: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidDocument) {
				t.Errorf("code = %v, want INVALID_DOCUMENT", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("error %q does not name path %q", err, tt.wantPath)
			}
		})
	}
}

func TestRefName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#/components/schemas/User", "User"},
		{"#/definitions/Order", "Order"},
		{"User", "User"},
	}
	for _, tt := range tests {
		if got := refName(tt.in); got != tt.want {
			t.Errorf("refName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
