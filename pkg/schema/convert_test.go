package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

const shopDoc = `{
	"openapi": "3.0.0",
	"info": {"title": "Shop API", "version": "1.2.0"},
	"components": {
		"schemas": {
			"User": {
				"type": "object",
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
					"lines": {"type": "array", "items": {"$ref": "#/components/schemas/User"}},
					"coupon": {"$ref": "#/components/schemas/Coupon"}
				}
			}
		}
	}
}`

func parseShop(t *testing.T) diagram.Diagram {
	t.Helper()
	doc, err := ParseDocument([]byte(shopDoc))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	return Import(doc)
}

func TestImport(t *testing.T) {
	d := parseShop(t)

	if len(d.Entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(d.Entities))
	}
	if d.Metadata.Title != "Shop API" || d.Metadata.Version != "1.2.0" {
		t.Errorf("metadata = %+v", d.Metadata)
	}

	user := d.Entities[0]
	if user.Name != "User" || user.Type != "object" {
		t.Errorf("first entity = %s/%s", user.Name, user.Type)
	}
	if user.Color != diagram.PaletteColor(0) {
		t.Errorf("color = %q, want palette[0]", user.Color)
	}
	if p, _ := user.Properties.Get("id"); !p.Required {
		t.Error("required list not reflected on property")
	}
	if p, _ := user.Properties.Get("age"); p.Type != diagram.TypeNumber {
		t.Errorf("integer mapped to %v, want number", p.Type)
	}

	order := d.Entities[1]
	if order.Color != diagram.PaletteColor(1) {
		t.Errorf("color = %q, want palette[1]", order.Color)
	}

	// Resolved top-level $ref.
	p, _ := order.Properties.Get("user")
	if p.Type != diagram.TypeReference || p.ReferenceEntityID != user.ID || p.Ref != "" {
		t.Errorf("user property = %+v, want resolved reference to %s", p, user.ID)
	}

	// Resolved array-items $ref.
	lines, _ := order.Properties.Get("lines")
	if lines.Items == nil || lines.Items.ReferenceEntityID != user.ID {
		t.Errorf("lines items = %+v, want resolved reference", lines.Items)
	}

	// Unresolvable $ref stays dangling, keeping its local name.
	coupon, _ := order.Properties.Get("coupon")
	if coupon.Type != diagram.TypeReference || coupon.ReferenceEntityID != "" || coupon.Ref != "Coupon" {
		t.Errorf("coupon property = %+v, want dangling reference", coupon)
	}

	// One relationship per resolved reference: user + lines, not coupon.
	if len(d.Relationships) != 2 {
		t.Fatalf("relationships = %d, want 2", len(d.Relationships))
	}
	for _, r := range d.Relationships {
		if r.Source != order.ID || r.Target != user.ID || r.Type != diagram.RelationReference {
			t.Errorf("relationship = %+v", r)
		}
	}

	// Layout ran: entities have distinct positions.
	if user.Position == order.Position {
		t.Error("import did not lay out entities")
	}

	if err := diagram.Validate(d); err != nil {
		t.Errorf("imported diagram invalid: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", DefaultFormat, false},
		{"internal", FormatInternal, false},
		{"openapi", FormatOpenAPI, false},
		{"nosql", FormatNoSQL, false},
		{"json-schema", FormatJSONSchema, false},
		{"xml", "", true},
		{"OpenAPI", "", true}, // case-sensitive
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ParseFormat(%q) code = %v, want INVALID_FORMAT", tt.in, errors.GetCode(err))
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExportOpenAPI(t *testing.T) {
	d := parseShop(t)
	out, err := Export(d, FormatOpenAPI)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if doc.OpenAPI != "3.0.0" {
		t.Errorf("openapi = %q", doc.OpenAPI)
	}
	if doc.Info.Title != "Shop API" || doc.Info.Version != "1.2.0" {
		t.Errorf("info = %+v", doc.Info)
	}
	if len(doc.Components.Schemas) != 2 {
		t.Fatalf("schemas = %d, want 2", len(doc.Components.Schemas))
	}

	s := string(out)
	if !strings.Contains(s, `"$ref": "#/components/schemas/User"`) {
		t.Error("resolved reference not exported as $ref")
	}
	// The dangling Coupon reference degrades to an annotated string.
	if !strings.Contains(s, "Unresolved reference") {
		t.Error("dangling reference not annotated")
	}
	if strings.Contains(s, "Coupon") {
		t.Error("dangling target name leaked into the export")
	}
}

func TestExportJSONSchema(t *testing.T) {
	d := parseShop(t)
	out, err := Export(d, FormatJSONSchema)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var doc struct {
		Schema      string                     `json:"$schema"`
		Title       string                     `json:"title"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if !strings.Contains(doc.Schema, "draft-07") {
		t.Errorf("$schema = %q", doc.Schema)
	}
	if len(doc.Definitions) != 2 {
		t.Errorf("definitions = %d, want 2", len(doc.Definitions))
	}
	if !strings.Contains(string(out), `"$ref": "#/definitions/User"`) {
		t.Error("reference not exported as definitions $ref")
	}
}

func TestExportNoSQL(t *testing.T) {
	d := parseShop(t)
	out, err := Export(d, FormatNoSQL)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var doc struct {
		Database struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"database"`
		Collections []struct {
			Name   string                     `json:"name"`
			Fields map[string]json.RawMessage `json:"fields"`
		} `json:"collections"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if doc.Database.Name != "Shop API" {
		t.Errorf("database name = %q", doc.Database.Name)
	}
	if len(doc.Collections) != 2 {
		t.Fatalf("collections = %d, want 2", len(doc.Collections))
	}

	var userField struct {
		Type      string `json:"type"`
		Reference string `json:"reference"`
	}
	if err := json.Unmarshal(doc.Collections[1].Fields["user"], &userField); err != nil {
		t.Fatalf("unmarshal user field: %v", err)
	}
	if userField.Type != "reference" || userField.Reference != "User" {
		t.Errorf("user field = %+v, want explicit reference descriptor", userField)
	}
}

func TestExportInternalEqualsMarshal(t *testing.T) {
	d := parseShop(t)
	out, err := Export(d, FormatInternal)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want, err := diagram.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != string(want) {
		t.Error("internal export differs from diagram marshal")
	}
}

func TestExportDefaultsMetadata(t *testing.T) {
	d := diagram.Diagram{Entities: []diagram.Entity{{ID: "a", Name: "Thing"}}}
	out, err := Export(d, FormatOpenAPI)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "Untitled Diagram") {
		t.Error("missing title not defaulted")
	}
	if !strings.Contains(s, "1.0.0") {
		t.Error("missing version not defaulted")
	}
}

// The exporter and importer must be inverses over the OpenAPI format: a
// diagram exported to OpenAPI and imported back yields the same schema shape
// (ids and positions are regenerated, names and references survive).
func TestOpenAPIRoundTrip(t *testing.T) {
	first := parseShop(t)
	out, err := Export(first, FormatOpenAPI)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	doc, err := ParseDocument(out)
	if err != nil {
		t.Fatalf("re-parse exported document: %v", err)
	}
	second := Import(doc)

	if len(second.Entities) != len(first.Entities) {
		t.Fatalf("entities = %d, want %d", len(second.Entities), len(first.Entities))
	}
	for i := range first.Entities {
		fe, se := first.Entities[i], second.Entities[i]
		if fe.Name != se.Name {
			t.Errorf("entity %d name = %q, want %q", i, se.Name, fe.Name)
		}
		if got, want := se.Properties.Keys(), fe.Properties.Keys(); len(got) != len(want) {
			t.Errorf("entity %s keys = %v, want %v", fe.Name, got, want)
		}
	}

	// The resolved reference graph survives the round trip; the dangling
	// Coupon reference was exported as a string, so one reference is gone.
	if len(second.Relationships) != len(first.Relationships) {
		t.Errorf("relationships = %d, want %d", len(second.Relationships), len(first.Relationships))
	}
	user, _ := second.EntityByName("User")
	order, _ := second.EntityByName("Order")
	p, _ := order.Properties.Get("user")
	if p.ReferenceEntityID != user.ID {
		t.Errorf("re-imported reference points at %q, want %q", p.ReferenceEntityID, user.ID)
	}
}
