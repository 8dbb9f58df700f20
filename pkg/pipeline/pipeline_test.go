package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

const orderDoc = `{
	"openapi": "3.0.0",
	"info": {"title": "Orders", "version": "1.0.0"},
	"components": {
		"schemas": {
			"User": {"type": "object", "properties": {"id": {"type": "string"}}},
			"Order": {"type": "object", "properties": {"user": {"$ref": "#/components/schemas/User"}}}
		}
	}
}`

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{name: "Defaults", opts: Options{}},
		{name: "Explicit", opts: Options{Strategy: "grid", Format: "openapi"}},
		{name: "BadStrategy", opts: Options{Strategy: "spiral"}, wantErr: errors.ErrCodeInvalidStrategy},
		{name: "BadFormat", opts: Options{Format: "xml"}, wantErr: errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want code %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndSetDefaults: %v", err)
			}
			if tt.opts.Logger == nil {
				t.Error("logger not defaulted")
			}
			// Idempotent.
			if err := tt.opts.ValidateAndSetDefaults(); err != nil {
				t.Errorf("second call: %v", err)
			}
		})
	}
}

func TestExecuteSchemaDocument(t *testing.T) {
	runner := NewRunner(nil)
	result, err := runner.Execute(context.Background(), []byte(orderDoc), Options{Format: "openapi"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.EntityCount != 2 || result.Stats.RelationshipCount != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if len(result.Diagram.Entities) != 2 {
		t.Errorf("entities = %d, want 2", len(result.Diagram.Entities))
	}
	if !strings.Contains(string(result.Output), "components") {
		t.Error("output is not an openapi document")
	}
	if err := diagram.Validate(result.Diagram); err != nil {
		t.Errorf("result diagram invalid: %v", err)
	}
}

func TestExecuteDiagramInput(t *testing.T) {
	d := diagram.Diagram{
		Entities: []diagram.Entity{{ID: "a", Name: "Thing"}},
		Metadata: diagram.Metadata{Title: "Original"},
	}
	data, err := diagram.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil)
	result, err := runner.Execute(context.Background(), data, Options{Title: "Renamed"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Diagram.Metadata.Title != "Renamed" {
		t.Errorf("title = %q, want override", result.Diagram.Metadata.Title)
	}
}

func TestExecuteSkipLayout(t *testing.T) {
	d := diagram.Diagram{Entities: []diagram.Entity{
		{ID: "a", Name: "Thing", Position: diagram.Point{X: 7, Y: 13}},
	}}
	data, err := diagram.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil)
	result, err := runner.Execute(context.Background(), data, Options{SkipLayout: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := result.Diagram.Entities[0].Position; got != (diagram.Point{X: 7, Y: 13}) {
		t.Errorf("position = %+v, want untouched", got)
	}
}

func TestExecuteInvalidInput(t *testing.T) {
	runner := NewRunner(nil)
	_, err := runner.Execute(context.Background(), []byte(`{"hello": "world"}`), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("error = %v, want INVALID_DOCUMENT", err)
	}
}

func TestExecuteCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(nil)
	_, err := runner.Execute(ctx, []byte(orderDoc), Options{})
	if err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestParseRejectsInvalidDiagram(t *testing.T) {
	runner := NewRunner(nil)
	_, err := runner.Parse([]byte(`{"entities": [{"id": "a"}, {"id": "a"}], "relationships": []}`))
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("error = %v, want INVALID_DOCUMENT", err)
	}
}
