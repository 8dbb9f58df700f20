// Package pipeline provides the import → layout → export pipeline shared by
// the CLI and the HTTP server.
//
// Centralizing the three stages keeps behavior consistent across entry
// points: bytes come in (either diagram JSON or a schema document in JSON or
// YAML), the schema graph is built, positions are computed, and the diagram
// is serialized into the requested export format.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Strategy: "hierarchy",
//	    Format:   "openapi",
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Output)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/layout"
	"github.com/schemadraw/schemadraw/pkg/schema"
)

// Options configures a pipeline run. The struct supports JSON serialization
// for API requests.
type Options struct {
	// Strategy selects the layout algorithm (grid, force, hierarchy).
	// Defaults to the hierarchical strategy.
	Strategy string `json:"strategy,omitempty"`

	// Format selects the export representation (internal, openapi, nosql,
	// json-schema). Defaults to internal.
	Format string `json:"format,omitempty"`

	// Title overrides the diagram title when non-empty.
	Title string `json:"title,omitempty"`

	// SkipLayout leaves positions untouched after import. Schema documents
	// are still laid out once by the importer itself.
	SkipLayout bool `json:"skip_layout,omitempty"`

	// Runtime options (not serialized).
	Logger *log.Logger `json:"-"`

	// Parsed values, populated by ValidateAndSetDefaults.
	strategy layout.Strategy
	format   schema.Format

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the option fields and applies defaults.
// The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	strategy, err := layout.ParseStrategy(o.Strategy)
	if err != nil {
		return err
	}
	format, err := schema.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.strategy = strategy
	o.format = format
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.validated = true
	return nil
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount       int
	RelationshipCount int
	ParseTime         time.Duration
	LayoutTime        time.Duration
	ExportTime        time.Duration
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the laid-out schema graph.
	Diagram diagram.Diagram

	// Output is the exported document in the requested format.
	Output []byte

	// Stats contains timing and size information.
	Stats Stats
}

// Runner executes the pipeline.
type Runner struct {
	logger *log.Logger
}

// NewRunner creates a pipeline runner. A nil logger falls back to the
// default logger.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{logger: logger}
}

// Parse turns external bytes into a diagram. The input shape is sniffed:
// diagram JSON is decoded and validated, schema documents (JSON or YAML) go
// through the three-pass importer, and anything else is an INVALID_DOCUMENT
// error.
func (r *Runner) Parse(data []byte) (diagram.Diagram, error) {
	switch schema.Sniff(data) {
	case schema.KindDiagram:
		d, err := diagram.Unmarshal(data)
		if err != nil {
			return diagram.Diagram{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse diagram")
		}
		r.logger.Debug("parsed diagram input",
			"entities", len(d.Entities), "relationships", len(d.Relationships))
		return d, nil

	case schema.KindDocument:
		doc, err := schema.ParseDocument(data)
		if err != nil {
			return diagram.Diagram{}, err
		}
		d := schema.Import(doc)
		r.logger.Debug("imported schema document",
			"definitions", len(doc.Definitions), "relationships", len(d.Relationships))
		return d, nil

	default:
		return diagram.Diagram{}, errors.New(errors.ErrCodeInvalidDocument,
			"input is neither a diagram nor a schema document")
	}
}
