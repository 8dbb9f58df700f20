package pipeline

import (
	"context"
	"time"

	"github.com/schemadraw/schemadraw/pkg/layout"
	"github.com/schemadraw/schemadraw/pkg/schema"
)

// Execute runs the full pipeline over the input bytes: parse, layout,
// export. The context is checked between stages so a canceled caller stops
// the run at the next boundary.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	d, err := r.Parse(data)
	if err != nil {
		return nil, err
	}
	stats := Stats{
		EntityCount:       len(d.Entities),
		RelationshipCount: len(d.Relationships),
		ParseTime:         time.Since(start),
	}

	if opts.Title != "" {
		d.Metadata.Title = opts.Title
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !opts.SkipLayout {
		start = time.Now()
		d = layout.Apply(opts.strategy, d)
		stats.LayoutTime = time.Since(start)
		r.logger.Debug("layout complete", "strategy", opts.strategy, "took", stats.LayoutTime)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	out, err := schema.Export(d, opts.format)
	if err != nil {
		return nil, err
	}
	stats.ExportTime = time.Since(start)
	r.logger.Debug("export complete", "format", opts.format, "bytes", len(out))

	return &Result{Diagram: d, Output: out, Stats: stats}, nil
}
