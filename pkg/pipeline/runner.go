package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pedigraph/pedigraph/pkg/cache"
	"github.com/pedigraph/pedigraph/pkg/errors"
	"github.com/pedigraph/pedigraph/pkg/kin"
	"github.com/pedigraph/pedigraph/pkg/layout"
	"github.com/pedigraph/pedigraph/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, snap kin.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	snapData, err := kin.MarshalSnapshot(snap.Sorted())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "hash snapshot")
	}
	result.SnapshotHash = cache.Hash(snapData)

	// Stage 1: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, snap, result.SnapshotHash, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.PeopleCount = len(res.Placements)
	result.Stats.EdgeCount = len(snap.Edges)
	result.Stats.DroppedEdges = res.Stats.Dropped()
	result.CacheInfo.LayoutHit = layoutHit

	if layoutData, err := json.Marshal(res); err == nil {
		result.LayoutHash = cache.Hash(layoutData)
	}

	r.Logger.Info("computed layout",
		"people", len(res.Placements),
		"groups", res.FamilyGroups,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, snap, result.LayoutHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes the layout with caching and reports
// whether the result came from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, snap kin.Snapshot, snapshotHash string, opts Options) (layout.Result, bool, error) {
	key := r.Keyer.LayoutKey(snapshotHash, cache.LayoutKeyOpts{
		FocalID:    opts.FocalID,
		CardWidth:  opts.CardWidth,
		CardHeight: opts.CardHeight,
		VSpace:     opts.VSpace,
		SideOffset: opts.SideOffset,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res layout.Result
			if err := json.Unmarshal(data, &res); err == nil {
				return res, true, nil
			}
			// Corrupt entry - recompute and overwrite below.
		}
	}

	res := layout.Build(snap, opts.LayoutOptions()...)

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("layout cache write failed", "err", err)
		}
	}
	return res, false, nil
}

// ComputeLayout computes the layout with caching.
func (r *Runner) ComputeLayout(ctx context.Context, snap kin.Snapshot, opts Options) (layout.Result, error) {
	snapData, err := kin.MarshalSnapshot(snap.Sorted())
	if err != nil {
		return layout.Result{}, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "hash snapshot")
	}
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, snap, cache.Hash(snapData), opts)
	return res, err
}

// RenderWithCacheInfo renders all requested formats with per-format caching.
// The hit flag is true only when every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, snap kin.Snapshot, layoutHash string, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{
			Format: format,
			View:   opts.View,
		})

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		allHit = false

		data, err := renderFormat(res, snap, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("artifact cache write failed", "format", format, "err", err)
		}
	}
	return artifacts, allHit, nil
}

// Render renders all requested formats with caching.
func (r *Runner) Render(ctx context.Context, res layout.Result, snap kin.Snapshot, opts Options) (map[string][]byte, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash layout")
	}
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, snap, cache.Hash(data), opts)
	return artifacts, err
}

// renderFormat produces one artifact for the selected view and format.
func renderFormat(res layout.Result, snap kin.Snapshot, format string, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(res, "", "  ")
	}

	switch opts.View {
	case ViewNodelink:
		return renderNodelink(snap, format, opts)
	default:
		return renderChart(res, snap, format, opts)
	}
}

func renderChart(res layout.Result, snap kin.Snapshot, format string, opts Options) ([]byte, error) {
	if format == FormatDOT {
		return nil, errors.New(errors.ErrCodeUnsupported, "dot output requires the nodelink view")
	}

	var chartOpts []render.ChartOption
	if opts.FocalID != "" {
		chartOpts = append(chartOpts, render.WithFocalHighlight(opts.FocalID))
	}
	if opts.Detailed {
		chartOpts = append(chartOpts, render.WithDetails())
	}
	svg := render.ChartSVG(res, snap, chartOpts...)

	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(svg, opts.PNGScale)
	case FormatPDF:
		return render.ToPDF(svg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

func renderNodelink(snap kin.Snapshot, format string, opts Options) ([]byte, error) {
	dot := render.ToDOT(snap)
	if format == FormatDOT {
		return []byte(dot), nil
	}

	svg, err := render.DOTSVG(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render nodelink")
	}

	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(svg, opts.PNGScale)
	case FormatPDF:
		return render.ToPDF(svg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// applyLogger threads the runner's logger into options that don't carry one.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
