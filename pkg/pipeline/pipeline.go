// Package pipeline provides the core visualization pipeline for pedigraph.
//
// This package implements the complete layout → render pipeline shared by
// the CLI and the HTTP API. Centralizing it keeps caching and option
// handling identical across all entry points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: Compute chart geometry for a family snapshot
//  2. Render: Generate output in various formats (SVG, PNG, PDF, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    FocalID: "p42",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, snap, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/pedigraph/pedigraph/pkg/errors"
	"github.com/pedigraph/pedigraph/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultView is the default visualization view.
	DefaultView = ViewChart

	// DefaultPNGScale is the default PNG scale factor (2x for high-DPI).
	DefaultPNGScale = 2.0
)

// View constants for visualization views.
const (
	ViewChart    = "chart"
	ViewNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidViews is the set of supported visualization views.
var ValidViews = map[string]bool{
	ViewChart:    true,
	ViewNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	FocalID    string  `json:"focal_id,omitempty"`
	CardWidth  float64 `json:"card_width,omitempty"`
	CardHeight float64 `json:"card_height,omitempty"`
	VSpace     float64 `json:"v_space,omitempty"`
	SideOffset float64 `json:"side_offset,omitempty"`

	// Render options
	View     string   `json:"view,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout contains the computed chart geometry.
	Layout layout.Result

	// SnapshotHash is the content hash of the input snapshot.
	SnapshotHash string

	// LayoutHash is the content hash of the computed layout.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PeopleCount  int
	EdgeCount    int
	DroppedEdges int
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateView checks that a visualization view is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid view: %q (must be one of: chart, nodelink)", view)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.View == "" {
		o.View = DefaultView
	}
	if err := ValidateView(o.View); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.CardWidth < 0 || o.CardHeight < 0 || o.VSpace < 0 || o.SideOffset < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout dimensions must be non-negative")
	}

	o.validated = true
	return nil
}

// LayoutOptions converts the pipeline options to engine options.
// Zero-valued fields fall through to the engine defaults.
func (o Options) LayoutOptions() []layout.Option {
	var opts []layout.Option
	if o.FocalID != "" {
		opts = append(opts, layout.WithFocal(o.FocalID))
	}
	if o.CardWidth > 0 || o.CardHeight > 0 {
		w, h := o.CardWidth, o.CardHeight
		if w <= 0 {
			w = layout.DefaultCardWidth
		}
		if h <= 0 {
			h = layout.DefaultCardHeight
		}
		opts = append(opts, layout.WithCardSize(w, h))
	}
	if o.VSpace > 0 {
		opts = append(opts, layout.WithVerticalSpacing(o.VSpace, layout.DefaultBaseY))
	}
	if o.SideOffset > 0 {
		opts = append(opts, layout.WithSideOffset(o.SideOffset))
	}
	if o.Logger != nil {
		opts = append(opts, layout.WithLogger(o.Logger))
	}
	return opts
}
