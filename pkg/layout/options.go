package layout

import (
	"io"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Default Spacing - Single Source of Truth for CLI, API, and Renderers
// =============================================================================

const (
	// DefaultCardWidth is the horizontal footprint of one person card.
	DefaultCardWidth = 120.0

	// DefaultCardHeight is the vertical footprint of one person card.
	DefaultCardHeight = 56.0

	// DefaultBaseGap is the horizontal gap between adjacent blood relatives
	// before descendant-based widening.
	DefaultBaseGap = 40.0

	// DefaultChildGap widens the gap between two blood relatives by this
	// amount per immediate child on either side, so descendant fans don't
	// collide.
	DefaultChildGap = 20.0

	// DefaultLargeFamilyBonus is the flat extra gap applied when either
	// side of a pair has three or more children.
	DefaultLargeFamilyBonus = 60.0

	// DefaultPartnerGap separates an attached partner card from its anchor.
	DefaultPartnerGap = 24.0

	// DefaultGroupGap separates adjacent child groups under one parent.
	DefaultGroupGap = 48.0

	// DefaultVSpace is the vertical distance between generations.
	DefaultVSpace = 160.0

	// DefaultBaseY is the y offset of generation zero.
	DefaultBaseY = 80.0

	// DefaultSideOffset is the horizontal push applied to the focal
	// person's maternal and paternal lineages.
	DefaultSideOffset = 420.0

	// DefaultSharedPull is the fraction of the side-separation movement
	// applied to descendants shared by both of the focal person's parents.
	DefaultSharedPull = 0.3

	// DefaultLaneGap separates disconnected family groups from the main
	// layout and from each other.
	DefaultLaneGap = 200.0
)

// Options configures one layout invocation. The zero value is not usable;
// construct with DefaultOptions or let Build apply defaults from the
// functional options it receives.
type Options struct {
	// FocalID designates the focal person driving side separation and
	// step-family lane placement. Empty disables both post-processors'
	// focal-specific behavior.
	FocalID string

	// Card geometry.
	CardWidth  float64
	CardHeight float64

	// Horizontal spacing heuristics.
	BaseGap          float64
	ChildGap         float64
	LargeFamilyBonus float64
	PartnerGap       float64
	GroupGap         float64

	// Vertical placement.
	VSpace float64
	BaseY  float64

	// Post-processing.
	SideOffset float64
	SharedPull float64
	LaneGap    float64

	// Logger receives debug-level progress; defaults to a discard logger
	// so library use stays silent.
	Logger *log.Logger
}

// DefaultOptions returns the spacing defaults used by the CLI and API.
func DefaultOptions() Options {
	return Options{
		CardWidth:        DefaultCardWidth,
		CardHeight:       DefaultCardHeight,
		BaseGap:          DefaultBaseGap,
		ChildGap:         DefaultChildGap,
		LargeFamilyBonus: DefaultLargeFamilyBonus,
		PartnerGap:       DefaultPartnerGap,
		GroupGap:         DefaultGroupGap,
		VSpace:           DefaultVSpace,
		BaseY:            DefaultBaseY,
		SideOffset:       DefaultSideOffset,
		SharedPull:       DefaultSharedPull,
		LaneGap:          DefaultLaneGap,
		Logger:           log.NewWithOptions(io.Discard, log.Options{}),
	}
}

// Option mutates Options during Build.
type Option func(*Options)

// WithFocal designates the focal person for side separation and step-family
// placement.
func WithFocal(personID string) Option {
	return func(o *Options) { o.FocalID = personID }
}

// WithCardSize overrides the card footprint.
func WithCardSize(width, height float64) Option {
	return func(o *Options) {
		if width > 0 {
			o.CardWidth = width
		}
		if height > 0 {
			o.CardHeight = height
		}
	}
}

// WithVerticalSpacing overrides the per-generation vertical distance and the
// y offset of generation zero.
func WithVerticalSpacing(vspace, baseY float64) Option {
	return func(o *Options) {
		if vspace > 0 {
			o.VSpace = vspace
		}
		o.BaseY = baseY
	}
}

// WithSideOffset overrides the horizontal push for the maternal/paternal
// lineage split.
func WithSideOffset(offset float64) Option {
	return func(o *Options) {
		if offset > 0 {
			o.SideOffset = offset
		}
	}
}

// WithLogger attaches a logger for debug-level progress reporting.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
