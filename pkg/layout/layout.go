package layout

import (
	"math"
	"slices"
	"strings"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// =============================================================================
// Result - Geometry Handed to Renderers
// =============================================================================

// Placement is the layout output for one person: the generation level, the
// card center coordinates, and the couple-pairing metadata a renderer needs
// to draw cards and connector lines. Adjacency is carried as ID lists so the
// renderer never touches engine internals.
type Placement struct {
	ID         string  `json:"id" bson:"id"`
	Generation int     `json:"generation" bson:"generation"`
	X          float64 `json:"x" bson:"x"`
	Y          float64 `json:"y" bson:"y"`

	AttachedPartner bool   `json:"attached_partner,omitempty" bson:"attached_partner,omitempty"`
	AnchorID        string `json:"anchor_id,omitempty" bson:"anchor_id,omitempty"`

	Parents  []string `json:"parents,omitempty" bson:"parents,omitempty"`
	Children []string `json:"children,omitempty" bson:"children,omitempty"`
	Spouses  []string `json:"spouses,omitempty" bson:"spouses,omitempty"`
	Siblings []string `json:"siblings,omitempty" bson:"siblings,omitempty"`
}

// Result is one complete layout run: per-person placements sorted by person
// ID plus the card geometry they were computed for and the data-quality
// counters from adjacency derivation. The sort order is part of the format;
// it survives serialization, so cached results keep fast lookups.
type Result struct {
	Placements []Placement `json:"placements" bson:"placements"`

	CardWidth  float64 `json:"card_width" bson:"card_width"`
	CardHeight float64 `json:"card_height" bson:"card_height"`

	// FamilyGroups is the number of connected components in the snapshot.
	FamilyGroups int `json:"family_groups" bson:"family_groups"`

	Stats kin.BuildStats `json:"stats" bson:"stats"`
}

// Placement returns the placement for a person ID and true, or a zero value
// and false when the person wasn't in the snapshot. Placements are sorted
// by ID, so the lookup is a binary search.
func (r Result) Placement(id string) (Placement, bool) {
	i, ok := slices.BinarySearchFunc(r.Placements, id, func(p Placement, id string) int {
		return strings.Compare(p.ID, id)
	})
	if !ok {
		return Placement{}, false
	}
	return r.Placements[i], true
}

// Bounds returns the bounding box of all cards as (minX, minY, maxX, maxY).
// An empty layout reports all zeros.
func (r Result) Bounds() (minX, minY, maxX, maxY float64) {
	if len(r.Placements) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range r.Placements {
		minX = math.Min(minX, p.X-r.CardWidth/2)
		maxX = math.Max(maxX, p.X+r.CardWidth/2)
		minY = math.Min(minY, p.Y-r.CardHeight/2)
		maxY = math.Max(maxY, p.Y+r.CardHeight/2)
	}
	return minX, minY, maxX, maxY
}

// =============================================================================
// Build - The Layout Pipeline
// =============================================================================

// state is the invocation-scoped working set of one layout run. Everything
// the pipeline stages share lives here rather than in package-level
// variables, so concurrent or repeated invocations never leak into each
// other.
type state struct {
	opts  Options
	nodes map[string]*kin.Node
	ids   []string // sorted person IDs, the canonical iteration order

	groups  [][]*kin.Node
	groupOf map[*kin.Node]int

	// partners maps a blood anchor to its attached partners.
	partners map[*kin.Node][]*kin.Node

	widths map[*kin.Node]float64
	placed map[*kin.Node]bool
}

// Build runs the full layout pipeline over one snapshot and returns the
// geometry for every person. The engine is pure with respect to its inputs:
// the snapshot is never mutated, no state survives the call, and identical
// input always produces identical output.
//
// An empty snapshot yields an empty result; malformed edges degrade to the
// documented precedence rules rather than errors, so a renderable layout is
// always produced.
func Build(snap kin.Snapshot, options ...Option) Result {
	opts := DefaultOptions()
	for _, o := range options {
		o(&opts)
	}

	nodes, stats := kin.Build(snap.People, snap.Edges)

	st := &state{
		opts:     opts,
		nodes:    nodes,
		ids:      make([]string, 0, len(nodes)),
		groupOf:  make(map[*kin.Node]int, len(nodes)),
		partners: make(map[*kin.Node][]*kin.Node),
		widths:   make(map[*kin.Node]float64, len(nodes)),
		placed:   make(map[*kin.Node]bool, len(nodes)),
	}
	for id := range nodes {
		st.ids = append(st.ids, id)
	}
	slices.Sort(st.ids)

	st.resolveCouples()
	st.partitionGroups()
	st.assignGenerations()

	// Lay the groups out left to right, each in its own lane. The
	// post-processors then reshape the focal component and re-lane
	// everything disconnected from it.
	cursor := 0.0
	for _, group := range st.groups {
		w := st.layoutGroup(group, cursor)
		cursor += w + opts.LaneGap
	}
	st.assignVertical()

	st.separateSides()
	st.placeStepFamilies()

	opts.Logger.Debug("layout complete",
		"people", len(st.ids),
		"groups", len(st.groups),
		"dropped_edges", stats.Dropped())

	return st.export(stats)
}

// export converts the working nodes into the stable output format, sorted
// by person ID.
func (st *state) export(stats kin.BuildStats) Result {
	res := Result{
		Placements:   make([]Placement, 0, len(st.ids)),
		CardWidth:    st.opts.CardWidth,
		CardHeight:   st.opts.CardHeight,
		FamilyGroups: len(st.groups),
		Stats:        stats,
	}
	for _, id := range st.ids {
		n := st.nodes[id]
		p := Placement{
			ID:              id,
			Generation:      n.Generation,
			X:               n.X,
			Y:               n.Y,
			AttachedPartner: n.AttachedPartner,
			Parents:         idsOf(n.Parents),
			Children:        idsOf(n.Children),
			Spouses:         idsOf(n.Spouses),
			Siblings:        idsOf(n.Siblings),
		}
		if n.Anchor != nil {
			p.AnchorID = n.Anchor.ID()
		}
		res.Placements = append(res.Placements, p)
	}
	return res
}

// idsOf extracts sorted person IDs from an adjacency list.
func idsOf(nodes []*kin.Node) []string {
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	slices.Sort(ids)
	return ids
}
