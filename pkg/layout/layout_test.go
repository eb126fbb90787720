package layout

import (
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

func born(y int) *time.Time {
	t := time.Date(y, 3, 15, 0, 0, 0, 0, time.UTC)
	return &t
}

func edge(id, a, b string, k kin.Kind) kin.KinshipEdge {
	return kin.KinshipEdge{ID: id, PersonA: a, PersonB: b, Kind: k}
}

func people(ids ...string) []kin.Person {
	ps := make([]kin.Person, len(ids))
	for i, id := range ids {
		ps[i] = kin.Person{ID: id}
	}
	return ps
}

func mustPlacement(t *testing.T, res Result, id string) Placement {
	t.Helper()
	p, ok := res.Placement(id)
	if !ok {
		t.Fatalf("no placement for %q", id)
	}
	return p
}

func TestBuildEmpty(t *testing.T) {
	res := Build(kin.Snapshot{})
	if len(res.Placements) != 0 {
		t.Errorf("empty snapshot should yield no placements, got %d", len(res.Placements))
	}
	if res.FamilyGroups != 0 {
		t.Errorf("FamilyGroups = %d, want 0", res.FamilyGroups)
	}
	minX, minY, maxX, maxY := res.Bounds()
	if minX != 0 || minY != 0 || maxX != 0 || maxY != 0 {
		t.Errorf("empty bounds = (%v,%v,%v,%v), want zeros", minX, minY, maxX, maxY)
	}
}

func TestBuildSinglePerson(t *testing.T) {
	res := Build(kin.Snapshot{People: people("z")})

	p := mustPlacement(t, res, "z")
	if p.Generation != 0 {
		t.Errorf("generation = %d, want 0", p.Generation)
	}
	minX, minY, maxX, maxY := res.Bounds()
	if maxX-minX != DefaultCardWidth {
		t.Errorf("bounds width = %v, want %v", maxX-minX, DefaultCardWidth)
	}
	if maxY-minY != DefaultCardHeight {
		t.Errorf("bounds height = %v, want %v", maxY-minY, DefaultCardHeight)
	}
}

func TestCoupleWithChild(t *testing.T) {
	snap := kin.Snapshot{
		People: people("p1", "p2", "c1"),
		Edges: []kin.KinshipEdge{
			edge("e1", "p1", "p2", kin.KindSpouse),
			edge("e2", "p1", "c1", kin.KindParent),
			edge("e3", "p2", "c1", kin.KindParent),
		},
	}
	res := Build(snap)

	p1 := mustPlacement(t, res, "p1")
	p2 := mustPlacement(t, res, "p2")
	c1 := mustPlacement(t, res, "c1")

	if p1.Generation != p2.Generation {
		t.Errorf("couple generations differ: %d vs %d", p1.Generation, p2.Generation)
	}
	if c1.Generation != p1.Generation+1 {
		t.Errorf("child generation = %d, want %d", c1.Generation, p1.Generation+1)
	}
	if p1.AttachedPartner || !p2.AttachedPartner {
		t.Errorf("expected p2 attached to p1, got p1=%v p2=%v", p1.AttachedPartner, p2.AttachedPartner)
	}
	if p2.AnchorID != "p1" {
		t.Errorf("p2 anchor = %q, want p1", p2.AnchorID)
	}

	mid := (p1.X + p2.X) / 2
	if math.Abs(c1.X-mid) > 1e-9 {
		t.Errorf("child x = %v, want couple midpoint %v", c1.X, mid)
	}
	if c1.Y-p1.Y != DefaultVSpace {
		t.Errorf("generation spacing = %v, want %v", c1.Y-p1.Y, DefaultVSpace)
	}
}

func TestGenerationConsistency(t *testing.T) {
	snap := kin.Snapshot{
		People: people("gp1", "gp2", "a", "b", "as", "x", "y"),
		Edges: []kin.KinshipEdge{
			edge("e1", "gp1", "gp2", kin.KindSpouse),
			edge("e2", "gp1", "a", kin.KindParent),
			edge("e3", "gp2", "a", kin.KindParent),
			edge("e4", "gp1", "b", kin.KindParent),
			edge("e5", "gp2", "b", kin.KindParent),
			edge("e6", "a", "b", kin.KindSibling),
			edge("e7", "a", "as", kin.KindSpouse),
			edge("e8", "a", "x", kin.KindParent),
			edge("e9", "as", "x", kin.KindParent),
			edge("e10", "b", "y", kin.KindParent),
		},
	}
	res := Build(snap)

	for _, p := range res.Placements {
		for _, parentID := range p.Parents {
			parent := mustPlacement(t, res, parentID)
			if parent.Generation != p.Generation-1 {
				t.Errorf("%s gen %d but parent %s gen %d", p.ID, p.Generation, parentID, parent.Generation)
			}
		}
		for _, spouseID := range p.Spouses {
			spouse := mustPlacement(t, res, spouseID)
			if spouse.Generation != p.Generation {
				t.Errorf("%s gen %d but spouse %s gen %d", p.ID, p.Generation, spouseID, spouse.Generation)
			}
		}
		for _, sibID := range p.Siblings {
			sib := mustPlacement(t, res, sibID)
			if sib.Generation != p.Generation {
				t.Errorf("%s gen %d but sibling %s gen %d", p.ID, p.Generation, sibID, sib.Generation)
			}
		}
	}
}

func TestSiblingEdgeWinsOverSpouse(t *testing.T) {
	// A data error tags two siblings as spouses; the sibling relation must
	// win so no couple is formed between them.
	snap := kin.Snapshot{
		People: people("r", "s1", "s2"),
		Edges: []kin.KinshipEdge{
			edge("e1", "r", "s1", kin.KindParent),
			edge("e2", "r", "s2", kin.KindParent),
			edge("e3", "s1", "s2", kin.KindSibling),
			edge("e4", "s1", "s2", kin.KindSpouse),
		},
	}
	res := Build(snap)

	s1 := mustPlacement(t, res, "s1")
	s2 := mustPlacement(t, res, "s2")
	if s1.AttachedPartner || s2.AttachedPartner {
		t.Error("siblings must not pair up as a couple")
	}
	if s1.Generation != s2.Generation {
		t.Errorf("sibling generations differ: %d vs %d", s1.Generation, s2.Generation)
	}
}

func TestAnchorIsBloodRelative(t *testing.T) {
	// a has no blood ties of its own, so b (who has a child) anchors the
	// couple.
	snap := kin.Snapshot{
		People: people("a", "b", "c"),
		Edges: []kin.KinshipEdge{
			edge("e1", "b", "c", kin.KindParent),
			edge("e2", "a", "b", kin.KindSpouse),
		},
	}
	res := Build(snap)

	a := mustPlacement(t, res, "a")
	b := mustPlacement(t, res, "b")
	if !a.AttachedPartner || a.AnchorID != "b" {
		t.Errorf("a should attach to b, got attached=%v anchor=%q", a.AttachedPartner, a.AnchorID)
	}
	if b.AttachedPartner {
		t.Error("the blood relative must not be the attached side")
	}
}

func TestNoSameGenerationOverlap(t *testing.T) {
	snap := kin.Snapshot{
		People: people("f1", "f2", "c1", "c2", "c3", "sp1", "g1", "g2", "g3"),
		Edges: []kin.KinshipEdge{
			edge("e1", "f1", "f2", kin.KindSpouse),
			edge("e2", "f1", "c1", kin.KindParent),
			edge("e3", "f2", "c1", kin.KindParent),
			edge("e4", "f1", "c2", kin.KindParent),
			edge("e5", "f2", "c2", kin.KindParent),
			edge("e6", "f1", "c3", kin.KindParent),
			edge("e7", "f2", "c3", kin.KindParent),
			edge("e8", "c1", "sp1", kin.KindSpouse),
			edge("e9", "c1", "g1", kin.KindParent),
			edge("e10", "c1", "g2", kin.KindParent),
			edge("e11", "c2", "g3", kin.KindParent),
		},
	}
	res := Build(snap)

	byGen := make(map[int][]Placement)
	for _, p := range res.Placements {
		byGen[p.Generation] = append(byGen[p.Generation], p)
	}
	for gen, ps := range byGen {
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				if math.Abs(ps[i].X-ps[j].X) < res.CardWidth-1e-9 {
					t.Errorf("generation %d: %s (x=%v) overlaps %s (x=%v)",
						gen, ps[i].ID, ps[i].X, ps[j].ID, ps[j].X)
				}
			}
		}
	}
}

func TestSiblingsWithChildrenSpreadWider(t *testing.T) {
	snap := kin.Snapshot{
		People: people("ra", "a1", "a2", "rb", "b1", "b2", "x1", "x2"),
		Edges: []kin.KinshipEdge{
			edge("e1", "ra", "a1", kin.KindParent),
			edge("e2", "ra", "a2", kin.KindParent),
			edge("e3", "rb", "b1", kin.KindParent),
			edge("e4", "rb", "b2", kin.KindParent),
			edge("e5", "b1", "x1", kin.KindParent),
			edge("e6", "b2", "x2", kin.KindParent),
		},
	}
	res := Build(snap)

	a1, a2 := mustPlacement(t, res, "a1"), mustPlacement(t, res, "a2")
	b1, b2 := mustPlacement(t, res, "b1"), mustPlacement(t, res, "b2")

	childless := math.Abs(a2.X - a1.X)
	withKids := math.Abs(b2.X - b1.X)
	if withKids <= childless {
		t.Errorf("siblings with children should spread wider: %v vs %v", withKids, childless)
	}

	// The lone ancestors sit centered above their broods.
	ra := mustPlacement(t, res, "ra")
	if math.Abs(ra.X-(a1.X+a2.X)/2) > 1e-9 {
		t.Errorf("ra x = %v, want midpoint of children %v", ra.X, (a1.X+a2.X)/2)
	}
	if ra.Generation != a1.Generation-1 {
		t.Errorf("ra generation = %d, want %d", ra.Generation, a1.Generation-1)
	}
}

func TestSpousedSiblingPlacedFirst(t *testing.T) {
	snap := kin.Snapshot{
		People: people("r", "a", "b", "s"),
		Edges: []kin.KinshipEdge{
			edge("e1", "r", "a", kin.KindParent),
			edge("e2", "r", "b", kin.KindParent),
			edge("e3", "b", "s", kin.KindSpouse),
		},
	}
	res := Build(snap)

	a := mustPlacement(t, res, "a")
	b := mustPlacement(t, res, "b")
	s := mustPlacement(t, res, "s")
	if b.X >= a.X {
		t.Errorf("the spoused sibling should go left: b=%v a=%v", b.X, a.X)
	}
	if s.X <= b.X || s.X >= a.X {
		t.Errorf("partner should sit between anchor and next sibling: b=%v s=%v a=%v", b.X, s.X, a.X)
	}
}

func TestFocalSideSeparation(t *testing.T) {
	snap := kin.Snapshot{
		People: []kin.Person{
			{ID: "f", GivenName: "Focal"},
			{ID: "m", GivenName: "Mother", Gender: kin.GenderFemale},
			{ID: "d", GivenName: "Father", Gender: kin.GenderMale},
			{ID: "gm"},
			{ID: "gd"},
		},
		Edges: []kin.KinshipEdge{
			edge("e1", "m", "f", kin.KindParent),
			edge("e2", "d", "f", kin.KindParent),
			edge("e3", "m", "d", kin.KindSpouse),
			edge("e4", "gm", "m", kin.KindParent),
			edge("e5", "gd", "d", kin.KindParent),
		},
	}
	res := Build(snap, WithFocal("f"))

	f := mustPlacement(t, res, "f")
	m := mustPlacement(t, res, "m")
	d := mustPlacement(t, res, "d")
	gm := mustPlacement(t, res, "gm")
	gd := mustPlacement(t, res, "gd")

	if math.Abs(m.X-(f.X-DefaultSideOffset)) > 1e-9 {
		t.Errorf("mother x = %v, want %v", m.X, f.X-DefaultSideOffset)
	}
	if math.Abs(d.X-(f.X+DefaultSideOffset)) > 1e-9 {
		t.Errorf("father x = %v, want %v", d.X, f.X+DefaultSideOffset)
	}
	// Each grandparent travels with its lineage.
	if gm.X >= f.X {
		t.Errorf("maternal grandparent should land left of the focal person, got %v >= %v", gm.X, f.X)
	}
	if gd.X <= f.X {
		t.Errorf("paternal grandparent should land right of the focal person, got %v <= %v", gd.X, f.X)
	}
}

func TestFocalSingleParent(t *testing.T) {
	snap := kin.Snapshot{
		People: []kin.Person{
			{ID: "f"},
			{ID: "m", Gender: kin.GenderFemale},
		},
		Edges: []kin.KinshipEdge{
			edge("e1", "m", "f", kin.KindParent),
		},
	}
	res := Build(snap, WithFocal("f"))

	f := mustPlacement(t, res, "f")
	m := mustPlacement(t, res, "m")
	if math.Abs(m.X-(f.X-DefaultSideOffset)) > 1e-9 {
		t.Errorf("sole female parent goes left: m=%v, want %v", m.X, f.X-DefaultSideOffset)
	}
}

func TestIsolatedPersonOwnLane(t *testing.T) {
	snap := kin.Snapshot{
		People: people("p1", "p2", "c1", "z"),
		Edges: []kin.KinshipEdge{
			edge("e1", "p1", "p2", kin.KindSpouse),
			edge("e2", "p1", "c1", kin.KindParent),
			edge("e3", "p2", "c1", kin.KindParent),
		},
	}
	res := Build(snap, WithFocal("c1"))

	if res.FamilyGroups != 2 {
		t.Fatalf("FamilyGroups = %d, want 2", res.FamilyGroups)
	}

	mainRight := math.Inf(-1)
	for _, id := range []string{"p1", "p2", "c1"} {
		p := mustPlacement(t, res, id)
		mainRight = math.Max(mainRight, p.X+res.CardWidth/2)
	}
	z := mustPlacement(t, res, "z")
	if z.X-res.CardWidth/2 < mainRight+DefaultLaneGap-1e-9 {
		t.Errorf("isolated person at %v should sit a full lane beyond %v", z.X, mainRight)
	}
}

func TestBuildDeterministic(t *testing.T) {
	// Input order is scrambled relative to ID order on purpose.
	snap := kin.Snapshot{
		People: []kin.Person{
			{ID: "c2"}, {ID: "f1", Born: born(1940)}, {ID: "g1"},
			{ID: "c1", Born: born(1962)}, {ID: "f2", Born: born(1941)},
			{ID: "sp1"}, {ID: "c3", Born: born(1968)},
		},
		Edges: []kin.KinshipEdge{
			edge("e5", "f2", "c2", kin.KindParent),
			edge("e1", "f1", "f2", kin.KindSpouse),
			edge("e8", "c1", "sp1", kin.KindSpouse),
			edge("e2", "f1", "c1", kin.KindParent),
			edge("e7", "f2", "c3", kin.KindParent),
			edge("e4", "f1", "c2", kin.KindParent),
			edge("e9", "c1", "g1", kin.KindParent),
			edge("e3", "f2", "c1", kin.KindParent),
			edge("e6", "f1", "c3", kin.KindParent),
		},
	}

	first := Build(snap, WithFocal("c1"))
	second := Build(snap, WithFocal("c1"))
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input must produce identical output")
	}
}

func TestBuildDoesNotMutateSnapshot(t *testing.T) {
	snap := kin.Snapshot{
		People: []kin.Person{{ID: "b"}, {ID: "a"}},
		Edges:  []kin.KinshipEdge{edge("e1", "a", "b", kin.KindSpouse)},
	}
	Build(snap)

	if snap.People[0].ID != "b" || snap.Edges[0].ID != "e1" {
		t.Error("Build must not reorder or mutate the snapshot")
	}
}

func TestBuildReportsDroppedEdges(t *testing.T) {
	snap := kin.Snapshot{
		People: people("a", "b"),
		Edges: []kin.KinshipEdge{
			edge("e1", "a", "b", kin.KindSpouse),
			edge("e2", "a", "ghost", kin.KindParent),
		},
	}
	res := Build(snap)

	if res.Stats.UnknownEndpoint != 1 {
		t.Errorf("UnknownEndpoint = %d, want 1", res.Stats.UnknownEndpoint)
	}
	if res.Stats.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", res.Stats.Dropped())
	}
}

func TestBuildOptions(t *testing.T) {
	snap := kin.Snapshot{
		People: people("p1", "c1"),
		Edges:  []kin.KinshipEdge{edge("e1", "p1", "c1", kin.KindParent)},
	}
	res := Build(snap,
		WithCardSize(200, 80),
		WithVerticalSpacing(100, 50),
	)

	if res.CardWidth != 200 || res.CardHeight != 80 {
		t.Errorf("card size = %vx%v, want 200x80", res.CardWidth, res.CardHeight)
	}
	p1 := mustPlacement(t, res, "p1")
	c1 := mustPlacement(t, res, "c1")
	if p1.Y != 50 {
		t.Errorf("generation zero y = %v, want 50", p1.Y)
	}
	if c1.Y-p1.Y != 100 {
		t.Errorf("vertical spacing = %v, want 100", c1.Y-p1.Y)
	}
}

func TestPlacementAdjacencyIDs(t *testing.T) {
	snap := kin.Snapshot{
		People: people("p1", "p2", "c1"),
		Edges: []kin.KinshipEdge{
			edge("e1", "p1", "p2", kin.KindSpouse),
			edge("e2", "p1", "c1", kin.KindParent),
			edge("e3", "p2", "c1", kin.KindParent),
		},
	}
	res := Build(snap)

	c1 := mustPlacement(t, res, "c1")
	if !reflect.DeepEqual(c1.Parents, []string{"p1", "p2"}) {
		t.Errorf("c1 parents = %v, want [p1 p2]", c1.Parents)
	}
	p1 := mustPlacement(t, res, "p1")
	if !reflect.DeepEqual(p1.Spouses, []string{"p2"}) {
		t.Errorf("p1 spouses = %v, want [p2]", p1.Spouses)
	}
	if !reflect.DeepEqual(p1.Children, []string{"c1"}) {
		t.Errorf("p1 children = %v, want [c1]", p1.Children)
	}
}

// buildState runs the pipeline up to and including the first side
// separation, returning the working state so a post-processing pass can be
// invoked again on settled geometry.
func buildState(snap kin.Snapshot, opts Options) *state {
	nodes, _ := kin.Build(snap.People, snap.Edges)

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

	cursor := 0.0
	for _, group := range st.groups {
		w := st.layoutGroup(group, cursor)
		cursor += w + opts.LaneGap
	}
	st.assignVertical()
	st.separateSides()
	return st
}

func TestSideSeparationFixedPoint(t *testing.T) {
	// Focal person with two parents, grandparents on both sides, a full
	// sibling shared by both parents, and a paternal half-sibling.
	snap := kin.Snapshot{
		People: []kin.Person{
			{ID: "f"},
			{ID: "m", Gender: kin.GenderFemale},
			{ID: "d", Gender: kin.GenderMale},
			{ID: "gm"}, {ID: "gd"},
			{ID: "sib"}, {ID: "half"},
		},
		Edges: []kin.KinshipEdge{
			edge("e1", "m", "f", kin.KindParent),
			edge("e2", "d", "f", kin.KindParent),
			edge("e3", "m", "d", kin.KindSpouse),
			edge("e4", "gm", "m", kin.KindParent),
			edge("e5", "gd", "d", kin.KindParent),
			edge("e6", "m", "sib", kin.KindParent),
			edge("e7", "d", "sib", kin.KindParent),
			edge("e8", "d", "half", kin.KindParent),
		},
	}
	opts := DefaultOptions()
	opts.FocalID = "f"

	st := buildState(snap, opts)

	first := make(map[string]float64, len(st.ids))
	for _, id := range st.ids {
		first[id] = st.nodes[id].X
	}

	// Re-running the pass on already-separated geometry must move nothing:
	// the parents are already at their absolute offsets and the shared
	// nudge scales with the movement that happened.
	st.separateSides()
	for _, id := range st.ids {
		if got := st.nodes[id].X; math.Abs(got-first[id]) > 1e-9 {
			t.Errorf("%s moved on the second pass: %v -> %v", id, first[id], got)
		}
	}
}

func TestResultPlacementsSortedByID(t *testing.T) {
	snap := kin.Snapshot{
		People: people("c", "a", "b"),
		Edges:  []kin.KinshipEdge{edge("e1", "a", "b", kin.KindSpouse)},
	}
	res := Build(snap)

	if !slices.IsSortedFunc(res.Placements, func(a, b Placement) int {
		return strings.Compare(a.ID, b.ID)
	}) {
		t.Error("placements should be sorted by person ID")
	}
	if _, ok := res.Placement("b"); !ok {
		t.Error("lookup of an existing ID should succeed")
	}
	if _, ok := res.Placement("ghost"); ok {
		t.Error("lookup of an unknown ID should report false")
	}
}
