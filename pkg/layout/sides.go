package layout

import (
	"math"
	"slices"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// separateSides pushes the focal person's parents and their lineages apart
// so the maternal and paternal branches read as distinct halves of the
// chart. Couples translate as rigid units, and descendants shared by both
// parents are only nudged partially toward the midpoint so the primary
// layout isn't contradicted.
//
// The pass is a fixed point: parents are moved to an absolute offset from
// the focal person's x, and the shared-descendant nudge scales with how far
// the parents actually moved, so re-running it on an already-separated
// layout moves nothing.
func (st *state) separateSides() {
	if st.opts.FocalID == "" {
		return
	}
	focal, ok := st.nodes[st.opts.FocalID]
	if !ok {
		return
	}

	parents := slices.Clone(focal.Parents)
	slices.SortFunc(parents, compareParentSide)

	switch len(parents) {
	case 0:
		return
	case 1:
		st.separateSingleParent(focal, parents[0])
	default:
		st.separateTwoParents(focal, parents[0], parents[1])
	}
}

func (st *state) separateTwoParents(focal, left, right *kin.Node) {
	descLeft := descendants(left)
	descRight := descendants(right)

	shared := make(map[*kin.Node]bool)
	for d := range descLeft {
		if descRight[d] {
			shared[d] = true
		}
	}

	lineageLeft := st.lineageOf(left, descLeft, shared, focal)
	lineageRight := st.lineageOf(right, descRight, shared, focal)
	// A node claimed by both lineages (ancestor trees that merge back
	// together) is contested; leave it where the primary layout put it.
	for n := range lineageLeft {
		if lineageRight[n] {
			delete(lineageLeft, n)
			delete(lineageRight, n)
		}
	}

	dxLeft := (focal.X - st.opts.SideOffset) - left.X
	dxRight := (focal.X + st.opts.SideOffset) - right.X
	st.translateRigid(lineageLeft, lineageRight, dxLeft)
	st.translateRigid(lineageRight, lineageLeft, dxRight)

	// Shared descendants are nudged toward the midpoint between the two
	// parents (the focal person's x) by a fraction of the separation that
	// actually happened this pass. When the parents were already in
	// place, the factor is zero and nothing moves.
	factor := st.opts.SharedPull * math.Min(1,
		(math.Abs(dxLeft)+math.Abs(dxRight))/(2*st.opts.SideOffset))
	if factor == 0 {
		return
	}
	for _, id := range st.ids {
		d := st.nodes[id]
		if !shared[d] || d == focal {
			continue
		}
		delta := factor * (focal.X - d.X)
		d.X += delta
		for _, p := range st.partners[d] {
			if !shared[p] {
				p.X += delta
			}
		}
	}
}

// separateSingleParent pushes the sole known parent's lineage to one side of
// the focal person, chosen by the parent's gender (female left, otherwise
// right), without a maternal/paternal split to mirror.
func (st *state) separateSingleParent(focal, parent *kin.Node) {
	desc := descendants(parent)
	// The focal person and their own descendants stay put; everything
	// else in the parent's lineage moves.
	keep := descendants(focal)
	keep[focal] = true

	lineage := st.lineageOf(parent, desc, keep, focal)

	offset := st.opts.SideOffset
	if parent.Person.Gender == kin.GenderFemale {
		offset = -offset
	}
	dx := (focal.X + offset) - parent.X
	st.translateRigid(lineage, keep, dx)
}

// lineageOf collects the set translated with one parent: the parent itself,
// its ancestors, the siblings of those ancestors, and its descendants that
// are not in excludeDesc (the descendants shared with the other parent).
// The focal person is never part of a lineage.
func (st *state) lineageOf(parent *kin.Node, desc, excludeDesc map[*kin.Node]bool, focal *kin.Node) map[*kin.Node]bool {
	lineage := map[*kin.Node]bool{parent: true}

	// Ancestors and their siblings.
	stack := []*kin.Node{parent}
	seen := map[*kin.Node]bool{parent: true}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range n.Parents {
			if !seen[p] {
				seen[p] = true
				lineage[p] = true
				stack = append(stack, p)
			}
			for _, s := range p.Siblings {
				if !seen[s] {
					seen[s] = true
					lineage[s] = true
				}
			}
		}
		for _, s := range n.Siblings {
			if !seen[s] {
				seen[s] = true
				lineage[s] = true
			}
		}
	}

	// Non-shared descendants.
	for d := range desc {
		if !excludeDesc[d] {
			lineage[d] = true
		}
	}

	delete(lineage, focal)
	return lineage
}

// translateRigid shifts every node in set by dx, dragging each node's
// attached partners along so a couple is never split across the
// translation. Partners claimed by the exclude set stay put: when the
// focal person's parents are themselves a couple, each belongs to the
// opposite lineage and the separation must pull them apart.
func (st *state) translateRigid(set, exclude map[*kin.Node]bool, dx float64) {
	if dx == 0 {
		return
	}
	moved := make(map[*kin.Node]bool, len(set))
	for _, id := range st.ids {
		n := st.nodes[id]
		if !set[n] || moved[n] {
			continue
		}
		n.X += dx
		moved[n] = true
		for _, p := range st.partners[n] {
			if !moved[p] && !exclude[p] {
				p.X += dx
				moved[p] = true
			}
		}
		// A moving attached partner drags its anchor only when the
		// anchor is itself part of the set; otherwise the anchor's
		// lineage owns its position.
	}
}

// descendants returns the set of nodes reachable from n via child edges,
// not including n itself.
func descendants(n *kin.Node) map[*kin.Node]bool {
	desc := make(map[*kin.Node]bool)
	stack := []*kin.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range cur.Children {
			if !desc[c] {
				desc[c] = true
				stack = append(stack, c)
			}
		}
	}
	return desc
}
