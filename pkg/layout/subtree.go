package layout

import (
	"slices"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// The subtree engine is a recursive, generation-respecting, two-pass layout:
// widths are computed bottom-up over each member's descendants, x centers
// are assigned top-down with a running cursor. Recursion depth is bounded by
// family depth, which stays shallow for realistic genealogies.

// childOwner returns the parent under which a child's subtree is placed.
// Children of a couple hang under the blood anchor; between two blood
// parents the lower ID wins. This keeps every child subtree placed exactly
// once even though it is reachable from both parents.
func childOwner(c *kin.Node) *kin.Node {
	if len(c.Parents) == 0 {
		return nil
	}
	owner := c.Parents[0]
	for _, p := range c.Parents[1:] {
		switch {
		case owner.AttachedPartner && !p.AttachedPartner:
			owner = p
		case owner.AttachedPartner == p.AttachedPartner && CompareByID(p, owner) < 0:
			owner = p
		}
	}
	return owner
}

// ownedChildren returns n's children whose subtree n is responsible for
// placing, in ID order. A child who is an attached partner rides its own
// anchor instead, so it is never placed as part of n's subtree.
func (st *state) ownedChildren(n *kin.Node) []*kin.Node {
	var owned []*kin.Node
	for _, c := range n.Children {
		if c.AttachedPartner {
			continue
		}
		if childOwner(c) == n {
			owned = append(owned, c)
		}
	}
	slices.SortFunc(owned, CompareByID)
	return owned
}

// pairGap returns the horizontal gap between two adjacent blood relatives.
// The gap widens with the pair's combined child count so descendant fans
// don't overlap, grows another 50% when both sides have children of their
// own, and gains a flat bonus when either side has three or more.
func (st *state) pairGap(a, b *kin.Node) float64 {
	ca, cb := len(a.Children), len(b.Children)
	gap := st.opts.BaseGap + st.opts.ChildGap*float64(ca+cb)
	if ca > 0 && cb > 0 {
		gap *= 1.5
	}
	if ca >= 3 || cb >= 3 {
		gap += st.opts.LargeFamilyBonus
	}
	return gap
}

// partnerSpan is the horizontal room taken by n's attached partners to the
// right of its card. Partners ride along rather than consuming subtree
// width, but child groups are centered under the couple, so the span is
// needed for that shift.
func (st *state) partnerSpan(n *kin.Node) float64 {
	return float64(len(st.partners[n])) * (st.opts.CardWidth + st.opts.PartnerGap)
}

// subtreeWidth computes the horizontal space needed by n and all of its
// descendants: one card for a leaf, otherwise the child groups side by side
// (but never less than one card). Results are memoized for the invocation.
func (st *state) subtreeWidth(n *kin.Node) float64 {
	if w, ok := st.widths[n]; ok {
		return w
	}
	// Seed the memo before recursing so a pathological parent/child cycle
	// terminates with the card-width fallback instead of recursing forever.
	st.widths[n] = st.opts.CardWidth

	w := st.opts.CardWidth
	if clusters := clusterSiblings(st.ownedChildren(n)); len(clusters) > 0 {
		var sum float64
		for i, cl := range clusters {
			if i > 0 {
				sum += st.opts.GroupGap
			}
			sum += st.unitWidth(cl)
		}
		w = max(w, sum)
	}
	st.widths[n] = w
	return w
}

// unitWidth is the span of an ordered sibling run: member subtree widths
// plus each member's attached-partner span plus the scaled gaps between
// adjacent members.
func (st *state) unitWidth(members []*kin.Node) float64 {
	ordered := st.orderForPlacement(members)
	var w float64
	for i, m := range ordered {
		if i > 0 {
			w += st.pairGap(ordered[i-1], m)
		}
		w += st.subtreeWidth(m) + st.partnerSpan(m)
	}
	return w
}

// orderForPlacement sorts unit members for left-to-right placement: members
// with a spouse first, then ascending subtree width, then birth date.
func (st *state) orderForPlacement(members []*kin.Node) []*kin.Node {
	ordered := slices.Clone(members)
	slices.SortFunc(ordered, unitMemberOrder(st.subtreeWidth))
	return ordered
}

// placeUnit assigns x centers to a sibling run starting at left and returns
// the width consumed.
func (st *state) placeUnit(members []*kin.Node, left float64) float64 {
	ordered := st.orderForPlacement(members)
	cur := left
	for i, m := range ordered {
		if i > 0 {
			cur += st.pairGap(ordered[i-1], m)
		}
		st.placeMember(m, cur)
		cur += st.subtreeWidth(m) + st.partnerSpan(m)
	}
	return cur - left
}

// placeMember centers n over its subtree span, parks its attached partners
// at a fixed offset to the right, and recurses into the child groups.
func (st *state) placeMember(n *kin.Node, left float64) {
	w := st.subtreeWidth(n)
	n.X = left + w/2
	st.placed[n] = true

	px := n.X
	for _, p := range st.partners[n] {
		px += st.opts.CardWidth + st.opts.PartnerGap
		p.X = px
		p.Generation = n.Generation
		st.placed[p] = true
	}

	clusters := clusterSiblings(st.ownedChildren(n))
	if len(clusters) == 0 {
		return
	}

	var total float64
	for i, cl := range clusters {
		if i > 0 {
			total += st.opts.GroupGap
		}
		total += st.unitWidth(cl)
	}

	childLeft := left + (w-total)/2
	// Children of a couple center under the couple midpoint, not under the
	// anchor card alone.
	childLeft += st.partnerSpan(n) / 2
	for _, cl := range clusters {
		cw := st.placeUnit(cl, childLeft)
		childLeft += cw + st.opts.GroupGap
	}
}

// layoutGroup lays out one connected family group starting at left and
// returns the horizontal extent consumed, including partners that overhang
// the last subtree.
func (st *state) layoutGroup(group []*kin.Node, left float64) float64 {
	units, deferred := st.composeRootUnits(group)

	// A deferred lone ancestor's children take its place at root level.
	for _, anc := range deferred {
		var promoted []*kin.Node
		for _, c := range st.ownedChildren(anc) {
			promoted = append(promoted, c)
		}
		for _, cl := range clusterSiblings(promoted) {
			units = append(units, &unit{blood: cl})
		}
	}

	cur := left
	for _, u := range units {
		w := st.placeUnit(u.blood, cur)
		cur += w + 2*st.opts.GroupGap
	}

	// Lone ancestors sit centered above the children they were deferred
	// behind.
	for _, anc := range deferred {
		st.placeAboveChildren(anc)
	}

	// Anything still unplaced (unreachable from any root after layout)
	// goes above its own children if it has any, otherwise into a side
	// lane at the group's right edge.
	extent := st.groupExtent(group, cur)
	for _, n := range group {
		if st.placed[n] {
			continue
		}
		if !st.placeAboveChildren(n) {
			n.X = extent + st.opts.GroupGap + st.opts.CardWidth/2
			st.placed[n] = true
			extent = n.X + st.opts.CardWidth/2
		}
	}

	return st.groupExtent(group, cur) - left
}

// placeAboveChildren centers n over its already-placed children. Returns
// false when no child has a position yet.
func (st *state) placeAboveChildren(n *kin.Node) bool {
	var sum float64
	var count int
	for _, c := range n.Children {
		if st.placed[c] {
			sum += c.X
			count++
		}
	}
	if count == 0 {
		return false
	}
	n.X = sum / float64(count)
	st.placed[n] = true
	return true
}

// groupExtent returns the right edge of the group's placed cards, at least
// cursor.
func (st *state) groupExtent(group []*kin.Node, cursor float64) float64 {
	extent := cursor
	for _, n := range group {
		if st.placed[n] {
			extent = max(extent, n.X+st.opts.CardWidth/2)
		}
	}
	return extent
}

// assignVertical derives y from the generation: every node sits at
// generation × vertical spacing + base offset.
func (st *state) assignVertical() {
	for _, id := range st.ids {
		n := st.nodes[id]
		n.Y = float64(n.Generation)*st.opts.VSpace + st.opts.BaseY
	}
}
