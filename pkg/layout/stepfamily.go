package layout

import (
	"math"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// placeStepFamilies moves every family group with no path back to the focal
// person into its own lane beyond the main layout's right edge. Groups keep
// their internal geometry; each additional disconnected group lands one lane
// further out so lanes never collide.
func (st *state) placeStepFamilies() {
	if st.opts.FocalID == "" {
		return
	}
	focal, ok := st.nodes[st.opts.FocalID]
	if !ok {
		return
	}

	reached := st.reachableFrom(focal)

	// Right edge of the focal person's component.
	edge := math.Inf(-1)
	for n := range reached {
		edge = math.Max(edge, n.X+st.opts.CardWidth/2)
	}
	if math.IsInf(edge, -1) {
		return
	}

	cursor := edge + st.opts.LaneGap
	claimed := make(map[*kin.Node]bool, len(st.nodes))
	for _, id := range st.ids {
		start := st.nodes[id]
		if reached[start] || claimed[start] {
			continue
		}

		// Flood-fill this disconnected group among the not-yet-reached
		// nodes.
		group := []*kin.Node{start}
		claimed[start] = true
		for i := 0; i < len(group); i++ {
			for _, m := range group[i].Neighbors(nil) {
				if !reached[m] && !claimed[m] {
					claimed[m] = true
					group = append(group, m)
				}
			}
		}

		minX, maxX := math.Inf(1), math.Inf(-1)
		for _, n := range group {
			minX = math.Min(minX, n.X-st.opts.CardWidth/2)
			maxX = math.Max(maxX, n.X+st.opts.CardWidth/2)
		}

		dx := cursor - minX
		for _, n := range group {
			n.X += dx
		}
		cursor += (maxX - minX) + st.opts.LaneGap
	}
}

// reachableFrom returns the connected component of n over all four relation
// kinds, including n itself.
func (st *state) reachableFrom(n *kin.Node) map[*kin.Node]bool {
	reached := map[*kin.Node]bool{n: true}
	stack := []*kin.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range cur.Neighbors(nil) {
			if !reached[m] {
				reached[m] = true
				stack = append(stack, m)
			}
		}
	}
	return reached
}
