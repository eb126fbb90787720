package layout

import (
	"slices"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// relation labels the adjacency kind a generation value propagated through.
// The conflict policy depends on it: level relations (sibling, spouse) may
// overwrite an earlier assignment, blood descent (parent, child) may not.
type relation int

const (
	relSeed relation = iota
	relSibling
	relSpouse
	relChild  // propagation towards a child (generation+1)
	relParent // propagation towards a parent (generation-1)
)

// partitionGroups discovers connected family groups via undirected traversal
// over all four adjacency kinds. Groups are ordered by their lowest member
// ID and members within a group are sorted by ID, so the partition is
// deterministic for identical input.
func (st *state) partitionGroups() {
	visited := make(map[*kin.Node]bool, len(st.nodes))
	var stack []*kin.Node

	for _, id := range st.ids {
		start := st.nodes[id]
		if visited[start] {
			continue
		}

		var group []*kin.Node
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			group = append(group, n)
			for _, m := range n.Neighbors(nil) {
				if !visited[m] {
					visited[m] = true
					stack = append(stack, m)
				}
			}
		}

		slices.SortFunc(group, CompareByID)
		idx := len(st.groups)
		st.groups = append(st.groups, group)
		for _, n := range group {
			st.groupOf[n] = idx
		}
	}
}

// seedFor picks the propagation seed for one family group: the focal person
// when present in the group, else the parentless member with the earliest
// birth date (missing dates sort as the earliest possible date so undated
// founders still win deterministically), else the earliest-born member
// overall, else the first record.
func (st *state) seedFor(group []*kin.Node) *kin.Node {
	if st.opts.FocalID != "" {
		if f, ok := st.nodes[st.opts.FocalID]; ok && st.groupOf[f] == st.groupOf[group[0]] {
			return f
		}
	}

	var roots []*kin.Node
	for _, n := range group {
		if len(n.Parents) == 0 {
			roots = append(roots, n)
		}
	}
	if len(roots) > 0 {
		return slices.MinFunc(roots, CompareBirthMissingFirst)
	}
	// Relationship cycle with no parentless member: fall back to the
	// earliest-born member, then first record by ID.
	return slices.MinFunc(group, CompareBirthMissingFirst)
}

// queueEntry is one pending propagation step.
type queueEntry struct {
	node *kin.Node
	gen  int
	rel  relation
}

// assignGenerations assigns an integer generation to every node, one family
// group at a time. Each group runs an independent FIFO propagation from its
// seed at generation zero: siblings and spouses receive the same generation,
// children one more, parents one less.
//
// Conflict policy: when a node already holds a different generation than the
// one arriving, a sibling/spouse propagation overwrites it (level
// equivalence beats whatever blood descent assigned first, which resolves
// the common case of two siblings marrying into different branches), while a
// parent/child propagation leaves the existing value alone. Every node
// propagates outward at most once, so a relationship cycle stops spreading
// as soon as all reachable nodes have been visited and the pass terminates
// with stable, if structurally odd, generations.
func (st *state) assignGenerations() {
	for _, group := range st.groups {
		st.assignGroup(group)
	}
}

func (st *state) assignGroup(group []*kin.Node) {
	assigned := make(map[*kin.Node]bool, len(group))
	propagated := make(map[*kin.Node]bool, len(group))

	queue := []queueEntry{{node: st.seedFor(group), gen: 0, rel: relSeed}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		n := e.node
		if assigned[n] {
			if n.Generation != e.gen && (e.rel == relSibling || e.rel == relSpouse) {
				n.Generation = e.gen
			}
		} else {
			n.Generation = e.gen
			assigned[n] = true
		}

		if propagated[n] {
			continue
		}
		propagated[n] = true

		g := n.Generation
		for _, s := range n.Siblings {
			queue = append(queue, queueEntry{node: s, gen: g, rel: relSibling})
		}
		for _, s := range n.Spouses {
			queue = append(queue, queueEntry{node: s, gen: g, rel: relSpouse})
		}
		for _, c := range n.Children {
			queue = append(queue, queueEntry{node: c, gen: g + 1, rel: relChild})
		}
		for _, p := range n.Parents {
			queue = append(queue, queueEntry{node: p, gen: g - 1, rel: relParent})
		}
	}

	// A spouse pair always shares a generation, even when the propagation
	// order let a blood-descent assignment land on the partner last.
	for _, n := range group {
		if n.AttachedPartner && n.Anchor != nil {
			n.Generation = n.Anchor.Generation
		}
	}
}
