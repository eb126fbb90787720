package kin

// BuildStats counts the data-quality issues encountered while deriving
// adjacency. Dropped edges are a signal for the producing workflow, not an
// error: the engine always lays out whatever survives.
type BuildStats struct {
	// UnknownEndpoint counts edges referencing a person ID absent from the
	// snapshot. These are dropped silently.
	UnknownEndpoint int

	// SelfReferential counts edges whose two endpoints are the same person.
	SelfReferential int

	// InvalidKind counts edges whose kind is not one of the four known
	// relations.
	InvalidKind int
}

// Dropped returns the total number of edges that did not contribute
// adjacency.
func (s BuildStats) Dropped() int {
	return s.UnknownEndpoint + s.SelfReferential + s.InvalidKind
}

// Build turns the flat snapshot into symmetric per-person adjacency.
//
// Every edge is applied in both directions regardless of the direction it
// was declared in, and each relation list is de-duplicated so a pair never
// appears twice. The snapshot itself is never mutated; generation and
// coordinates on the returned nodes are left at their zero values for the
// layout engine to fill in.
func Build(people []Person, edges []KinshipEdge) (map[string]*Node, BuildStats) {
	nodes := make(map[string]*Node, len(people))
	for i := range people {
		p := people[i]
		if _, dup := nodes[p.ID]; dup {
			continue
		}
		nodes[p.ID] = &Node{Person: &p}
	}

	var stats BuildStats
	for _, e := range edges {
		a, okA := nodes[e.PersonA]
		b, okB := nodes[e.PersonB]
		switch {
		case !okA || !okB:
			stats.UnknownEndpoint++
			continue
		case a == b:
			stats.SelfReferential++
			continue
		case !e.Kind.Valid():
			stats.InvalidKind++
			continue
		}

		switch e.Kind {
		case KindParent: // A is parent of B
			a.Children = appendUnique(a.Children, b)
			b.Parents = appendUnique(b.Parents, a)
		case KindChild: // A is child of B
			a.Parents = appendUnique(a.Parents, b)
			b.Children = appendUnique(b.Children, a)
		case KindSpouse:
			a.Spouses = appendUnique(a.Spouses, b)
			b.Spouses = appendUnique(b.Spouses, a)
		case KindSibling:
			a.Siblings = appendUnique(a.Siblings, b)
			b.Siblings = appendUnique(b.Siblings, a)
		}
	}

	return nodes, stats
}

// appendUnique appends n to list unless it is already present.
func appendUnique(list []*Node, n *Node) []*Node {
	for _, m := range list {
		if m == n {
			return list
		}
	}
	return append(list, n)
}
