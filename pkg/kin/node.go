package kin

// Node is the per-person working record built fresh for every layout run.
// It carries the generation/coordinate outputs and the symmetric adjacency
// derived from the snapshot edges. Nodes never outlive one invocation of the
// engine; nothing here is shared across runs.
type Node struct {
	Person *Person

	// Generation is the integer descent level within the node's family
	// group. It can be negative (ancestors of the seed) and is only
	// meaningful relative to other nodes in the same group.
	Generation int

	// X, Y are the card center coordinates assigned by the layout engine.
	X, Y float64

	// Adjacency, symmetric and de-duplicated regardless of how the
	// snapshot declared the edges.
	Parents  []*Node
	Children []*Node
	Spouses  []*Node
	Siblings []*Node

	// AttachedPartner marks a spouse positioned relative to a blood
	// relative rather than claiming layout width of its own. Anchor points
	// at that blood relative and is nil for everyone else.
	AttachedPartner bool
	Anchor          *Node
}

// ID returns the underlying person's ID.
func (n *Node) ID() string { return n.Person.ID }

// HasBloodTies reports whether the node has at least one parent, child, or
// sibling edge. This is the seed condition for blood-relative marking in the
// couple resolver; the one-step sibling extension happens there.
func (n *Node) HasBloodTies() bool {
	return len(n.Parents) > 0 || len(n.Children) > 0 || len(n.Siblings) > 0
}

// Related reports whether other appears in any of the four adjacency lists.
func (n *Node) Related(other *Node) bool {
	for _, list := range [][]*Node{n.Parents, n.Children, n.Spouses, n.Siblings} {
		for _, m := range list {
			if m == other {
				return true
			}
		}
	}
	return false
}

// SiblingOf reports whether other is in the node's sibling list.
func (n *Node) SiblingOf(other *Node) bool {
	for _, s := range n.Siblings {
		if s == other {
			return true
		}
	}
	return false
}

// Neighbors appends all adjacent nodes to dst and returns it. The order is
// parents, children, spouses, siblings; duplicates across lists are kept so
// callers doing traversal must track visited nodes themselves.
func (n *Node) Neighbors(dst []*Node) []*Node {
	dst = append(dst, n.Parents...)
	dst = append(dst, n.Children...)
	dst = append(dst, n.Spouses...)
	dst = append(dst, n.Siblings...)
	return dst
}
