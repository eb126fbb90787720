package layout

import (
	"slices"
	"strings"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// unit is an ordered run of blood relatives laid out side by side on one
// generation. Attached partners are not members; they ride along with their
// anchor at placement time without consuming unit width.
type unit struct {
	blood []*kin.Node
}

// parentSetKey returns the canonical key of a node's parent ID set. Nodes
// sharing the exact same non-empty key are siblings by descent even without
// an explicit sibling edge.
func parentSetKey(n *kin.Node) string {
	if len(n.Parents) == 0 {
		return ""
	}
	ids := make([]string, len(n.Parents))
	for i, p := range n.Parents {
		ids[i] = p.ID()
	}
	slices.Sort(ids)
	return strings.Join(ids, "|")
}

// clusterSiblings partitions candidates into sibling clusters. Two nodes
// join the same cluster when they share the exact same non-empty parent ID
// set or are connected by an explicit sibling edge within the candidate set.
// Cluster discovery order follows the candidates slice, which callers keep
// ID-sorted for determinism.
func clusterSiblings(candidates []*kin.Node) [][]*kin.Node {
	inSet := make(map[*kin.Node]bool, len(candidates))
	for _, n := range candidates {
		inSet[n] = true
	}

	byParents := make(map[string][]*kin.Node)
	for _, n := range candidates {
		if key := parentSetKey(n); key != "" {
			byParents[key] = append(byParents[key], n)
		}
	}

	var clusters [][]*kin.Node
	claimed := make(map[*kin.Node]bool, len(candidates))
	var stack []*kin.Node

	for _, start := range candidates {
		if claimed[start] {
			continue
		}
		var cluster []*kin.Node
		stack = append(stack[:0], start)
		claimed[start] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cluster = append(cluster, n)

			if key := parentSetKey(n); key != "" {
				for _, m := range byParents[key] {
					if !claimed[m] {
						claimed[m] = true
						stack = append(stack, m)
					}
				}
			}
			for _, s := range n.Siblings {
				if inSet[s] && !claimed[s] {
					claimed[s] = true
					stack = append(stack, s)
				}
			}
		}
		slices.SortFunc(cluster, CompareBirthMissingLast)
		clusters = append(clusters, cluster)
	}
	return clusters
}

// composeRootUnits determines the top-level family units of one group: the
// members with no parent inside the group, clustered into sibling runs.
//
// A parentless member with two or more children and no siblings or spouses
// of its own is deferred instead: its descendants form the real root-level
// sibling cluster, and the lone ancestor is centered above them after the
// main pass. Attached partners never root a unit of their own; they ride
// their anchor wherever it lands.
func (st *state) composeRootUnits(group []*kin.Node) (units []*unit, deferred []*kin.Node) {
	var roots []*kin.Node
	for _, n := range group {
		if len(n.Parents) > 0 || n.AttachedPartner {
			continue
		}
		if len(n.Siblings) == 0 && len(n.Spouses) == 0 {
			// Lone ancestors with a multi-child brood, and in-law parents
			// whose every child rides an anchor elsewhere, are centered
			// above their children after the main pass.
			if len(n.Children) >= 2 || (len(n.Children) > 0 && len(st.ownedChildren(n)) == 0) {
				deferred = append(deferred, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	if len(roots) == 0 && len(deferred) == 0 {
		// Relationship cycle left the group without a viable root: fall
		// back to the earliest-born member as sole root.
		fallback := slices.MinFunc(group, CompareBirthMissingFirst)
		roots = append(roots, fallback)
	}

	for _, cluster := range clusterSiblings(roots) {
		units = append(units, &unit{blood: cluster})
	}
	return units, deferred
}
