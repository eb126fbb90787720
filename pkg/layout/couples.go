package layout

import (
	"slices"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// resolveCouples classifies every spouse adjacency as a genuine couple bond
// or a false positive, marking the attached partner of each bond.
//
// A person is a blood relative when they carry at least one parent, child,
// or sibling edge, extended one step to siblings of blood relatives. For
// every unordered spouse pair, sibling status wins over a coincidental
// spouse edge: no couple is formed between siblings, which keeps a data
// error from rendering as an incestuous marriage. Otherwise the non-blood
// side becomes the attached partner; when both sides are blood relatives (a
// legitimate cross-lineage marriage) the later generation attaches to the
// earlier one, falling back to ID order while generations are still unset.
//
// Each pair is considered exactly once via a seen set keyed by the sorted ID
// pair.
func (st *state) resolveCouples() {
	blood := make(map[*kin.Node]bool, len(st.nodes))
	for _, id := range st.ids {
		n := st.nodes[id]
		if n.HasBloodTies() {
			blood[n] = true
		}
	}
	// One transitive extension: a sibling of a blood relative is a blood
	// relative too.
	for _, id := range st.ids {
		n := st.nodes[id]
		if !blood[n] {
			continue
		}
		for _, s := range n.Siblings {
			blood[s] = true
		}
	}

	seen := make(map[[2]string]bool)
	for _, id := range st.ids {
		a := st.nodes[id]
		spouses := slices.Clone(a.Spouses)
		slices.SortFunc(spouses, CompareByID)

		for _, b := range spouses {
			key := pairKey(a.ID(), b.ID())
			if seen[key] {
				continue
			}
			seen[key] = true

			// Sibling status takes precedence over any coincidental
			// spouse edge.
			if a.SiblingOf(b) {
				continue
			}

			anchor, partner := chooseAnchor(a, b, blood)
			if partner.AttachedPartner {
				// Already attached to an earlier-resolved anchor;
				// historical partners are handled independently, not
				// merged.
				continue
			}
			partner.AttachedPartner = true
			partner.Anchor = anchor
			st.partners[anchor] = append(st.partners[anchor], partner)
		}
	}

	for _, list := range st.partners {
		slices.SortFunc(list, CompareByID)
	}
}

// chooseAnchor decides which side of a spouse pair is the blood anchor and
// which rides along as the attached partner.
func chooseAnchor(a, b *kin.Node, blood map[*kin.Node]bool) (anchor, partner *kin.Node) {
	switch {
	case blood[a] && !blood[b]:
		return a, b
	case blood[b] && !blood[a]:
		return b, a
	}
	// Both blood relatives (e.g. cousins marrying), or neither: the later
	// generation attaches to the earlier one. Before generation assignment
	// both sides sit at the zero default, so ID order decides.
	if a.Generation != b.Generation {
		if a.Generation < b.Generation {
			return a, b
		}
		return b, a
	}
	if CompareByID(a, b) <= 0 {
		return a, b
	}
	return b, a
}

// pairKey builds the canonical unordered key for a person pair.
func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}
