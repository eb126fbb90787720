package layout

import (
	"strings"
	"time"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// The ordering and tie-break rules in this file are empirically tuned
// heuristics, kept as named comparators so their policies can be revisited
// without touching the traversal logic that sorts with them.

// birthOrSentinel returns the birth date, substituting sentinel when the
// date is missing. Missing dates must still produce a deterministic order,
// so callers pick the sentinel that pushes undated people where they want
// them (earliest possible for seed selection, latest possible for
// left-to-right unit ordering).
func birthOrSentinel(n *kin.Node, sentinel time.Time) time.Time {
	if n.Person.Born == nil {
		return sentinel
	}
	return *n.Person.Born
}

var (
	sentinelEarliest = time.Time{}
	sentinelLatest   = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// CompareByID orders nodes by person ID. The final tiebreak everywhere,
// guaranteeing run-to-run determinism.
func CompareByID(a, b *kin.Node) int {
	return strings.Compare(a.ID(), b.ID())
}

// CompareBirthMissingFirst orders by ascending birth date with missing dates
// sorting as the earliest possible date. Used for generation seed selection,
// where an undated founder should still win over dated descendants.
func CompareBirthMissingFirst(a, b *kin.Node) int {
	ba, bb := birthOrSentinel(a, sentinelEarliest), birthOrSentinel(b, sentinelEarliest)
	if c := ba.Compare(bb); c != 0 {
		return c
	}
	return CompareByID(a, b)
}

// CompareBirthMissingLast orders by ascending birth date with missing dates
// sorting last. Used for left-to-right ordering of blood relatives inside a
// family unit, which keeps a stable, human-plausible eldest-first order.
func CompareBirthMissingLast(a, b *kin.Node) int {
	ba, bb := birthOrSentinel(a, sentinelLatest), birthOrSentinel(b, sentinelLatest)
	if c := ba.Compare(bb); c != 0 {
		return c
	}
	return CompareByID(a, b)
}

// unitMemberOrder orders the blood members of a family unit for placement:
// members with at least one spouse are pushed left, then narrower subtrees
// go left to concentrate connector crossings on one side, then birth date,
// then ID.
func unitMemberOrder(width func(*kin.Node) float64) func(a, b *kin.Node) int {
	return func(a, b *kin.Node) int {
		sa, sb := len(a.Spouses) > 0, len(b.Spouses) > 0
		if sa != sb {
			if sa {
				return -1
			}
			return 1
		}
		wa, wb := width(a), width(b)
		if wa != wb {
			if wa < wb {
				return -1
			}
			return 1
		}
		return CompareBirthMissingLast(a, b)
	}
}

// compareParentSide decides which of the focal person's two parents goes to
// the left (maternal) side. Priority order: explicit gender (female left,
// male right), then earlier birth date left, then name, then ID as last
// resort. Returns a negative value when a belongs left of b.
func compareParentSide(a, b *kin.Node) int {
	ga, gb := a.Person.Gender, b.Person.Gender
	if ga != gb {
		switch {
		case ga == kin.GenderFemale:
			return -1
		case gb == kin.GenderFemale:
			return 1
		case ga == kin.GenderMale:
			return 1
		case gb == kin.GenderMale:
			return -1
		}
	}
	ba, bb := birthOrSentinel(a, sentinelLatest), birthOrSentinel(b, sentinelLatest)
	if c := ba.Compare(bb); c != 0 {
		return c
	}
	if c := strings.Compare(a.Person.DisplayName(), b.Person.DisplayName()); c != 0 {
		return c
	}
	return CompareByID(a, b)
}
