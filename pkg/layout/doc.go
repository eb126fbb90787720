// Package layout transforms a flat family snapshot into per-person
// chart geometry: a generation-consistent vertical level and a horizontal
// position that keeps siblings grouped, spouses paired, and disjoint
// branches separated without overlap.
//
// # Pipeline
//
// [Build] runs seven stages over invocation-scoped state, strictly
// downstream:
//
//  1. Adjacency derivation (pkg/kin): symmetric, de-duplicated relation
//     lists from whatever edges the snapshot carries.
//  2. Couple resolution: every spouse adjacency becomes a couple unit with a
//     blood anchor and an attached partner, or is rejected when a sibling
//     edge contradicts it.
//  3. Generation assignment: connected family groups are discovered, then a
//     constrained breadth-first propagation levels each group from a
//     deterministic seed.
//  4. Family unit composition: per generation, blood siblings cluster into
//     ordered runs with their partners riding along.
//  5. Subtree layout: bottom-up widths, top-down x centers, with spacing
//     that scales with descendant count and spouse presence.
//  6. Side separation: with a focal person designated, the maternal and
//     paternal lineages are pushed apart as rigid couple units.
//  7. Step-family placement: groups disconnected from the focal person are
//     laned beyond the main extent.
//
// Only stages 6 and 7 read the focal person; both are no-ops without one.
//
// # Guarantees
//
// Within one family group, every parent→child edge spans exactly one
// generation step, sibling clusters and resolved couples share a
// generation, and two same-generation cards overlap only when they form a
// couple. Identical input produces identical geometry: every map iteration
// goes through sorted IDs and every heuristic tiebreak ends in an ID
// comparison (see compare.go for the named comparators).
//
// # Error Policy
//
// Nothing in the engine is fatal. Data-quality issues (unknown endpoints,
// self-referential edges, sibling/spouse contradictions) resolve through
// silent precedence rules; a relationship cycle stops propagating once all
// reachable nodes are visited. The engine always produces a renderable
// layout, possibly with unintuitive geometry for malformed input.
//
// # Concurrency
//
// The engine is synchronous and pure: one call consumes one snapshot and
// holds no state across calls, so it is safe to re-run on every data change
// and to run concurrently from multiple goroutines on different (or the
// same) snapshots.
package layout
