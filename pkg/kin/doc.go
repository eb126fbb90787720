// Package kin provides the domain model for genealogical data: persons,
// typed kinship edges, and the symmetric adjacency derived from them.
//
// # Overview
//
// Pedigraph renders a family dataset as a two-dimensional chart. This package
// owns the input side of that pipeline: the immutable [Person] and
// [KinshipEdge] snapshot types, the [Snapshot] serialization format used by
// the CLI, HTTP API, and stores, and the [Node] working records the layout
// engine positions.
//
// # Snapshot Contract
//
// The external data producer is responsible for reciprocal and auto-inferred
// edges (sibling edges among children, parent edges from a new spouse). This
// package does not perform that inference. It does, however, tolerate
// asymmetric input: [Build] applies every edge in both directions and
// de-duplicates, so a spouse edge recorded only as A→B still yields symmetric
// adjacency. The snapshot itself is never mutated.
//
// # Basic Usage
//
//	snap, err := kin.ReadSnapshotFile("family.json")
//	if err != nil { ... }
//	nodes, stats := kin.Build(snap.People, snap.Edges)
//
// Edges referencing unknown person IDs, self-referential edges, and edges
// with an unrecognized kind are dropped silently and counted in [BuildStats]
// as a data-quality signal. The engine must always produce a renderable
// layout from whatever data exists, so none of these are errors.
//
// # Lifecycle
//
// [Node] values are created fresh for every layout run and discarded once
// geometry has been read by the renderer. No node outlives one invocation;
// the engine is stateless across runs.
package kin
