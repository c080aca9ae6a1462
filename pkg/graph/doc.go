// Package graph inspects the dependency graph formed by derived fields and
// the parent fields their formulas read from.
//
// Edges run from a derived field to each of its parents. The graph must stay
// acyclic for evaluation to terminate, so callers check a candidate parent
// set with WouldCycle before committing it, and recompute derived values in
// the order returned by TopologicalOrder.
//
// A parent id that does not belong to any field (a dangling reference) is a
// dead end: it never contributes to a cycle and is not reported as an error.
package graph
