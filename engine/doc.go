// Package engine exposes the public operation surface of fieldops: job
// creation and updates, status transitions, assignment, listing and
// search, recommendations, and statistics. An Engine wires the validator,
// sanitizer, status machine, assignment service, and query engine over a
// single composite store; it holds no state of its own, so any number of
// engines can safely share one backend.
package engine
