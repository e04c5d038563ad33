// Package fieldops provides the rules engine for a field-service workforce
// system: a job lifecycle with guarded status transitions, an atomic
// assignment workflow that checks technician eligibility, filtered and
// paginated job queries with text and radius refinement, recommendation
// scoring, and on-demand statistics.
//
// fieldops is designed as a library, not a service. Import it, configure a
// store backend, and call engine operations:
//
//	eng, err := engine.New(memory.New())
//	if err != nil {
//	    return err
//	}
//	created, err := eng.CreateJob(ctx, draft)
//
// # Architecture
//
// fieldops follows a composable store pattern where each subsystem (job,
// technician, assignment) defines its own store interface. A single backend
// implements all of them; store/memory serves tests and development,
// store/mongo is the production document store.
//
// The engine itself is stateless and re-entrant: every operation takes its
// full input and talks to the store per call. Concurrency control is
// delegated to the backend; the one hard requirement is that the assignment
// write is atomic, so of two concurrent assignments of the same pending job
// exactly one wins.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based,
// compile-time safe identifiers.
package fieldops
