// Package job defines the field-service job model, its lifecycle status
// machine, and the persistence contract jobs are stored through.
//
// A job is a unit of field work: a customer, a location, a schedule, skill
// and equipment requirements, and a lifecycle status. Jobs always start
// pending and move through the guarded transition table in status.go;
// terminal states (completed, cancelled) accept no further transitions.
//
// The Store interface is implemented by the backends under store/. Listing
// is ordered by creation time descending and paginates with an after-ID
// cursor; a cursor that no longer resolves restarts the scan from the top.
package job
