// Package store defines the composite persistence contract a fieldops
// backend implements: job, technician, and assignment persistence plus
// lifecycle operations. One backend satisfies all subsystem interfaces;
// store/memory serves tests and development, store/mongo is the document
// store used in production.
package store

import (
	"context"

	"github.com/fieldops-hq/fieldops/assignment"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/technician"
)

// Store is the full composite contract.
type Store interface {
	job.Store
	technician.Store
	assignment.Store

	// Migrate prepares backend structures such as indexes.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases resources the store owns.
	Close() error
}
