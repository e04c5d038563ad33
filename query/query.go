// Package query builds filtered, paginated job listings. Predicates the
// store can evaluate (status, priority, type, technician, scheduled-date
// range) are pushed down; free-text search and radius filtering are applied
// after retrieval, since the store cannot express them natively.
package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fieldops-hq/fieldops/geo"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 20

// RadiusFilter keeps only jobs whose location lies within RadiusKm of
// Center, by great-circle distance.
type RadiusFilter struct {
	Center   geo.Point
	RadiusKm float64
}

// Filter combines store-side predicates with application-side refinement.
type Filter struct {
	job.Filter

	// Text keeps only jobs whose title, description, customer name, or
	// address fields contain the needle, case-insensitively. Applied after
	// retrieval.
	Text string

	// Radius restricts results by distance. Applied after retrieval.
	Radius *RadiusFilter
}

// Page is one slice of a filtered listing.
//
// HasMore means "more unfiltered candidates exist past this page", not
// "more matches exist": text and radius refinement run after retrieval, so
// an effective page may hold fewer than pageSize matches while later pages
// still produce more. Callers accumulate across pages using NextCursor.
type Page struct {
	Jobs    []*job.Job
	HasMore bool

	// NextCursor identifies the last unfiltered candidate examined. Pass it
	// to the next List call to continue the scan. If the referenced job is
	// deleted in the meantime, the scan silently restarts from the top.
	NextCursor id.JobID
}

// Engine executes job listings against a store.
type Engine struct {
	jobs   job.Store
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates a query engine over the given job store.
func New(jobs job.Store, opts ...Option) *Engine {
	e := &Engine{jobs: jobs, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// List returns one page of jobs matching f, newest first. The store is
// asked for pageSize+1 records so a further page is detected without a
// second round trip.
func (e *Engine) List(ctx context.Context, f Filter, pageSize int, cursor id.JobID) (*Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	records, err := e.jobs.ListJobs(ctx, f.Filter, pageSize+1, cursor)
	if err != nil {
		return nil, err
	}

	hasMore := len(records) > pageSize
	if hasMore {
		records = records[:pageSize]
	}

	next := id.Nil
	if len(records) > 0 {
		next = records[len(records)-1].ID
	}

	matched := records
	if f.Text != "" {
		matched = filterText(matched, f.Text)
	}
	if f.Radius != nil {
		matched = filterRadius(matched, f.Radius)
	}

	e.logger.Debug("job listing",
		"fetched", len(records),
		"matched", len(matched),
		"has_more", hasMore,
	)

	return &Page{Jobs: matched, HasMore: hasMore, NextCursor: next}, nil
}

// Search is a text-only listing over the whole job set.
func (e *Engine) Search(ctx context.Context, text string, pageSize int, cursor id.JobID) (*Page, error) {
	return e.List(ctx, Filter{Text: text}, pageSize, cursor)
}

func filterText(jobs []*job.Job, needle string) []*job.Job {
	needle = strings.ToLower(needle)
	out := make([]*job.Job, 0, len(jobs))
	for _, j := range jobs {
		if matchesText(j, needle) {
			out = append(out, j)
		}
	}
	return out
}

func matchesText(j *job.Job, needle string) bool {
	for _, hay := range []string{
		j.Title,
		j.Description,
		j.Customer.Name,
		j.Location.Address,
		j.Location.City,
	} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func filterRadius(jobs []*job.Job, rf *RadiusFilter) []*job.Job {
	out := make([]*job.Job, 0, len(jobs))
	for _, j := range jobs {
		p := geo.Point{Latitude: j.Location.Latitude, Longitude: j.Location.Longitude}
		if geo.DistanceKm(rf.Center, p) <= rf.RadiusKm {
			out = append(out, j)
		}
	}
	return out
}
