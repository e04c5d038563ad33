package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
)

// CreateJob persists a new job.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	_, err := s.db.Collection(colJobs).InsertOne(ctx, toJobModel(j))
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fieldops.ErrJobAlreadyExists
		}
		return fmt.Errorf("fieldops/mongo: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	var m jobModel
	err := s.db.Collection(colJobs).FindOne(ctx, bson.M{"_id": jobID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fieldops.ErrJobNotFound
		}
		return nil, fmt.Errorf("fieldops/mongo: get job: %w", err)
	}
	return fromJobModel(&m)
}

// UpdateJob persists changes to an existing job.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	m := toJobModel(j)
	m.UpdatedAt = now()
	res, err := s.db.Collection(colJobs).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("fieldops/mongo: update job: %w", err)
	}
	if res.MatchedCount == 0 {
		return fieldops.ErrJobNotFound
	}
	return nil
}

// DeleteJob removes a job by ID.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	res, err := s.db.Collection(colJobs).DeleteOne(ctx, bson.M{"_id": jobID.String()})
	if err != nil {
		return fmt.Errorf("fieldops/mongo: delete job: %w", err)
	}
	if res.DeletedCount == 0 {
		return fieldops.ErrJobNotFound
	}
	return nil
}

// ListJobs returns jobs matching f ordered by creation time descending.
// A cursor whose record has been deleted restarts the scan from the top.
func (s *Store) ListJobs(ctx context.Context, f job.Filter, limit int, afterID id.JobID) ([]*job.Job, error) {
	filter := listFilter(f)

	if !afterID.IsNil() {
		// Re-fetch the cursor record to establish the start-after position.
		var cur jobModel
		err := s.db.Collection(colJobs).FindOne(ctx, bson.M{"_id": afterID.String()}).Decode(&cur)
		switch {
		case err == nil:
			filter["$or"] = bson.A{
				bson.M{"created_at": bson.M{"$lt": cur.CreatedAt}},
				bson.M{"created_at": cur.CreatedAt, "_id": bson.M{"$lt": cur.ID}},
			}
		case isNoDocuments(err):
			// Cursor record is gone; restart from the top.
		default:
			return nil, fmt.Errorf("fieldops/mongo: resolve cursor: %w", err)
		}
	}

	opts := listSort()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(colJobs).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("fieldops/mongo: list jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var models []jobModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("fieldops/mongo: list jobs decode: %w", err)
	}

	out := make([]*job.Job, 0, len(models))
	for i := range models {
		j, convErr := fromJobModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, j)
	}
	return out, nil
}

// listFilter translates the pushdown predicates into a Mongo filter.
func listFilter(f job.Filter) bson.M {
	filter := bson.M{}

	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": statusStrings(f.Statuses)}
	}
	if len(f.Priorities) > 0 {
		vals := make([]string, len(f.Priorities))
		for i, p := range f.Priorities {
			vals[i] = string(p)
		}
		filter["priority"] = bson.M{"$in": vals}
	}
	if len(f.Types) > 0 {
		vals := make([]string, len(f.Types))
		for i, t := range f.Types {
			vals[i] = string(t)
		}
		filter["type"] = bson.M{"$in": vals}
	}
	if !f.TechnicianID.IsNil() {
		filter["assigned_technician_id"] = f.TechnicianID.String()
	}

	scheduled := bson.M{}
	if !f.ScheduledFrom.IsZero() {
		scheduled["$gte"] = f.ScheduledFrom
	}
	if !f.ScheduledTo.IsZero() {
		scheduled["$lte"] = f.ScheduledTo
	}
	if len(scheduled) > 0 {
		filter["scheduled_date"] = scheduled
	}

	return filter
}

func statusStrings(set []job.Status) []string {
	vals := make([]string, len(set))
	for i, s := range set {
		vals[i] = string(s)
	}
	return vals
}
