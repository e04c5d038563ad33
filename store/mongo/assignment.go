package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/assignment"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
)

// AssignJob atomically claims a pending job and appends the assignment
// record inside one transaction. The status-guarded update means only one
// of two concurrent assignments can match; the loser observes
// fieldops.ErrInvalidState. On deployments without transaction support the
// whole operation fails rather than partially applying.
func (s *Store) AssignJob(ctx context.Context, a *assignment.Assignment) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", fieldops.ErrTransactionUnsupported, err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		res := s.db.Collection(colJobs).FindOneAndUpdate(ctx,
			bson.M{
				"_id":    a.JobID.String(),
				"status": string(job.StatusPending),
			},
			bson.M{"$set": bson.M{
				"status":                 string(job.StatusAssigned),
				"assigned_technician_id": a.TechnicianID.String(),
				"assigned_by":            a.AssignedBy,
				"assigned_at":            a.AssignedAt,
				"updated_at":             now(),
			}},
		)
		if err := res.Err(); err != nil {
			if !isNoDocuments(err) {
				return nil, fmt.Errorf("fieldops/mongo: assign job: %w", err)
			}
			// No pending match: either the job is gone or a racer won.
			count, cErr := s.db.Collection(colJobs).CountDocuments(ctx, bson.M{"_id": a.JobID.String()})
			if cErr != nil {
				return nil, fmt.Errorf("fieldops/mongo: assign job lookup: %w", cErr)
			}
			if count == 0 {
				return nil, fieldops.ErrJobNotFound
			}
			return nil, fieldops.ErrInvalidState
		}

		if _, err := s.db.Collection(colAssignments).InsertOne(ctx, toAssignmentModel(a)); err != nil {
			return nil, fmt.Errorf("fieldops/mongo: insert assignment: %w", err)
		}
		return nil, nil
	})
	return err
}

// GetAssignment retrieves an assignment record by ID.
func (s *Store) GetAssignment(ctx context.Context, assignmentID id.AssignmentID) (*assignment.Assignment, error) {
	var m assignmentModel
	err := s.db.Collection(colAssignments).FindOne(ctx, bson.M{"_id": assignmentID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fieldops.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("fieldops/mongo: get assignment: %w", err)
	}
	return fromAssignmentModel(&m)
}

// ListAssignmentsByJob returns a job's assignment records ordered by
// assignment time ascending.
func (s *Store) ListAssignmentsByJob(ctx context.Context, jobID id.JobID) ([]*assignment.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: 1}})
	cursor, err := s.db.Collection(colAssignments).Find(ctx, bson.M{"job_id": jobID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("fieldops/mongo: list assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var models []assignmentModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("fieldops/mongo: list assignments decode: %w", err)
	}

	out := make([]*assignment.Assignment, 0, len(models))
	for i := range models {
		a, convErr := fromAssignmentModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, a)
	}
	return out, nil
}
