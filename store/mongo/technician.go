package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/technician"
)

// PutTechnician creates or replaces a technician record.
func (s *Store) PutTechnician(ctx context.Context, t *technician.Technician) error {
	m := toTechnicianModel(t)
	m.UpdatedAt = now()
	_, err := s.db.Collection(colTechnicians).ReplaceOne(ctx,
		bson.M{"_id": m.ID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("fieldops/mongo: put technician: %w", err)
	}
	return nil
}

// GetTechnician retrieves a technician by ID.
func (s *Store) GetTechnician(ctx context.Context, techID id.TechnicianID) (*technician.Technician, error) {
	var m technicianModel
	err := s.db.Collection(colTechnicians).FindOne(ctx, bson.M{"_id": techID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fieldops.ErrTechnicianNotFound
		}
		return nil, fmt.Errorf("fieldops/mongo: get technician: %w", err)
	}
	return fromTechnicianModel(&m)
}

// ListTechnicians returns all technicians ordered by name.
func (s *Store) ListTechnicians(ctx context.Context) ([]*technician.Technician, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(colTechnicians).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("fieldops/mongo: list technicians: %w", err)
	}
	defer cursor.Close(ctx)

	var models []technicianModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("fieldops/mongo: list technicians decode: %w", err)
	}

	out := make([]*technician.Technician, 0, len(models))
	for i := range models {
		t, convErr := fromTechnicianModel(&models[i])
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, t)
	}
	return out, nil
}
