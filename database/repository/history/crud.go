package historyRepo

import (
	"context"
	"time"

	"smartsched/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new turn record and returns its ID.
func (r *mongoTurnRepo) Create(ctx context.Context, record models.TurnRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetBySessionID fetches all turn records for a session in chronological order.
func (r *mongoTurnRepo) GetBySessionID(ctx context.Context, sessionID string) ([]models.TurnRecord, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.TurnRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteBySessionID removes all turn records for a session.
func (r *mongoTurnRepo) DeleteBySessionID(ctx context.Context, sessionID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}
