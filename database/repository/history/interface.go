package historyRepo

import (
	"context"

	"smartsched/database"
	"smartsched/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type TurnHistoryRepository interface {
	Create(ctx context.Context, record models.TurnRecord) (string, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]models.TurnRecord, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

type mongoTurnRepo struct {
	coll *mongo.Collection
}

// NewMongoTurnRepo returns a new TurnHistoryRepository instance using MongoDB.
func NewMongoTurnRepo() TurnHistoryRepository {
	db := database.MongoClient.Database("smartsched")
	return &mongoTurnRepo{
		coll: db.Collection("turn_history"),
	}
}
