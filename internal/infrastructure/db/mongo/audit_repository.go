package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

const collectionAuditLog = "audit_log"

// AuditRepository appends to the write-once audit_log collection. There are
// deliberately no update or delete operations.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuditLog)}
}

func (r *AuditRepository) Record(ctx context.Context, e *domain.AuditEntry) error {
	doc := bson.M{
		"actor_id":    e.ActorID,
		"action":      e.Action,
		"entity_type": e.EntityType,
		"entity_id":   e.EntityID,
		"created_at":  e.CreatedAt,
	}
	if len(e.Metadata) > 0 {
		doc["metadata"] = e.Metadata
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// EnsureIndexes creates the audit_log indexes.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
