package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

const collectionClients = "clients"

type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collectionClients)}
}

type clientDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	CompanyName  string             `bson:"company_name"`
	ContactEmail string             `bson:"contact_email"`
	LinkedUserID string             `bson:"linked_user_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *clientDoc) toDomain() *domain.Client {
	return &domain.Client{
		ID:           d.ID.Hex(),
		CompanyName:  d.CompanyName,
		ContactEmail: d.ContactEmail,
		LinkedUserID: d.LinkedUserID,
		CreatedAt:    d.CreatedAt,
	}
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNoClient
	}

	var doc clientDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoClient
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ClientRepository) FindByLinkedUser(ctx context.Context, userID string) (*domain.Client, error) {
	var doc clientDoc
	if err := r.col.FindOne(ctx, bson.M{"linked_user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoClient
		}
		return nil, fmt.Errorf("find client by user: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the clients indexes. A user account links to at most
// one client, enforced by the sparse unique index.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "linked_user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
