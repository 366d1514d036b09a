package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

const collectionContracts = "contracts"

type ContractRepository struct {
	col *mongo.Collection
}

func NewContractRepository(db *mongo.Database) *ContractRepository {
	return &ContractRepository{col: db.Collection(collectionContracts)}
}

type contractDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ClientID      string             `bson:"client_id"`
	PackageType   string             `bson:"package_type"`
	Services      []string           `bson:"services"`
	TotalPrice    string             `bson:"total_price"`
	Currency      string             `bson:"currency"`
	PaymentStatus string             `bson:"payment_status"`
	Status        string             `bson:"status"`
	Reference     string             `bson:"reference"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *contractDoc) toDomain() (*domain.Contract, error) {
	price, err := decimal.NewFromString(d.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("contract %s: corrupt total_price %q: %w", d.ID.Hex(), d.TotalPrice, err)
	}
	return &domain.Contract{
		ID:            d.ID.Hex(),
		ClientID:      d.ClientID,
		PackageType:   d.PackageType,
		Services:      d.Services,
		TotalPrice:    price,
		Currency:      d.Currency,
		PaymentStatus: domain.PaymentStatus(d.PaymentStatus),
		Status:        domain.ContractStatus(d.Status),
		Reference:     d.Reference,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func (r *ContractRepository) Create(ctx context.Context, c *domain.Contract) error {
	doc := contractDoc{
		ClientID:      c.ClientID,
		PackageType:   c.PackageType,
		Services:      c.Services,
		TotalPrice:    c.TotalPrice.String(),
		Currency:      c.Currency,
		PaymentStatus: string(c.PaymentStatus),
		Status:        string(c.Status),
		Reference:     c.Reference,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *ContractRepository) FindByID(ctx context.Context, id string) (*domain.Contract, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrContractNotFound
	}

	var doc contractDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContractNotFound
		}
		return nil, fmt.Errorf("find contract: %w", err)
	}
	return doc.toDomain()
}

// AdvanceStatus performs a compare-and-set on the lifecycle status. A filter
// miss means another writer moved the contract first.
func (r *ContractRepository) AdvanceStatus(ctx context.Context, id string, from, to domain.ContractStatus, paymentStatus domain.PaymentStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrContractNotFound
	}

	filter := bson.M{"_id": oid, "status": string(from)}
	update := bson.M{"$set": bson.M{
		"status":         string(to),
		"payment_status": string(paymentStatus),
		"updated_at":     time.Now().UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("advance contract status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *ContractRepository) List(ctx context.Context, f ports.ListContractsFilter) ([]*domain.Contract, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Contract
	for cursor.Next(ctx) {
		var doc contractDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode contract: %w", err)
		}
		c, err := doc.toDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	return out, total, nil
}

// EnsureIndexes creates the contracts indexes.
func (r *ContractRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reference", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
