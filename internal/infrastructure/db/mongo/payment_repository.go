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
)

const collectionPayments = "payments"

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(collectionPayments)}
}

// paymentDoc is the persisted shape. Amounts are stored as decimal strings;
// float64 would corrupt money.
type paymentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ContractID string             `bson:"contract_id,omitempty"`
	UserID     string             `bson:"user_id,omitempty"`
	Amount     string             `bson:"amount"`
	Currency   string             `bson:"currency"`
	Reference  string             `bson:"reference"`
	Status     string             `bson:"status"`
	Channel    string             `bson:"channel,omitempty"`
	PaidAt     *time.Time         `bson:"paid_at,omitempty"`
	RawPayload []byte             `bson:"raw_payload,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func (d *paymentDoc) toDomain() (*domain.Payment, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("payment %s: corrupt amount %q: %w", d.ID.Hex(), d.Amount, err)
	}
	return &domain.Payment{
		ID:         d.ID.Hex(),
		ContractID: d.ContractID,
		UserID:     d.UserID,
		Amount:     amount,
		Currency:   d.Currency,
		Reference:  d.Reference,
		Status:     domain.PaymentStatus(d.Status),
		Channel:    d.Channel,
		PaidAt:     d.PaidAt,
		RawPayload: d.RawPayload,
		CreatedAt:  d.CreatedAt,
	}, nil
}

// Create inserts a new pending payment. The unique reference index turns a
// collision into domain.ErrDuplicateReference.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := paymentDoc{
		ContractID: p.ContractID,
		UserID:     p.UserID,
		Amount:     p.Amount.String(),
		Currency:   p.Currency,
		Reference:  p.Reference,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc paymentDoc
	if err := r.col.FindOne(ctx, bson.M{"reference": reference}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return doc.toDomain()
}

// MarkPaidIfPending is the single conditional write behind the idempotency
// guarantee: the filter matches only while the payment is still PENDING, so
// exactly one concurrent caller ever sees a document.
func (r *PaymentRepository) MarkPaidIfPending(ctx context.Context, reference string, paidAt time.Time, channel string, rawPayload []byte) (*domain.Payment, error) {
	filter := bson.M{"reference": reference, "status": string(domain.PaymentPending)}
	update := bson.M{"$set": bson.M{
		"status":      string(domain.PaymentPaid),
		"channel":     channel,
		"paid_at":     paidAt.UTC(),
		"raw_payload": rawPayload,
	}}

	var doc paymentDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoPendingPayment
		}
		return nil, fmt.Errorf("mark payment paid: %w", err)
	}
	return doc.toDomain()
}

// MarkFailedIfPending flips a still-pending payment to FAILED. Terminal
// payments are never touched.
func (r *PaymentRepository) MarkFailedIfPending(ctx context.Context, reference string) error {
	filter := bson.M{"reference": reference, "status": string(domain.PaymentPending)}
	update := bson.M{"$set": bson.M{"status": string(domain.PaymentFailed)}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoPendingPayment
	}
	return nil
}

// LinkContract attaches a reconstructed contract to an orphaned payment.
func (r *PaymentRepository) LinkContract(ctx context.Context, paymentID, contractID string) error {
	oid, err := primitive.ObjectIDFromHex(paymentID)
	if err != nil {
		return domain.ErrPaymentNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"contract_id": contractID}})
	if err != nil {
		return fmt.Errorf("link contract: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// EnsureIndexes creates the payments indexes. The unique reference index is
// load-bearing: it is what makes the gateway reference a safe idempotency key.
func (r *PaymentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
