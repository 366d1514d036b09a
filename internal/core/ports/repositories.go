package ports

import (
	"context"
	"time"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// PaymentRepository defines persistence operations for payments. The
// reference column is enforced unique by the storage layer; it is the
// idempotency key for all confirmation events.
type PaymentRepository interface {
	// Create inserts a PENDING payment. Returns domain.ErrDuplicateReference
	// when the reference already exists.
	Create(ctx context.Context, p *domain.Payment) error
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	// MarkPaidIfPending performs the single conditional write
	// (reference == reference AND status == PENDING) -> PAID and returns the
	// updated payment. When no pending payment matched — another caller won
	// the race or the payment is terminal — it returns
	// domain.ErrNoPendingPayment and writes nothing.
	MarkPaidIfPending(ctx context.Context, reference string, paidAt time.Time, channel string, rawPayload []byte) (*domain.Payment, error)
	// MarkFailedIfPending flips PENDING -> FAILED; a no-op returning
	// domain.ErrNoPendingPayment when the payment is not pending.
	MarkFailedIfPending(ctx context.Context, reference string) error
	// LinkContract attaches a reconstructed contract to a payment.
	LinkContract(ctx context.Context, paymentID, contractID string) error
}

// ContractRepository defines persistence operations for contracts.
type ContractRepository interface {
	// Create inserts the contract and fills in its generated ID.
	Create(ctx context.Context, c *domain.Contract) error
	FindByID(ctx context.Context, id string) (*domain.Contract, error)
	// AdvanceStatus conditionally moves a contract from one status to
	// another, also mirroring the payment status. Returns
	// domain.ErrInvalidTransition when the contract was not in the expected
	// from status.
	AdvanceStatus(ctx context.Context, id string, from, to domain.ContractStatus, paymentStatus domain.PaymentStatus) error
	List(ctx context.Context, filter ListContractsFilter) ([]*domain.Contract, int64, error)
}

// ListContractsFilter carries query parameters for listing contracts.
// ClientID is enforced by the service layer for client-scoped roles.
type ListContractsFilter struct {
	ClientID string // empty = no filter (admin); non-empty = scoped to client
	Status   string // optional: filter by contract status
	Page     int    // 1-based
	Limit    int    // capped by the service
}

// ClientRepository resolves billable organizations. Both lookups return
// domain.ErrNoClient when no client matches.
type ClientRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	// FindByLinkedUser returns the client whose portal account is userID,
	// or domain.ErrNoClient when the user represents no client.
	FindByLinkedUser(ctx context.Context, userID string) (*domain.Client, error)
}

// UserRepository defines persistence for user accounts and the narrow role
// promotion interface the payment pipeline relies on.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// PromoteRole conditionally moves a user from one role to another.
	// Returns false (and no error) when the user is not currently in the
	// from role; promotion is never retried or forced.
	PromoteRole(ctx context.Context, userID string, from, to domain.Role) (bool, error)
	FindActiveByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}

// NotificationRepository persists fire-and-forget notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
}

// AuditRepository appends to the write-once audit trail.
type AuditRepository interface {
	Record(ctx context.Context, e *domain.AuditEntry) error
}

// TxRunner executes fn within one durable transaction scope so that a crash
// mid-sequence cannot leave a payment PAID with its contract still awaiting
// payment. Repository calls made with the ctx passed to fn join the
// transaction.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
