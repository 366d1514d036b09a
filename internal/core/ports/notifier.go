package ports

import (
	"context"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// NotificationDispatcher hands persisted notifications to the asynchronous
// delivery fan-out. Enqueueing never fails the caller; delivery errors are
// logged and swallowed downstream.
type NotificationDispatcher interface {
	Enqueue(n domain.Notification)
}

// NotificationSender is the narrow interface to the out-of-scope delivery
// collaborator (email, in-app push).
type NotificationSender interface {
	Send(ctx context.Context, n domain.Notification) error
}

// ReplayChecker is the advisory fast-path for webhook replays. Correctness
// does not depend on it; the conditional PENDING->PAID write does.
type ReplayChecker interface {
	Seen(ctx context.Context, reference string) (bool, error)
	Mark(ctx context.Context, reference string) error
}
