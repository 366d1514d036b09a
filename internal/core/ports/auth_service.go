package ports

import (
	"context"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// AuthService issues sessions for portal accounts. Self-registration only
// creates CLIENT_VIEWER_PENDING accounts; elevated roles are seeded out of
// band.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
