// Package notify holds notification delivery backends. The only backend
// shipped today writes structured log lines; email/push providers plug in
// behind the same ports.NotificationSender interface.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// LogSender emits each notification as a structured log line. Rows are
// already persisted by the confirmation engine; in-app readers query the
// notifications collection directly.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.log.Info().
		Str("user_id", n.UserID).
		Str("type", string(n.Type)).
		Str("title", n.Title).
		Msg("notification delivered")
	return nil
}
