package domain

import "time"

// NotificationType identifies the kind of message being sent.
type NotificationType string

const (
	NotificationPaymentConfirmed NotificationType = "PAYMENT_CONFIRMED"
)

// Notification is a fire-and-forget message addressed to a user. The payment
// subsystem only creates notifications; read-state is owned by the
// notification module.
type Notification struct {
	ID        string           `json:"id" bson:"_id,omitempty"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Type      NotificationType `json:"type" bson:"type"`
	Title     string           `json:"title" bson:"title"`
	Body      string           `json:"body" bson:"body"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
