package domain

import "time"

// Client is a billable organization. LinkedUserID is the portal account
// acting on its behalf; a user account is linked to at most one client.
type Client struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	CompanyName  string    `json:"company_name" bson:"company_name"`
	ContactEmail string    `json:"contact_email" bson:"contact_email"`
	LinkedUserID string    `json:"linked_user_id,omitempty" bson:"linked_user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
