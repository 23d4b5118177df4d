package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource is implemented by every document owned by a user.
type Resource interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
	GetUserID() primitive.ObjectID
	SetUserID(id primitive.ObjectID)
	Touch(now time.Time)
}

// Balanced is implemented by resources that carry a running balance.
type Balanced interface {
	GetBalance() string
	SetBalance(balance string)
}

// Base holds the fields shared by all user-owned documents.
type Base struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

func (b *Base) GetID() primitive.ObjectID       { return b.ID }
func (b *Base) SetID(id primitive.ObjectID)     { b.ID = id }
func (b *Base) GetUserID() primitive.ObjectID   { return b.UserID }
func (b *Base) SetUserID(id primitive.ObjectID) { b.UserID = id }

// Touch sets UpdatedAt, and CreatedAt on first save.
func (b *Base) Touch(now time.Time) {
	now = now.UTC().Truncate(time.Millisecond)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
