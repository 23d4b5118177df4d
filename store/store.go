// Package store defines how users and their finance resources are persisted.
// Every user-owned lookup is scoped by user id; a document owned by someone else
// is reported as ErrNotFound.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/models"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("resource already exists")
	ErrConflict  = errors.New("concurrent update conflict")
	ErrInUse     = errors.New("resource is still referenced")
)

// Repository is the CRUD surface shared by every user-owned collection.
type Repository[T any] interface {
	Create(ctx context.Context, doc *T) error
	Get(ctx context.Context, userID, id primitive.ObjectID) (*T, error)
	List(ctx context.Context, userID primitive.ObjectID, q Query) ([]T, int64, error)
	Count(ctx context.Context, userID primitive.ObjectID, q Query) (int64, error)
	Update(ctx context.Context, doc *T) error
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// BalanceRepository is a Repository whose documents carry a balance.
type BalanceRepository[T any] interface {
	Repository[T]
	// AdjustBalance adds a signed delta to the stored balance and returns the
	// updated document. A zero delta performs no write.
	AdjustBalance(ctx context.Context, userID, id primitive.ObjectID, delta string) (*T, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Store interface {
	Users() UserRepository
	Accounts() BalanceRepository[models.Account]
	CreditCards() BalanceRepository[models.CreditCard]
	Categories() Repository[models.Category]
	Subcategories() Repository[models.Subcategory]
	Tags() Repository[models.Tag]
	Transactions() Repository[models.Transaction]
	AuditLogs() Repository[models.AuditLog]
	Feedback() Repository[models.Feedback]

	// WithTransaction runs fn atomically. Repository calls made with the ctx
	// handed to fn take part in the transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// MaxBalanceAttempts bounds the compare-and-set retries of AdjustBalance.
const MaxBalanceAttempts = 5

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultSort  = "created_at"
)

// Query narrows and pages a List or Count call.
type Query struct {
	Page  int
	Limit int
	Sort  string
	Asc   bool

	// Search matches SearchField case-insensitively as a substring.
	Search      string
	SearchField string

	// Filters are equality matches keyed by bson field name. Array fields match
	// when any element equals the value.
	Filters map[string]any

	// From and To bound the "date" field, both inclusive.
	From *time.Time
	To   *time.Time
}

// Normalized returns q with defaults applied and the limit clamped.
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	return q
}

// Skip is the number of documents before the requested page.
func (q Query) Skip() int64 {
	q = q.Normalized()
	return int64((q.Page - 1) * q.Limit)
}

// Where returns a copy of q with an extra equality filter.
func (q Query) Where(field string, value any) Query {
	filters := make(map[string]any, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[field] = value
	q.Filters = filters
	return q
}
