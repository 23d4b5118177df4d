// Package events publishes ledger changes for other services to consume.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Kind string

const (
	TransactionCreated Kind = "transaction.created"
	TransactionUpdated Kind = "transaction.updated"
	TransactionDeleted Kind = "transaction.deleted"
)

// Event describes one balance-affecting change.
type Event struct {
	Kind          Kind               `json:"kind"`
	TransactionID primitive.ObjectID `json:"transaction_id"`
	UserID        primitive.ObjectID `json:"user_id"`
	OwnerID       primitive.ObjectID `json:"owner_id"`
	Source        string             `json:"source"`
	Delta         string             `json:"delta"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// Publisher delivers events. Implementations log failures instead of
// returning them so a broker outage never fails a request.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Conn is the subset of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

type NatsPublisher struct {
	conn   Conn
	prefix string
	log    *zap.Logger
}

func NewNatsPublisher(conn Conn, prefix string, log *zap.Logger) *NatsPublisher {
	return &NatsPublisher{conn: conn, prefix: prefix, log: log}
}

// Subject returns the subject an event kind is published on.
func (p *NatsPublisher) Subject(kind Kind) string {
	if p.prefix == "" {
		return string(kind)
	}
	return p.prefix + "." + string(kind)
}

func (p *NatsPublisher) Publish(_ context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		p.log.Error("encode event", zap.String("kind", string(e.Kind)), zap.Error(err))
		return
	}

	subject := p.Subject(e.Kind)
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn("publish event",
			zap.String("subject", subject),
			zap.String("transaction_id", e.TransactionID.Hex()),
			zap.Error(err),
		)
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
