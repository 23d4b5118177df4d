package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/store"
)

// Auditor persists audit entries. A failed write is logged and swallowed so
// auditing never fails the request that triggered it.
type Auditor struct {
	store store.Store
	log   *zap.Logger
}

func NewAuditor(s store.Store, log *zap.Logger) *Auditor {
	return &Auditor{store: s, log: log}
}

func (a *Auditor) Record(ctx context.Context, entry *models.AuditLog) {
	if entry.UserID.IsZero() {
		a.log.Warn("audit entry without user", zap.String("action", string(entry.Action)), zap.String("entity", entry.Entity))
		return
	}

	// The entry is written outside any ledger transaction, so a rolled back
	// request still leaves its trace.
	if err := a.store.AuditLogs().Create(context.WithoutCancel(ctx), entry); err != nil {
		a.log.Error("record audit entry",
			zap.String("action", string(entry.Action)),
			zap.String("entity", entry.Entity),
			zap.String("entity_id", entry.EntityID),
			zap.String("user_id", entry.UserID.Hex()),
			zap.Error(err),
		)
	}
}

// List returns the user's audit trail, newest first unless q says otherwise.
func (a *Auditor) List(ctx context.Context, userID primitive.ObjectID, q store.Query) ([]models.AuditLog, int64, error) {
	return a.store.AuditLogs().List(ctx, userID, q)
}
