// Package memory is an in-process implementation of store.Store. It backs the
// test suites and STORE=memory development runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/store"
)

type snapshotter interface {
	snapshot() (restore func())
}

type txKey struct{}

// Store keeps every collection behind one mutex. WithTransaction holds that
// mutex for the whole callback and restores a snapshot if the callback fails.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	tables []snapshotter

	users         *users
	accounts      *balanceTable[models.Account, *models.Account]
	creditCards   *balanceTable[models.CreditCard, *models.CreditCard]
	categories    *table[models.Category, *models.Category]
	subcategories *table[models.Subcategory, *models.Subcategory]
	tags          *table[models.Tag, *models.Tag]
	txns          *table[models.Transaction, *models.Transaction]
	auditLogs     *table[models.AuditLog, *models.AuditLog]
	feedback      *table[models.Feedback, *models.Feedback]
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	s := &Store{now: time.Now}

	s.users = newUsers(s)
	s.accounts = newBalanceTable[models.Account](s)
	s.creditCards = newBalanceTable[models.CreditCard](s)
	s.categories = newTable[models.Category](s)
	s.subcategories = newTable[models.Subcategory](s)
	s.tags = newTable[models.Tag](s)
	s.txns = newTable[models.Transaction](s)
	s.auditLogs = newTable[models.AuditLog](s)
	s.feedback = newTable[models.Feedback](s)

	return s
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// lock acquires the store mutex unless ctx already runs inside this store's
// transaction, and returns the matching release func.
func (s *Store) lock(ctx context.Context) func() {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Users() store.UserRepository                             { return s.users }
func (s *Store) Accounts() store.BalanceRepository[models.Account]       { return s.accounts }
func (s *Store) CreditCards() store.BalanceRepository[models.CreditCard] { return s.creditCards }
func (s *Store) Categories() store.Repository[models.Category]           { return s.categories }
func (s *Store) Subcategories() store.Repository[models.Subcategory]     { return s.subcategories }
func (s *Store) Tags() store.Repository[models.Tag]                      { return s.tags }
func (s *Store) Transactions() store.Repository[models.Transaction]      { return s.txns }
func (s *Store) AuditLogs() store.Repository[models.AuditLog]            { return s.auditLogs }
func (s *Store) Feedback() store.Repository[models.Feedback]             { return s.feedback }

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restores := make([]func(), 0, len(s.tables))
	for _, t := range s.tables {
		restores = append(restores, t.snapshot())
	}

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}

	return nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }
