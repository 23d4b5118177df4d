package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/events"
	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
	"github.com/UmangSachdeva/fintrack/store"
)

// Ledger records transactions and keeps the owning account or credit card
// balance in step. Every write runs inside one store transaction.
type Ledger struct {
	store  store.Store
	events events.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewLedger(s store.Store, pub events.Publisher, log *zap.Logger) *Ledger {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Ledger{store: s, events: pub, log: log, now: time.Now}
}

// TransactionInput is the full set of fields for a new transaction.
type TransactionInput struct {
	Description   string
	Amount        any
	Type          money.TransactionType
	Source        money.TransactionSource
	AccountID     *primitive.ObjectID
	CreditCardID  *primitive.ObjectID
	CategoryID    *primitive.ObjectID
	SubcategoryID *primitive.ObjectID
	TagIDs        []primitive.ObjectID
	Date          time.Time
	Notes         string
}

// TransactionPatch changes only the non-nil fields. ClearCategory and
// ClearSubcategory remove the reference and take precedence over a new id.
type TransactionPatch struct {
	Description      *string
	Amount           any
	Type             *money.TransactionType
	Source           *money.TransactionSource
	AccountID        *primitive.ObjectID
	CreditCardID     *primitive.ObjectID
	CategoryID       *primitive.ObjectID
	SubcategoryID    *primitive.ObjectID
	ClearCategory    bool
	ClearSubcategory bool
	TagIDs           *[]primitive.ObjectID
	Date             *time.Time
	Notes            *string
}

func (p TransactionPatch) apply(txn *models.Transaction) error {
	if p.Description != nil {
		txn.Description = *p.Description
	}
	if p.Amount != nil {
		if text, ok := p.Amount.(string); ok && strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: empty amount", money.ErrInvalidMonetaryAmount)
		}
		amount, err := money.Format(p.Amount)
		if err != nil {
			return err
		}
		txn.Amount = amount
	}
	if p.Type != nil {
		txn.Type = *p.Type
	}
	if p.Source != nil {
		txn.Source = *p.Source
	}
	if p.AccountID != nil {
		txn.AccountID = p.AccountID
	}
	if p.CreditCardID != nil {
		txn.CreditCardID = p.CreditCardID
	}
	switch {
	case p.ClearCategory:
		txn.CategoryID = nil
		txn.SubcategoryID = nil
	case p.CategoryID != nil:
		if txn.CategoryID == nil || *txn.CategoryID != *p.CategoryID {
			txn.SubcategoryID = nil
		}
		txn.CategoryID = p.CategoryID
	}
	switch {
	case p.ClearSubcategory:
		txn.SubcategoryID = nil
	case p.SubcategoryID != nil:
		txn.SubcategoryID = p.SubcategoryID
	}
	if p.TagIDs != nil {
		txn.TagIDs = *p.TagIDs
	}
	if p.Date != nil {
		txn.Date = p.Date.UTC().Truncate(time.Millisecond)
	}
	if p.Notes != nil {
		txn.Notes = *p.Notes
	}
	return nil
}

func (l *Ledger) CreateTransaction(ctx context.Context, userID primitive.ObjectID, in TransactionInput) (*models.Transaction, error) {
	amount, err := money.Format(in.Amount)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		Description:   in.Description,
		Amount:        amount,
		Type:          in.Type,
		Source:        in.Source,
		AccountID:     in.AccountID,
		CreditCardID:  in.CreditCardID,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		TagIDs:        in.TagIDs,
		Date:          in.Date.UTC().Truncate(time.Millisecond),
		Notes:         in.Notes,
	}
	txn.UserID = userID
	if txn.Date.IsZero() {
		txn.Date = l.now().UTC().Truncate(time.Millisecond)
	}

	var delta string
	err = l.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := l.checkReferences(ctx, txn); err != nil {
			return err
		}

		var err error
		if delta, err = txn.Delta(); err != nil {
			return err
		}

		if err := l.store.Transactions().Create(ctx, txn); err != nil {
			return err
		}
		return l.adjust(ctx, txn, delta)
	})
	if err != nil {
		return nil, err
	}

	l.publish(ctx, events.TransactionCreated, txn, delta)
	return txn, nil
}

// UpdateTransaction reverses the old balance effect and applies the new one,
// which may land on a different account or card.
func (l *Ledger) UpdateTransaction(ctx context.Context, userID, id primitive.ObjectID, patch TransactionPatch) (*models.Transaction, error) {
	var (
		updated models.Transaction
		delta   string
	)

	err := l.store.WithTransaction(ctx, func(ctx context.Context) error {
		old, err := l.store.Transactions().Get(ctx, userID, id)
		if err != nil {
			return err
		}
		oldDelta, err := old.Delta()
		if err != nil {
			return err
		}

		updated = *old
		if err := patch.apply(&updated); err != nil {
			return err
		}
		if err := l.checkReferences(ctx, &updated); err != nil {
			return err
		}
		if delta, err = updated.Delta(); err != nil {
			return err
		}

		if err := l.adjust(ctx, old, money.Invert(oldDelta)); err != nil {
			return err
		}
		if err := l.adjust(ctx, &updated, delta); err != nil {
			return err
		}
		return l.store.Transactions().Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	l.publish(ctx, events.TransactionUpdated, &updated, delta)
	return &updated, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, userID, id primitive.ObjectID) error {
	var (
		txn     *models.Transaction
		reverse string
	)

	err := l.store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if txn, err = l.store.Transactions().Get(ctx, userID, id); err != nil {
			return err
		}
		delta, err := txn.Delta()
		if err != nil {
			return err
		}

		reverse = money.Invert(delta)
		if err := l.adjust(ctx, txn, reverse); err != nil {
			return err
		}
		return l.store.Transactions().Delete(ctx, userID, id)
	})
	if err != nil {
		return err
	}

	l.publish(ctx, events.TransactionDeleted, txn, reverse)
	return nil
}

// checkReferences validates the classification and that every referenced
// document belongs to the transaction's user. It also clears the id that does
// not match the source.
func (l *Ledger) checkReferences(ctx context.Context, txn *models.Transaction) error {
	if !txn.Type.Valid() || !txn.Source.Valid() {
		return fmt.Errorf("%w: type=%q source=%q", money.ErrUnknownClassification, txn.Type, txn.Source)
	}

	switch txn.Source {
	case money.SourceAccount:
		txn.CreditCardID = nil
		if txn.AccountID == nil {
			return fmt.Errorf("%w: account_id is required", ErrInvalidReference)
		}
		if _, err := l.store.Accounts().Get(ctx, txn.UserID, *txn.AccountID); err != nil {
			return reference("account", err)
		}
	case money.SourceCreditCard:
		txn.AccountID = nil
		if txn.CreditCardID == nil {
			return fmt.Errorf("%w: credit_card_id is required", ErrInvalidReference)
		}
		if _, err := l.store.CreditCards().Get(ctx, txn.UserID, *txn.CreditCardID); err != nil {
			return reference("credit card", err)
		}
	}

	if txn.CategoryID != nil {
		category, err := l.store.Categories().Get(ctx, txn.UserID, *txn.CategoryID)
		if err != nil {
			return reference("category", err)
		}
		if category.Type != txn.Type {
			return fmt.Errorf("%w: category is for %s", ErrInvalidReference, category.Type)
		}
	}

	if txn.SubcategoryID != nil {
		if txn.CategoryID == nil {
			return fmt.Errorf("%w: subcategory without category", ErrInvalidReference)
		}
		sub, err := l.store.Subcategories().Get(ctx, txn.UserID, *txn.SubcategoryID)
		if err != nil {
			return reference("subcategory", err)
		}
		if sub.CategoryID != *txn.CategoryID {
			return fmt.Errorf("%w: subcategory belongs to another category", ErrInvalidReference)
		}
	}

	seen := make(map[primitive.ObjectID]bool, len(txn.TagIDs))
	tags := make([]primitive.ObjectID, 0, len(txn.TagIDs))
	for _, tagID := range txn.TagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		if _, err := l.store.Tags().Get(ctx, txn.UserID, tagID); err != nil {
			return reference("tag", err)
		}
		tags = append(tags, tagID)
	}
	txn.TagIDs = tags

	return nil
}

func reference(kind string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", ErrInvalidReference, kind)
	}
	return err
}

// adjust applies delta to the transaction's owner.
func (l *Ledger) adjust(ctx context.Context, txn *models.Transaction, delta string) error {
	if money.IsZero(delta) {
		return nil
	}

	var err error
	switch txn.Source {
	case money.SourceAccount:
		_, err = l.store.Accounts().AdjustBalance(ctx, txn.UserID, txn.OwnerID(), delta)
	case money.SourceCreditCard:
		_, err = l.store.CreditCards().AdjustBalance(ctx, txn.UserID, txn.OwnerID(), delta)
	default:
		err = fmt.Errorf("%w: source=%q", money.ErrUnknownClassification, txn.Source)
	}
	if err != nil {
		return fmt.Errorf("adjust %s %s by %s: %w", txn.Source, txn.OwnerID().Hex(), delta, err)
	}
	return nil
}

func (l *Ledger) publish(ctx context.Context, kind events.Kind, txn *models.Transaction, delta string) {
	l.events.Publish(ctx, events.Event{
		Kind:          kind,
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		OwnerID:       txn.OwnerID(),
		Source:        string(txn.Source),
		Delta:         delta,
		OccurredAt:    l.now().UTC(),
	})
}
