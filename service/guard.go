package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/store"
)

// counter is the part of a repository needed to look for references.
type counter interface {
	Count(ctx context.Context, userID primitive.ObjectID, q store.Query) (int64, error)
}

type referrer struct {
	repo  counter
	field string
}

// guardedDelete removes a document unless one of refs still points at it.
func guardedDelete[T any](ctx context.Context, s store.Store, repo store.Repository[T], userID, id primitive.ObjectID, refs ...referrer) error {
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Get(ctx, userID, id); err != nil {
			return err
		}

		for _, ref := range refs {
			n, err := ref.repo.Count(ctx, userID, store.Query{}.Where(ref.field, id))
			if err != nil {
				return err
			}
			if n > 0 {
				return store.ErrInUse
			}
		}

		return repo.Delete(ctx, userID, id)
	})
}

func (l *Ledger) DeleteAccount(ctx context.Context, userID, id primitive.ObjectID) error {
	return guardedDelete[models.Account](ctx, l.store, l.store.Accounts(), userID, id,
		referrer{repo: l.store.Transactions(), field: "account_id"})
}

func (l *Ledger) DeleteCreditCard(ctx context.Context, userID, id primitive.ObjectID) error {
	return guardedDelete[models.CreditCard](ctx, l.store, l.store.CreditCards(), userID, id,
		referrer{repo: l.store.Transactions(), field: "credit_card_id"})
}

func (l *Ledger) DeleteCategory(ctx context.Context, userID, id primitive.ObjectID) error {
	return guardedDelete(ctx, l.store, l.store.Categories(), userID, id,
		referrer{repo: l.store.Transactions(), field: "category_id"},
		referrer{repo: l.store.Subcategories(), field: "category_id"})
}

func (l *Ledger) DeleteSubcategory(ctx context.Context, userID, id primitive.ObjectID) error {
	return guardedDelete(ctx, l.store, l.store.Subcategories(), userID, id,
		referrer{repo: l.store.Transactions(), field: "subcategory_id"})
}

func (l *Ledger) DeleteTag(ctx context.Context, userID, id primitive.ObjectID) error {
	return guardedDelete(ctx, l.store, l.store.Tags(), userID, id,
		referrer{repo: l.store.Transactions(), field: "tag_ids"})
}
