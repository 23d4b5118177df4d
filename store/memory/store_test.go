package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
	"github.com/UmangSachdeva/fintrack/store"
)

func newAccount(userID primitive.ObjectID, name, balance string) *models.Account {
	return &models.Account{
		Base:    models.Base{UserID: userID},
		Name:    name,
		Type:    models.AccountChecking,
		Balance: balance,
	}
}

func TestTableCRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	acc := newAccount(owner, "Main", "10.00")
	require.NoError(t, s.Accounts().Create(ctx, acc))
	require.False(t, acc.ID.IsZero())
	assert.False(t, acc.CreatedAt.IsZero())

	got, err := s.Accounts().Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Name)

	_, err = s.Accounts().Get(ctx, other, acc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got.Name = "Renamed"
	require.NoError(t, s.Accounts().Update(ctx, got))

	got, err = s.Accounts().Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	assert.ErrorIs(t, s.Accounts().Delete(ctx, other, acc.ID), store.ErrNotFound)
	require.NoError(t, s.Accounts().Delete(ctx, owner, acc.ID))
	assert.ErrorIs(t, s.Accounts().Delete(ctx, owner, acc.ID), store.ErrNotFound)
}

func TestTableUpdateRejectsForeignOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	owner := primitive.NewObjectID()

	acc := newAccount(owner, "Main", "0.00")
	require.NoError(t, s.Accounts().Create(ctx, acc))

	stolen := *acc
	stolen.UserID = primitive.NewObjectID()
	assert.ErrorIs(t, s.Accounts().Update(ctx, &stolen), store.ErrNotFound)
}

func TestListFiltersAndPaging(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	owner := primitive.NewObjectID()
	tag := primitive.NewObjectID()
	accountID := primitive.NewObjectID()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		txn := &models.Transaction{
			Base:        models.Base{UserID: owner},
			Description: []string{"Rent", "Groceries", "Salary", "Groceries again", "Coffee"}[i],
			Amount:      "10.00",
			Type:        money.Expense,
			Source:      money.SourceAccount,
			AccountID:   &accountID,
			Date:        base.AddDate(0, 0, i),
		}
		if i%2 == 0 {
			txn.TagIDs = []primitive.ObjectID{tag}
		}
		if i == 2 {
			txn.Type = money.Income
		}
		require.NoError(t, s.Transactions().Create(ctx, txn))
	}
	require.NoError(t, s.Transactions().Create(ctx, &models.Transaction{
		Base: models.Base{UserID: primitive.NewObjectID()}, Description: "Not mine", Date: base,
	}))

	items, total, err := s.Transactions().List(ctx, owner, store.Query{Sort: "date", Asc: true, Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Salary", items[0].Description)
	assert.Equal(t, "Groceries again", items[1].Description)

	items, total, err = s.Transactions().List(ctx, owner, store.Query{Search: "GROCER", SearchField: "description"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	n, err := s.Transactions().Count(ctx, owner, store.Query{Filters: map[string]any{"type": money.Expense}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = s.Transactions().Count(ctx, owner, store.Query{}.Where("tag_ids", tag))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = s.Transactions().Count(ctx, owner, store.Query{}.Where("account_id", accountID))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	n, err = s.Transactions().Count(ctx, owner, store.Query{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	items, _, err = s.Transactions().List(ctx, owner, store.Query{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAdjustBalance(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	owner := primitive.NewObjectID()

	acc := newAccount(owner, "Main", "100.00")
	require.NoError(t, s.Accounts().Create(ctx, acc))

	got, err := s.Accounts().AdjustBalance(ctx, owner, acc.ID, "-150.00")
	require.NoError(t, err)
	assert.Equal(t, "-50.00", got.Balance)

	got, err = s.Accounts().AdjustBalance(ctx, owner, acc.ID, "-0.00")
	require.NoError(t, err)
	assert.Equal(t, "-50.00", got.Balance)

	_, err = s.Accounts().AdjustBalance(ctx, primitive.NewObjectID(), acc.ID, "1.00")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Accounts().AdjustBalance(ctx, owner, acc.ID, "bogus")
	assert.ErrorIs(t, err, money.ErrInvalidMonetaryAmount)
}

func TestAdjustBalanceConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	owner := primitive.NewObjectID()

	acc := newAccount(owner, "Main", "0.00")
	require.NoError(t, s.Accounts().Create(ctx, acc))

	const workers = 40

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		delta := "2.50"
		if i%2 == 1 {
			delta = "-1.25"
		}
		g.Go(func() error {
			return s.WithTransaction(ctx, func(ctx context.Context) error {
				_, err := s.Accounts().AdjustBalance(ctx, owner, acc.ID, delta)
				return err
			})
		})
	}
	require.NoError(t, g.Wait())

	got, err := s.Accounts().Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", got.Balance)
}

func TestWithTransactionRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	owner := primitive.NewObjectID()

	acc := newAccount(owner, "Main", "100.00")
	require.NoError(t, s.Accounts().Create(ctx, acc))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Accounts().AdjustBalance(ctx, owner, acc.ID, "-40.00"); err != nil {
			return err
		}
		if err := s.Tags().Create(ctx, &models.Tag{Base: models.Base{UserID: owner}, Name: "temp"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Accounts().Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.Balance)

	n, err := s.Tags().Count(ctx, owner, store.Query{})
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := s.Accounts().AdjustBalance(ctx, owner, acc.ID, "-40.00")
		return err
	}))

	got, err = s.Accounts().Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.00", got.Balance)
}

func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	u := &models.User{Name: "Ana", Email: " Ana@Example.com ", Password: "hash"}
	require.NoError(t, s.Users().Create(ctx, u))
	assert.Equal(t, "ana@example.com", u.Email)

	dup := &models.User{Name: "Other", Email: "ana@example.com"}
	assert.ErrorIs(t, s.Users().Create(ctx, dup), store.ErrDuplicate)

	got, err := s.Users().GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	other := &models.User{Name: "Bea", Email: "bea@example.com"}
	require.NoError(t, s.Users().Create(ctx, other))
	other.Email = "ana@example.com"
	assert.ErrorIs(t, s.Users().Update(ctx, other), store.ErrDuplicate)

	require.NoError(t, s.Users().Delete(ctx, u.ID))
	_, err = s.Users().GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	tag := &models.Tag{Base: models.Base{UserID: primitive.NewObjectID()}, Name: "x"}
	require.NoError(t, s.Tags().Create(ctx, tag))
	assert.Equal(t, fixed, tag.CreatedAt)
	assert.Equal(t, fixed, tag.UpdatedAt)
}
