// Package mongodb is the MongoDB implementation of store.Store.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/store"
)

const (
	UsersCollection         = "users"
	AccountsCollection      = "accounts"
	CreditCardsCollection   = "credit_cards"
	CategoriesCollection    = "categories"
	SubcategoriesCollection = "subcategories"
	TagsCollection          = "tags"
	TransactionsCollection  = "transactions"
	AuditLogsCollection     = "audit_logs"
	FeedbackCollection      = "feedback"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database

	// transactions is false for standalone servers, which cannot run
	// multi-document transactions.
	transactions bool

	users         *Users
	accounts      *BalanceCollection[models.Account, *models.Account]
	creditCards   *BalanceCollection[models.CreditCard, *models.CreditCard]
	categories    *Collection[models.Category, *models.Category]
	subcategories *Collection[models.Subcategory, *models.Subcategory]
	tags          *Collection[models.Tag, *models.Tag]
	txns          *Collection[models.Transaction, *models.Transaction]
	auditLogs     *Collection[models.AuditLog, *models.AuditLog]
	feedback      *Collection[models.Feedback, *models.Feedback]
}

var _ store.Store = (*Store)(nil)

func New(client *mongo.Client, database string, transactions bool) *Store {
	db := client.Database(database)

	return &Store{
		client:        client,
		db:            db,
		transactions:  transactions,
		users:         NewUsers(db.Collection(UsersCollection)),
		accounts:      NewBalanceCollection[models.Account](db.Collection(AccountsCollection)),
		creditCards:   NewBalanceCollection[models.CreditCard](db.Collection(CreditCardsCollection)),
		categories:    NewCollection[models.Category](db.Collection(CategoriesCollection)),
		subcategories: NewCollection[models.Subcategory](db.Collection(SubcategoriesCollection)),
		tags:          NewCollection[models.Tag](db.Collection(TagsCollection)),
		txns:          NewCollection[models.Transaction](db.Collection(TransactionsCollection)),
		auditLogs:     NewCollection[models.AuditLog](db.Collection(AuditLogsCollection)),
		feedback:      NewCollection[models.Feedback](db.Collection(FeedbackCollection)),
	}
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
	if !s.transactions || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	owned := []string{
		AccountsCollection, CreditCardsCollection, CategoriesCollection, SubcategoriesCollection,
		TagsCollection, TransactionsCollection, AuditLogsCollection, FeedbackCollection,
	}

	// index in ascending order
	if _, err := s.db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	for _, name := range owned {
		if _, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		}); err != nil {
			return fmt.Errorf("create %s owner index: %w", name, err)
		}
	}

	if _, err := s.db.Collection(TransactionsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "account_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "credit_card_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create transactions indexes: %w", err)
	}

	return nil
}
