package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
	"github.com/UmangSachdeva/fintrack/store"
)

type resource[T any] interface {
	*T
	models.Resource
}

type balanced[T any] interface {
	resource[T]
	models.Balanced
}

// Collection implements store.Repository over one Mongo collection.
type Collection[T any, PT resource[T]] struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ store.Repository[models.Tag] = (*Collection[models.Tag, *models.Tag])(nil)

func NewCollection[T any, PT resource[T]](coll *mongo.Collection) *Collection[T, PT] {
	return &Collection[T, PT]{coll: coll, now: time.Now}
}

func (c *Collection[T, PT]) Create(ctx context.Context, doc *T) error {
	p := PT(doc)
	if p.GetID().IsZero() {
		p.SetID(primitive.NewObjectID())
	}
	p.Touch(c.now())

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}

	return nil
}

func (c *Collection[T, PT]) Get(ctx context.Context, userID, id primitive.ObjectID) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}

	return &doc, nil
}

// List runs the page query and the total count concurrently, except inside a
// session, which must not be used from two goroutines.
func (c *Collection[T, PT]) List(ctx context.Context, userID primitive.ObjectID, q store.Query) ([]T, int64, error) {
	filter := buildFilter(userID, q)

	var (
		docs  []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	if mongo.SessionFromContext(ctx) != nil {
		g.SetLimit(1)
	}

	g.Go(func() error {
		cursor, err := c.coll.Find(gctx, filter, buildFindOptions(q))
		if err != nil {
			return fmt.Errorf("find in %s: %w", c.coll.Name(), err)
		}
		defer cursor.Close(gctx)

		return cursor.All(gctx, &docs)
	})

	g.Go(func() error {
		n, err := c.coll.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count in %s: %w", c.coll.Name(), err)
		}
		total = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if docs == nil {
		docs = []T{}
	}

	return docs, total, nil
}

func (c *Collection[T, PT]) Count(ctx context.Context, userID primitive.ObjectID, q store.Query) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, buildFilter(userID, q))
	if err != nil {
		return 0, fmt.Errorf("count in %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

func (c *Collection[T, PT]) Update(ctx context.Context, doc *T) error {
	p := PT(doc)
	p.Touch(c.now())

	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": p.GetID(), "user_id": p.GetUserID()}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("replace in %s: %w", c.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (c *Collection[T, PT]) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}

	return nil
}

// BalanceCollection adds compare-and-set balance adjustments to Collection.
type BalanceCollection[T any, PT balanced[T]] struct {
	*Collection[T, PT]
}

var _ store.BalanceRepository[models.Account] = (*BalanceCollection[models.Account, *models.Account])(nil)

func NewBalanceCollection[T any, PT balanced[T]](coll *mongo.Collection) *BalanceCollection[T, PT] {
	return &BalanceCollection[T, PT]{Collection: NewCollection[T, PT](coll)}
}

// AdjustBalance re-reads the document and writes the new balance only if the
// stored balance is still the one it read.
func (c *BalanceCollection[T, PT]) AdjustBalance(ctx context.Context, userID, id primitive.ObjectID, delta string) (*T, error) {
	if money.IsZero(delta) {
		return c.Get(ctx, userID, id)
	}

	for attempt := 0; attempt < store.MaxBalanceAttempts; attempt++ {
		doc, err := c.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}

		p := PT(doc)
		previous := p.GetBalance()

		next, err := money.Apply(previous, delta)
		if err != nil {
			return nil, err
		}

		now := c.now().UTC().Truncate(time.Millisecond)
		res, err := c.coll.UpdateOne(ctx,
			bson.M{"_id": id, "user_id": userID, "balance": previous},
			bson.M{"$set": bson.M{"balance": next, "updated_at": now}},
		)
		if err != nil {
			return nil, fmt.Errorf("adjust balance in %s: %w", c.coll.Name(), err)
		}

		if res.MatchedCount == 1 {
			p.SetBalance(next)
			p.Touch(now)
			return doc, nil
		}
	}

	return nil, store.ErrConflict
}
