package memory

import (
	"context"
	"maps"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

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

// table is an in-memory user-owned collection guarded by its Store's lock.
type table[T any, PT resource[T]] struct {
	s    *Store
	docs map[primitive.ObjectID]T
}

var _ store.Repository[models.Tag] = (*table[models.Tag, *models.Tag])(nil)

func newTable[T any, PT resource[T]](s *Store) *table[T, PT] {
	t := &table[T, PT]{s: s, docs: make(map[primitive.ObjectID]T)}
	s.tables = append(s.tables, t)
	return t
}

func (t *table[T, PT]) snapshot() func() {
	saved := maps.Clone(t.docs)
	return func() { t.docs = saved }
}

func (t *table[T, PT]) Create(ctx context.Context, doc *T) error {
	defer t.s.lock(ctx)()

	p := PT(doc)
	if p.GetID().IsZero() {
		p.SetID(primitive.NewObjectID())
	}
	if _, exists := t.docs[p.GetID()]; exists {
		return store.ErrDuplicate
	}
	p.Touch(t.s.now())

	t.docs[p.GetID()] = *doc
	return nil
}

func (t *table[T, PT]) Get(ctx context.Context, userID, id primitive.ObjectID) (*T, error) {
	defer t.s.lock(ctx)()
	return t.get(userID, id)
}

func (t *table[T, PT]) get(userID, id primitive.ObjectID) (*T, error) {
	doc, ok := t.docs[id]
	if !ok || PT(&doc).GetUserID() != userID {
		return nil, store.ErrNotFound
	}
	return &doc, nil
}

func (t *table[T, PT]) find(userID primitive.ObjectID, q store.Query) ([]T, []bson.M, error) {
	m, err := newMatcher(userID, q)
	if err != nil {
		return nil, nil, err
	}

	var (
		docs []T
		raws []bson.M
	)
	for _, doc := range t.docs {
		raw, err := toM(doc)
		if err != nil {
			return nil, nil, err
		}
		if m.match(raw) {
			docs = append(docs, doc)
			raws = append(raws, raw)
		}
	}

	return docs, raws, nil
}

func (t *table[T, PT]) List(ctx context.Context, userID primitive.ObjectID, q store.Query) ([]T, int64, error) {
	defer t.s.lock(ctx)()

	q = q.Normalized()
	docs, raws, err := t.find(userID, q)
	if err != nil {
		return nil, 0, err
	}

	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		c := compareField(raws[a], raws[b], q.Sort)
		if q.Asc {
			return c
		}
		return -c
	})

	total := int64(len(docs))
	start := min(int(q.Skip()), len(order))
	end := min(start+q.Limit, len(order))

	page := make([]T, 0, end-start)
	for _, i := range order[start:end] {
		page = append(page, docs[i])
	}

	return page, total, nil
}

func (t *table[T, PT]) Count(ctx context.Context, userID primitive.ObjectID, q store.Query) (int64, error) {
	defer t.s.lock(ctx)()

	docs, _, err := t.find(userID, q)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (t *table[T, PT]) Update(ctx context.Context, doc *T) error {
	defer t.s.lock(ctx)()

	p := PT(doc)
	if _, err := t.get(p.GetUserID(), p.GetID()); err != nil {
		return err
	}
	p.Touch(t.s.now())

	t.docs[p.GetID()] = *doc
	return nil
}

func (t *table[T, PT]) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	defer t.s.lock(ctx)()

	if _, err := t.get(userID, id); err != nil {
		return err
	}
	delete(t.docs, id)
	return nil
}

type balanceTable[T any, PT balanced[T]] struct {
	*table[T, PT]
}

var _ store.BalanceRepository[models.Account] = (*balanceTable[models.Account, *models.Account])(nil)

func newBalanceTable[T any, PT balanced[T]](s *Store) *balanceTable[T, PT] {
	return &balanceTable[T, PT]{table: newTable[T, PT](s)}
}

func (t *balanceTable[T, PT]) AdjustBalance(ctx context.Context, userID, id primitive.ObjectID, delta string) (*T, error) {
	defer t.s.lock(ctx)()

	doc, err := t.get(userID, id)
	if err != nil {
		return nil, err
	}
	if money.IsZero(delta) {
		return doc, nil
	}

	p := PT(doc)
	next, err := money.Apply(p.GetBalance(), delta)
	if err != nil {
		return nil, err
	}
	p.SetBalance(next)
	p.Touch(t.s.now())

	t.docs[id] = *doc
	return doc, nil
}
