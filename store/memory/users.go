package memory

import (
	"context"
	"maps"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/store"
)

type users struct {
	s    *Store
	byID map[primitive.ObjectID]models.User
}

var _ store.UserRepository = (*users)(nil)

func newUsers(s *Store) *users {
	u := &users{s: s, byID: make(map[primitive.ObjectID]models.User)}
	s.tables = append(s.tables, u)
	return u
}

func (u *users) snapshot() func() {
	saved := maps.Clone(u.byID)
	return func() { u.byID = saved }
}

func (u *users) emailTaken(email string, except primitive.ObjectID) bool {
	for id, user := range u.byID {
		if id != except && user.Email == email {
			return true
		}
	}
	return false
}

func (u *users) Create(ctx context.Context, user *models.User) error {
	defer u.s.lock(ctx)()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, exists := u.byID[user.ID]; exists || u.emailTaken(user.Email, user.ID) {
		return store.ErrDuplicate
	}

	now := u.s.now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now

	u.byID[user.ID] = *user
	return nil
}

func (u *users) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	defer u.s.lock(ctx)()

	user, ok := u.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (u *users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer u.s.lock(ctx)()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range u.byID {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (u *users) Update(ctx context.Context, user *models.User) error {
	defer u.s.lock(ctx)()

	if _, ok := u.byID[user.ID]; !ok {
		return store.ErrNotFound
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if u.emailTaken(user.Email, user.ID) {
		return store.ErrDuplicate
	}
	user.UpdatedAt = u.s.now().UTC().Truncate(time.Millisecond)

	u.byID[user.ID] = *user
	return nil
}

func (u *users) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer u.s.lock(ctx)()

	if _, ok := u.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(u.byID, id)
	return nil
}
