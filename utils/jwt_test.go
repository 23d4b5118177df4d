package utils

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgrijalva/jwt-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewTokenManager("secret", 15*time.Minute, time.Hour, nil)
	userID := primitive.NewObjectID()

	pair, err := m.Issue(userID)
	require.NoError(t, err)

	claims, err := m.Verify(ctx, pair.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserObjectID())
	assert.NotEmpty(t, claims.Id)

	_, err = m.Verify(ctx, pair.AccessToken, RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify(ctx, pair.RefreshToken, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenManager("other", 15*time.Minute, time.Hour, nil)
	_, err = other.Verify(ctx, pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify(ctx, "not.a.token", AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID:         primitive.NewObjectID().Hex(),
		Type:           AccessToken,
		StandardClaims: jwt.StandardClaims{Id: "x", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	m := NewTokenManager("secret", time.Minute, time.Hour, nil)
	_, err = m.Verify(context.Background(), signed, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("secret", time.Minute, time.Hour, nil)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	pair, err := m.Issue(primitive.NewObjectID())
	require.NoError(t, err)

	_, err = m.Verify(context.Background(), pair.AccessToken, AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshRotates(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	m := NewTokenManager("secret", time.Minute, time.Hour, NewRedisRevoker(client))

	pair, err := m.Issue(primitive.NewObjectID())
	require.NoError(t, err)

	next, old, err := m.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.True(t, mr.Exists(revokedKeyPrefix+old.Id))
	assert.Greater(t, mr.TTL(revokedKeyPrefix+old.Id), time.Duration(0))

	_, _, err = m.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = m.Verify(ctx, next.RefreshToken, RefreshToken)
	assert.NoError(t, err)
}

func TestMemoryRevoker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	r := NewMemoryRevoker()
	r.now = func() time.Time { return now }

	claimed, err := r.Revoke(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = r.Revoke(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "second revocation of a live id")

	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	claimed, err = r.Revoke(ctx, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "expired revocations can be claimed again")
}

// slowRevoker lets every caller pass IsRevoked before any Revoke lands.
type slowRevoker struct {
	Revoker
	checked sync.WaitGroup
}

func (r *slowRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	revoked, err := r.Revoker.IsRevoked(ctx, jti)
	r.checked.Done()
	r.checked.Wait()
	return revoked, err
}

func TestRefreshIsSingleUseUnderContention(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	for name, base := range map[string]Revoker{
		"memory": NewMemoryRevoker(),
		"redis":  NewRedisRevoker(client),
	} {
		t.Run(name, func(t *testing.T) {
			const callers = 8

			revoker := &slowRevoker{Revoker: base}
			revoker.checked.Add(callers)
			m := NewTokenManager("secret", time.Minute, time.Hour, revoker)

			pair, err := m.Issue(primitive.NewObjectID())
			require.NoError(t, err)

			var (
				wg        sync.WaitGroup
				successes atomic.Int32
				rejected  atomic.Int32
			)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _, err := m.Refresh(context.Background(), pair.RefreshToken)
					switch {
					case err == nil:
						successes.Add(1)
					case errors.Is(err, ErrTokenRevoked):
						rejected.Add(1)
					}
				}()
			}
			wg.Wait()

			assert.EqualValues(t, 1, successes.Load())
			assert.EqualValues(t, callers-1, rejected.Load())
		})
	}
}
