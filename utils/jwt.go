package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims carried by both token types. Id holds the jti used for revocation.
type Claims struct {
	UserID string    `json:"user_id"`
	Type   TokenType `json:"typ"`
	jwt.StandardClaims
}

// TokenPair is returned on signup, login and refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoker    Revoker
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration, revoker Revoker) *TokenManager {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoker:    revoker,
		now:        time.Now,
	}
}

// Issue generates an access and a refresh token for userID.
func (m *TokenManager) Issue(userID primitive.ObjectID) (TokenPair, error) {
	now := m.now()

	access, err := m.sign(userID, AccessToken, now, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.sign(userID, RefreshToken, now, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(m.accessTTL).UTC(),
	}, nil
}

func (m *TokenManager) sign(userID primitive.ObjectID, typ TokenType, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID.Hex(),
		Type:   typ,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString, checking the signature, expiry, type and revocation.
func (m *TokenManager) Verify(ctx context.Context, tokenString string, want TokenType) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Type != want || claims.Id == "" {
		return nil, ErrInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.Id)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke blacklists the token until it would have expired anyway. Revoking an
// already revoked token is not an error.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	_, err := m.claim(ctx, claims)
	return err
}

// claim revokes the token and reports whether this call did it.
func (m *TokenManager) claim(ctx context.Context, claims *Claims) (bool, error) {
	ttl := time.Unix(claims.ExpiresAt, 0).Sub(m.now())
	if ttl <= 0 {
		return false, nil
	}
	return m.revoker.Revoke(ctx, claims.Id, ttl)
}

// Refresh revokes a refresh token and issues a fresh pair. Of concurrent
// refreshes with the same token only the one that revokes it succeeds.
func (m *TokenManager) Refresh(ctx context.Context, refreshToken string) (TokenPair, *Claims, error) {
	claims, err := m.Verify(ctx, refreshToken, RefreshToken)
	if err != nil {
		return TokenPair{}, nil, err
	}

	claimed, err := m.claim(ctx, claims)
	if err != nil {
		return TokenPair{}, nil, err
	}
	if !claimed {
		return TokenPair{}, nil, ErrTokenRevoked
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	pair, err := m.Issue(userID)
	return pair, claims, err
}

// UserObjectID returns the subject of verified claims.
func (c *Claims) UserObjectID() primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(c.UserID)
	return id
}
