package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/utils"
)

type contextKey string

const (
	userContextKey   contextKey = "user"
	claimsContextKey contextKey = "claims"
)

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, claims *utils.Claims) context.Context {
	ctx = context.WithValue(ctx, userContextKey, claims.UserObjectID())
	return context.WithValue(ctx, claimsContextKey, claims)
}

// UserID returns the authenticated user, or false on public routes.
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userContextKey).(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

// Claims returns the verified access token claims.
func Claims(ctx context.Context) *utils.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*utils.Claims)
	return claims
}

// AuthenticationMiddleware requires a valid, unrevoked Bearer access token.
func AuthenticationMiddleware(tokens *utils.TokenManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				helpers.WriteError(w, r, http.StatusUnauthorized, i18n.ErrUnauthorized)
				return
			}

			claims, err := tokens.Verify(r.Context(), strings.TrimSpace(token), utils.AccessToken)
			switch {
			case err == nil:
			case errors.Is(err, utils.ErrTokenExpired):
				helpers.WriteError(w, r, http.StatusUnauthorized, i18n.ErrTokenExpired)
				return
			case errors.Is(err, utils.ErrInvalidToken), errors.Is(err, utils.ErrTokenRevoked):
				helpers.WriteError(w, r, http.StatusUnauthorized, i18n.ErrUnauthorized)
				return
			default:
				log.Error("verify token", zap.Error(err))
				helpers.WriteError(w, r, http.StatusInternalServerError, i18n.ErrInternal)
				return
			}

			noteUser(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}
