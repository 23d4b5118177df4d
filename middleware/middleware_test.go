package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/utils"
)

func whoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := UserID(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(id.Hex()))
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Parallel()

	tokens := utils.NewTokenManager("secret", time.Minute, time.Hour, nil)
	handler := AuthenticationMiddleware(tokens, zap.NewNop())(http.HandlerFunc(whoAmI))

	user := primitive.NewObjectID()
	pair, err := tokens.Issue(user)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc", status: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + pair.RefreshToken, status: http.StatusUnauthorized},
		{name: "access token", header: "Bearer " + pair.AccessToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, tt.status, w.Code, tt.name)
		if tt.status == http.StatusOK {
			assert.Equal(t, user.Hex(), w.Body.String())
		} else {
			var body helpers.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, i18n.ErrUnauthorized, body.Error.Code, tt.name)
		}
	}

	claims, err := tokens.Verify(context.Background(), pair.AccessToken, utils.AccessToken)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(context.Background(), claims))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	handler := CORSMiddleware([]string{"http://localhost:3000"})(http.HandlerFunc(whoAmI))

	r := httptest.NewRequest(http.MethodOptions, "/api/v1/accounts", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRequestIDAndLogging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	tokens := utils.NewTokenManager("secret", time.Minute, time.Hour, nil)
	user := primitive.NewObjectID()
	pair, err := tokens.Issue(user)
	require.NoError(t, err)

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	})
	handler := RequestID(Logging(zap.New(core))(AuthenticationMiddleware(tokens, zap.NewNop())(inner)))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/tags", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, seen, fields["request_id"])
	assert.Equal(t, "/api/v1/tags", fields["path"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])
	assert.Equal(t, user.Hex(), fields["user_id"])

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	RequestID(inner).ServeHTTP(w, r)
	assert.Equal(t, "abc-123", seen)
}

func TestLanguage(t *testing.T) {
	t.Parallel()

	var got string
	handler := Language(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.T(r.Context(), i18n.ErrNotFound)
	}))

	r := httptest.NewRequest(http.MethodGet, "/?lang=es", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "Registro no encontrado", got)
	assert.Equal(t, "es-ES", w.Header().Get("Content-Language"))
}

func TestCompress(t *testing.T) {
	t.Parallel()

	body := strings.Repeat(`{"name":"groceries"},`, 200)
	handler := Compress(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Less(t, w.Body.Len(), len(body))
}
