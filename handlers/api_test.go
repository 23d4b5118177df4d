package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/events"
	"github.com/UmangSachdeva/fintrack/handlers"
	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/router"
	"github.com/UmangSachdeva/fintrack/service"
	"github.com/UmangSachdeva/fintrack/store/memory"
	"github.com/UmangSachdeva/fintrack/utils"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

type api struct {
	t      *testing.T
	server http.Handler
	fs     afero.Fs
	token  string
}

func newAPI(t *testing.T) *api {
	t.Helper()

	s := memory.New()
	fs := afero.NewMemMapFs()
	uploads, err := helpers.NewUploadStore(fs, "uploads", helpers.DefaultUploadRules())
	require.NoError(t, err)

	log := zap.NewNop()
	h := handlers.New(handlers.Deps{
		Store:   s,
		Ledger:  service.NewLedger(s, events.Noop{}, log),
		Auditor: service.NewAuditor(s, log),
		Banks:   service.NewBankLinker(nil, log),
		Tokens:  utils.NewTokenManager("test-secret", 15*time.Minute, time.Hour, nil),
		Uploads: uploads,
		Log:     log,
	})

	return &api{
		t:      t,
		server: router.Router(h, router.Options{CORSOrigins: []string{"*"}, Log: log}),
		fs:     fs,
	}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(b)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		r.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.server.ServeHTTP(w, r)
	return w
}

func (a *api) send(r *http.Request) *httptest.ResponseRecorder {
	if a.token != "" {
		r.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.server.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type authBody struct {
	User struct {
		ID     string `json:"id"`
		Email  string `json:"email"`
		Avatar string `json:"avatar"`
	} `json:"user"`
	Tokens utils.TokenPair `json:"tokens"`
}

type doc map[string]any

func (a *api) signup(email string) authBody {
	a.t.Helper()

	w := a.do("POST", "/api/v1/auth/signup", doc{"name": "Ana", "email": email, "password": "s3cret-pass"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	body := decode[authBody](a.t, w)
	a.token = body.Tokens.AccessToken
	return body
}

func (a *api) create(path string, body doc) doc {
	a.t.Helper()

	w := a.do("POST", path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[doc](a.t, w)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	a := newAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.do("GET", "/api/v1/auth/me", nil).Code)

	w := a.do("POST", "/api/v1/auth/signup", doc{"name": "Ana", "email": "bad", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errBody := decode[helpers.ErrorResponse](t, w)
	assert.Equal(t, "email", errBody.Error.Field)

	w = a.do("POST", "/api/v1/auth/signup", doc{"name": "Ana", "email": "ana@example.com", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	signed := a.signup("Ana@Example.com")
	assert.Equal(t, "ana@example.com", signed.User.Email)
	assert.NotContains(t, a.do("GET", "/api/v1/auth/me", nil).Body.String(), "password")

	a.token = ""
	w = a.do("POST", "/api/v1/auth/signup", doc{"name": "Ana", "email": "ana@example.com", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do("POST", "/api/v1/auth/login", doc{"email": "ana@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decode[helpers.ErrorResponse](t, w).Error.Code)

	w = a.do("POST", "/api/v1/auth/login", doc{"email": "ana@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[authBody](t, w)
	a.token = login.Tokens.AccessToken

	w = a.do("PATCH", "/api/v1/auth/me", doc{"name": "Ana Maria", "language": "en-US"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ana Maria", decode[doc](t, w)["name"])

	w = a.do("PUT", "/api/v1/auth/me/password", doc{"current_password": "nope-nope", "new_password": "another-pass"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = a.do("PUT", "/api/v1/auth/me/password", doc{"current_password": "s3cret-pass", "new_password": "another-pass"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do("POST", "/api/v1/auth/refresh", doc{"refresh_token": login.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do("POST", "/api/v1/auth/refresh", doc{"refresh_token": login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are single use")

	assert.Equal(t, http.StatusOK, a.do("POST", "/api/v1/auth/logout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do("GET", "/api/v1/auth/me", nil).Code)
}

func TestLedgerOverHTTP(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	a.signup("ledger@example.com")

	account := a.create("/api/v1/accounts", doc{"name": "Checking", "type": "checking", "balance": "1000"})
	assert.Equal(t, "1000.00", account["balance"])
	accountID := account["id"].(string)

	food := a.create("/api/v1/categories", doc{"name": "Food", "type": "expense"})
	foodID := food["id"].(string)
	sub := a.create("/api/v1/categories/"+foodID+"/subcategories", doc{"name": "Groceries"})
	tag := a.create("/api/v1/tags", doc{"name": "home", "color": "#00ff00"})

	txn := a.create("/api/v1/transactions", doc{
		"description":    "Supermarket",
		"amount":         150,
		"type":           "expense",
		"source":         "account",
		"account_id":     accountID,
		"category_id":    foodID,
		"subcategory_id": sub["id"],
		"tag_ids":        []string{tag["id"].(string)},
		"date":           "2024-03-10",
	})
	assert.Equal(t, "150.00", txn["amount"])
	txnID := txn["id"].(string)

	w := a.do("GET", "/api/v1/accounts/"+accountID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "850.00", decode[doc](t, w)["balance"])

	w = a.do("POST", "/api/v1/transactions", doc{
		"description": "Bad", "amount": "1.999", "type": "expense", "source": "account", "account_id": accountID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do("GET", "/api/v1/transactions?type=expense&from=2024-03-01&to=2024-03-31&search=super", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[helpers.Page[doc]](t, w)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	w = a.do("GET", "/api/v1/transactions/summary?from=2024-03-01&to=2024-03-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[service.Summary](t, w)
	assert.Equal(t, "150.00", summary.Expense)
	assert.Equal(t, "-150.00", summary.Net)

	w = a.do("PATCH", "/api/v1/transactions/"+txnID, doc{"amount": "100.00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do("GET", "/api/v1/accounts/"+accountID, nil)
	assert.Equal(t, "900.00", decode[doc](t, w)["balance"])

	w = a.do("PATCH", "/api/v1/transactions/"+txnID, doc{"amount": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "amount", decode[helpers.ErrorResponse](t, w).Error.Field)
	w = a.do("GET", "/api/v1/accounts/"+accountID, nil)
	assert.Equal(t, "900.00", decode[doc](t, w)["balance"], "a blank amount must not zero the transaction")

	w = a.do("PATCH", "/api/v1/transactions/"+txnID, doc{"type": "income"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "category type no longer matches")

	w = a.do("PATCH", "/api/v1/transactions/"+txnID, doc{"type": "income", "category_id": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[doc](t, w)
	assert.NotContains(t, patched, "category_id")
	assert.NotContains(t, patched, "subcategory_id")
	w = a.do("GET", "/api/v1/accounts/"+accountID, nil)
	assert.Equal(t, "1100.00", decode[doc](t, w)["balance"])

	assert.Equal(t, http.StatusConflict, a.do("DELETE", "/api/v1/accounts/"+accountID, nil).Code)
	assert.Equal(t, http.StatusConflict, a.do("DELETE", "/api/v1/tags/"+tag["id"].(string), nil).Code)

	assert.Equal(t, http.StatusOK, a.do("DELETE", "/api/v1/transactions/"+txnID, nil).Code)
	w = a.do("GET", "/api/v1/accounts/"+accountID, nil)
	assert.Equal(t, "1000.00", decode[doc](t, w)["balance"])

	assert.Equal(t, http.StatusOK, a.do("DELETE", "/api/v1/accounts/"+accountID, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do("GET", "/api/v1/accounts/"+accountID, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do("GET", "/api/v1/accounts/not-an-id", nil).Code)

	w = a.do("GET", "/api/v1/audit-logs?entity=transaction", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode[helpers.Page[doc]](t, w).Total)
}

func TestResourcesAreIsolatedPerUser(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	a.signup("owner@example.com")
	card := a.create("/api/v1/credit-cards", doc{"name": "Visa", "limit": "5000", "closing_day": 5, "due_day": 15})
	assert.Equal(t, "0.00", card["balance"])

	a.signup("intruder@example.com")
	assert.Equal(t, http.StatusNotFound, a.do("GET", "/api/v1/credit-cards/"+card["id"].(string), nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do("DELETE", "/api/v1/credit-cards/"+card["id"].(string), nil).Code)

	w := a.do("GET", "/api/v1/credit-cards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[helpers.Page[doc]](t, w).Total)
}

func TestLocalizedErrors(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	a.signup("lang@example.com")

	r := httptest.NewRequest("GET", "/api/v1/tags/"+strings.Repeat("0", 24), nil)
	r.Header.Set("Accept-Language", "en-US")
	w := a.send(r)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Record not found", decode[helpers.ErrorResponse](t, w).Error.Message)

	r = httptest.NewRequest("GET", "/api/v1/tags/"+strings.Repeat("0", 24)+"?lang=pt-BR", nil)
	w = a.send(r)
	assert.Equal(t, "Registro não encontrado", decode[helpers.ErrorResponse](t, w).Error.Message)
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileField string, files ...[]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i, content := range files {
		part, err := mw.CreateFormFile(fileField, "file"+string(rune('a'+i)))
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest("POST", path, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUploads(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	a.signup("files@example.com")

	w := a.send(multipartRequest(t, "/api/v1/auth/me/avatar", nil, "avatar", pngBytes))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[doc](t, w)["avatar"].(string)
	assert.True(t, strings.HasPrefix(first, "avatar/"))

	w = a.send(httptest.NewRequest("GET", "/uploads/"+first, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())

	w = a.send(multipartRequest(t, "/api/v1/auth/me/avatar", nil, "avatar", pngBytes))
	require.Equal(t, http.StatusOK, w.Code)
	exists, err := afero.Exists(a.fs, "/uploads/"+first)
	require.NoError(t, err)
	assert.False(t, exists, "previous avatar is removed")

	w = a.send(multipartRequest(t, "/api/v1/auth/me/avatar", nil, "avatar", []byte("plain text")))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	fields := map[string]string{"subject": "Bug", "message": "Balance looks off"}
	w = a.send(multipartRequest(t, "/api/v1/feedback", fields, "attachments", pngBytes, []byte("%PDF-1.4\n")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[doc](t, w)["attachments"], 2)

	w = a.send(multipartRequest(t, "/api/v1/feedback", fields, "attachments", pngBytes, pngBytes, pngBytes, pngBytes))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.send(multipartRequest(t, "/api/v1/feedback", map[string]string{"message": "no subject"}, "attachments"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBankLinkUnavailable(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	a.signup("bank@example.com")

	w := a.do("POST", "/api/v1/bank-links/token", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	a := newAPI(t)
	w := a.do("GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
