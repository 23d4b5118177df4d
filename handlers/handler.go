package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/middleware"
	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
	"github.com/UmangSachdeva/fintrack/service"
	"github.com/UmangSachdeva/fintrack/store"
	"github.com/UmangSachdeva/fintrack/utils"
)

// Handler serves the HTTP API.
type Handler struct {
	store   store.Store
	ledger  *service.Ledger
	auditor *service.Auditor
	banks   *service.BankLinker
	tokens  *utils.TokenManager
	uploads *helpers.UploadStore
	log     *zap.Logger
}

type Deps struct {
	Store   store.Store
	Ledger  *service.Ledger
	Auditor *service.Auditor
	Banks   *service.BankLinker
	Tokens  *utils.TokenManager
	Uploads *helpers.UploadStore
	Log     *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		store:   d.Store,
		ledger:  d.Ledger,
		auditor: d.Auditor,
		banks:   d.Banks,
		tokens:  d.Tokens,
		uploads: d.Uploads,
		log:     d.Log,
	}
}

// Tokens exposes the token manager for the auth middleware.
func (h *Handler) Tokens() *utils.TokenManager { return h.tokens }

// Uploads exposes the upload store for the static file route.
func (h *Handler) Uploads() *helpers.UploadStore { return h.uploads }

// fail maps err onto a status code and a localized error body.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *helpers.FieldError
	if errors.As(err, &fieldErr) {
		key := i18n.MsgFieldInvalid
		if fieldErr.Rule == "required" {
			key = i18n.MsgFieldRequired
		}
		helpers.WriteJSON(w, http.StatusUnprocessableEntity, helpers.ErrorResponse{Error: helpers.ErrorBody{
			Code:    i18n.ErrValidation,
			Message: i18n.T(r.Context(), key, fieldErr.Field),
			Field:   fieldErr.Field,
		}})
		return
	}

	status, code := http.StatusInternalServerError, i18n.ErrInternal
	switch {
	case errors.Is(err, helpers.ErrBadBody), errors.Is(err, helpers.ErrInvalidQuery):
		status, code = http.StatusBadRequest, i18n.ErrBadRequest
	case errors.Is(err, money.ErrInvalidMonetaryAmount):
		status, code = http.StatusUnprocessableEntity, i18n.ErrInvalidAmount
	case errors.Is(err, money.ErrUnknownClassification), errors.Is(err, helpers.ErrValidation):
		status, code = http.StatusUnprocessableEntity, i18n.ErrValidation
	case errors.Is(err, service.ErrInvalidReference):
		status, code = http.StatusUnprocessableEntity, i18n.ErrInvalidReference
	case errors.Is(err, helpers.ErrWeakPassword):
		status, code = http.StatusUnprocessableEntity, i18n.ErrWeakPassword
	case errors.Is(err, helpers.ErrWrongPassword):
		status, code = http.StatusUnprocessableEntity, i18n.ErrWrongPassword
	case errors.Is(err, helpers.ErrUnsupportedFile), errors.Is(err, helpers.ErrUnknownKind):
		status, code = http.StatusUnprocessableEntity, i18n.ErrUnsupportedFile
	case errors.Is(err, helpers.ErrFileTooLarge):
		status, code = http.StatusRequestEntityTooLarge, i18n.ErrFileTooLarge
	case errors.Is(err, helpers.ErrTooManyFiles):
		status, code = http.StatusUnprocessableEntity, i18n.ErrTooManyFiles
	case errors.Is(err, utils.ErrTokenExpired):
		status, code = http.StatusUnauthorized, i18n.ErrTokenExpired
	case errors.Is(err, utils.ErrInvalidToken), errors.Is(err, utils.ErrTokenRevoked):
		status, code = http.StatusUnauthorized, i18n.ErrUnauthorized
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, i18n.ErrNotFound
	case errors.Is(err, store.ErrDuplicate):
		status, code = http.StatusConflict, i18n.ErrDuplicate
	case errors.Is(err, store.ErrInUse):
		status, code = http.StatusConflict, i18n.ErrInUse
	case errors.Is(err, store.ErrConflict):
		status, code = http.StatusConflict, i18n.ErrConflict
	case errors.Is(err, service.ErrBankLinkUnavailable):
		status, code = http.StatusServiceUnavailable, i18n.ErrBankLinkDisabled
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	helpers.WriteError(w, r, status, code)
}

// currentUser returns the authenticated user id. Routes using it sit behind
// the auth middleware, so a missing id is answered with 401.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		helpers.WriteError(w, r, http.StatusUnauthorized, i18n.ErrUnauthorized)
	}
	return id, ok
}

// pathID parses a route variable. Malformed ids cannot exist, so they are 404.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		helpers.WriteError(w, r, http.StatusNotFound, i18n.ErrNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// audit records what the current request did.
func (h *Handler) audit(r *http.Request, userID primitive.ObjectID, action models.AuditAction, entity string, entityID primitive.ObjectID, metadata map[string]any) {
	entry := &models.AuditLog{
		Action:    action,
		Entity:    entity,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Metadata:  metadata,
	}
	entry.UserID = userID
	if !entityID.IsZero() {
		entry.EntityID = entityID.Hex()
	}
	h.auditor.Record(r.Context(), entry)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writePage[T any](w http.ResponseWriter, items []T, total int64, q store.Query) {
	if items == nil {
		items = []T{}
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.Page[T]{Data: items, Total: total, Page: q.Page, Limit: q.Limit})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
