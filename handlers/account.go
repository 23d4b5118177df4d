package handlers

import (
	"net/http"
	"strings"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
)

type createAccountRequest struct {
	Name        string `json:"name" validate:"required,max=80"`
	Type        string `json:"type" validate:"required,oneof=checking savings investment wallet other"`
	Institution string `json:"institution" validate:"max=80"`
	Balance     string `json:"balance" validate:"omitempty,money"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// Balances only move through transactions, so they cannot be patched.
type updateAccountRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=80"`
	Type        *string `json:"type" validate:"omitempty,oneof=checking savings investment wallet other"`
	Institution *string `json:"institution" validate:"omitempty,max=80"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

var accountQuery = helpers.QueryRules{
	SearchField: "name",
	Sortable:    []string{"name", "created_at", "updated_at"},
	Filters:     map[string]helpers.Filter{"type": {Field: "type"}},
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q, err := helpers.ParseQuery(r, accountQuery)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items, total, err := h.store.Accounts().List(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writePage(w, items, total, q)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req createAccountRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	balance, err := money.Format(req.Balance)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	account := &models.Account{
		Name:        strings.TrimSpace(req.Name),
		Type:        models.AccountType(req.Type),
		Institution: req.Institution,
		Balance:     balance,
		Color:       req.Color,
	}
	account.UserID = userID

	if err := h.store.Accounts().Create(r.Context(), account); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "account", account.ID, map[string]any{"balance": balance})
	helpers.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	account, err := h.store.Accounts().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	account, err := h.store.Accounts().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		account.Type = models.AccountType(*req.Type)
	}
	if req.Institution != nil {
		account.Institution = *req.Institution
	}
	if req.Color != nil {
		account.Color = *req.Color
	}

	if err := h.store.Accounts().Update(r.Context(), account); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "account", id, nil)
	helpers.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteAccount(r.Context(), userID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditDelete, "account", id, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgDeleted)
}
