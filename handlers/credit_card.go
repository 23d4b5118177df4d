package handlers

import (
	"net/http"
	"strings"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
)

type createCreditCardRequest struct {
	Name       string `json:"name" validate:"required,max=80"`
	Brand      string `json:"brand" validate:"max=40"`
	Limit      string `json:"limit" validate:"required,money"`
	Balance    string `json:"balance" validate:"omitempty,money"`
	ClosingDay int    `json:"closing_day" validate:"required,min=1,max=31"`
	DueDay     int    `json:"due_day" validate:"required,min=1,max=31"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
}

type updateCreditCardRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=80"`
	Brand      *string `json:"brand" validate:"omitempty,max=40"`
	Limit      *string `json:"limit" validate:"omitempty,money"`
	ClosingDay *int    `json:"closing_day" validate:"omitempty,min=1,max=31"`
	DueDay     *int    `json:"due_day" validate:"omitempty,min=1,max=31"`
	Color      *string `json:"color" validate:"omitempty,hexcolor"`
}

var creditCardQuery = helpers.QueryRules{
	SearchField: "name",
	Sortable:    []string{"name", "created_at", "updated_at", "due_day"},
	Filters:     map[string]helpers.Filter{"brand": {Field: "brand"}},
}

func (h *Handler) ListCreditCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q, err := helpers.ParseQuery(r, creditCardQuery)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items, total, err := h.store.CreditCards().List(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writePage(w, items, total, q)
}

func (h *Handler) CreateCreditCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req createCreditCardRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	limit, err := money.Format(req.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	balance, err := money.Format(req.Balance)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	card := &models.CreditCard{
		Name:       strings.TrimSpace(req.Name),
		Brand:      req.Brand,
		Limit:      limit,
		Balance:    balance,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		Color:      req.Color,
	}
	card.UserID = userID

	if err := h.store.CreditCards().Create(r.Context(), card); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "credit_card", card.ID, nil)
	helpers.WriteJSON(w, http.StatusCreated, card)
}

func (h *Handler) GetCreditCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.store.CreditCards().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, card)
}

func (h *Handler) UpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateCreditCardRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	card, err := h.store.CreditCards().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Name != nil {
		card.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		card.Brand = *req.Brand
	}
	if req.Limit != nil {
		if card.Limit, err = money.Format(*req.Limit); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if req.ClosingDay != nil {
		card.ClosingDay = *req.ClosingDay
	}
	if req.DueDay != nil {
		card.DueDay = *req.DueDay
	}
	if req.Color != nil {
		card.Color = *req.Color
	}

	if err := h.store.CreditCards().Update(r.Context(), card); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "credit_card", id, nil)
	helpers.WriteJSON(w, http.StatusOK, card)
}

func (h *Handler) DeleteCreditCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteCreditCard(r.Context(), userID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditDelete, "credit_card", id, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgDeleted)
}
