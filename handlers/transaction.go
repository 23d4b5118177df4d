package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
	"github.com/UmangSachdeva/fintrack/service"
)

// amount accepts a JSON string or number and keeps its text.
type amount string

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amount(n.String())
	return nil
}

type createTransactionRequest struct {
	Description   string   `json:"description" validate:"required,max=200"`
	Amount        amount   `json:"amount" validate:"required,money"`
	Type          string   `json:"type" validate:"required,oneof=income expense"`
	Source        string   `json:"source" validate:"required,oneof=account creditCard"`
	AccountID     string   `json:"account_id" validate:"omitempty,objectid"`
	CreditCardID  string   `json:"credit_card_id" validate:"omitempty,objectid"`
	CategoryID    string   `json:"category_id" validate:"omitempty,objectid"`
	SubcategoryID string   `json:"subcategory_id" validate:"omitempty,objectid"`
	TagIDs        []string `json:"tag_ids" validate:"omitempty,max=20,dive,objectid"`
	Date          string   `json:"date"`
	Notes         string   `json:"notes" validate:"max=500"`
}

type updateTransactionRequest struct {
	Description   *string   `json:"description" validate:"omitempty,min=1,max=200"`
	Amount        *amount   `json:"amount" validate:"omitnil,money"`
	Type          *string   `json:"type" validate:"omitempty,oneof=income expense"`
	Source        *string   `json:"source" validate:"omitempty,oneof=account creditCard"`
	AccountID     *string   `json:"account_id" validate:"omitempty,objectid"`
	CreditCardID  *string   `json:"credit_card_id" validate:"omitempty,objectid"`
	CategoryID    *string   `json:"category_id" validate:"omitempty,objectid"`
	SubcategoryID *string   `json:"subcategory_id" validate:"omitempty,objectid"`
	TagIDs        *[]string `json:"tag_ids" validate:"omitempty,max=20,dive,objectid"`
	Date          *string   `json:"date"`
	Notes         *string   `json:"notes" validate:"omitempty,max=500"`
}

var transactionQuery = helpers.QueryRules{
	SearchField: "description",
	Sortable:    []string{"date", "created_at", "updated_at", "description"},
	Filters: map[string]helpers.Filter{
		"type":           {Field: "type"},
		"source":         {Field: "source"},
		"account_id":     {Field: "account_id", Kind: helpers.FilterObjectID},
		"credit_card_id": {Field: "credit_card_id", Kind: helpers.FilterObjectID},
		"category_id":    {Field: "category_id", Kind: helpers.FilterObjectID},
		"subcategory_id": {Field: "subcategory_id", Kind: helpers.FilterObjectID},
		"tag_id":         {Field: "tag_ids", Kind: helpers.FilterObjectID},
	},
	Dated: true,
}

// objectID converts an already validated hex id. Empty means absent.
func objectID(hex string) *primitive.ObjectID {
	if hex == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &id
}

func objectIDs(hexes []string) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, hex := range hexes {
		if id := objectID(hex); id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}

func parseTransactionDate(v string) (time.Time, error) {
	t, err := helpers.ParseDate(v, false)
	if err != nil {
		return time.Time{}, &helpers.FieldError{Field: "date", Rule: "datetime"}
	}
	if t == nil {
		return time.Time{}, nil
	}
	return *t, nil
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q, err := helpers.ParseQuery(r, transactionQuery)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("sort") == "" {
		q.Sort = "date"
	}

	items, total, err := h.store.Transactions().List(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writePage(w, items, total, q)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	date, err := parseTransactionDate(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	txn, err := h.ledger.CreateTransaction(r.Context(), userID, service.TransactionInput{
		Description:   strings.TrimSpace(req.Description),
		Amount:        string(req.Amount),
		Type:          money.TransactionType(req.Type),
		Source:        money.TransactionSource(req.Source),
		AccountID:     objectID(req.AccountID),
		CreditCardID:  objectID(req.CreditCardID),
		CategoryID:    objectID(req.CategoryID),
		SubcategoryID: objectID(req.SubcategoryID),
		TagIDs:        objectIDs(req.TagIDs),
		Date:          date,
		Notes:         req.Notes,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "transaction", txn.ID, map[string]any{
		"amount": txn.Amount,
		"type":   string(txn.Type),
		"source": string(txn.Source),
	})
	helpers.WriteJSON(w, http.StatusCreated, txn)
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	txn, err := h.store.Transactions().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, txn)
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	var patch service.TransactionPatch
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		patch.Description = &description
	}
	if req.Amount != nil {
		patch.Amount = string(*req.Amount)
	}
	if req.Type != nil {
		t := money.TransactionType(*req.Type)
		patch.Type = &t
	}
	if req.Source != nil {
		s := money.TransactionSource(*req.Source)
		patch.Source = &s
	}
	if req.AccountID != nil {
		patch.AccountID = objectID(*req.AccountID)
	}
	if req.CreditCardID != nil {
		patch.CreditCardID = objectID(*req.CreditCardID)
	}
	// An empty id removes the reference; null or absent leaves it alone.
	if req.CategoryID != nil {
		patch.CategoryID = objectID(*req.CategoryID)
		patch.ClearCategory = patch.CategoryID == nil
	}
	if req.SubcategoryID != nil {
		patch.SubcategoryID = objectID(*req.SubcategoryID)
		patch.ClearSubcategory = patch.SubcategoryID == nil
	}
	if req.TagIDs != nil {
		tags := objectIDs(*req.TagIDs)
		patch.TagIDs = &tags
	}
	if req.Date != nil {
		date, err := parseTransactionDate(*req.Date)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if !date.IsZero() {
			patch.Date = &date
		}
	}
	if req.Notes != nil {
		patch.Notes = req.Notes
	}

	txn, err := h.ledger.UpdateTransaction(r.Context(), userID, id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "transaction", id, map[string]any{
		"amount": txn.Amount,
		"type":   string(txn.Type),
		"source": string(txn.Source),
	})
	helpers.WriteJSON(w, http.StatusOK, txn)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditDelete, "transaction", id, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgDeleted)
}

func (h *Handler) TransactionSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	from, err := helpers.ParseDate(r.URL.Query().Get("from"), false)
	if err != nil {
		h.fail(w, r, helpers.ErrInvalidQuery)
		return
	}
	to, err := helpers.ParseDate(r.URL.Query().Get("to"), true)
	if err != nil {
		h.fail(w, r, helpers.ErrInvalidQuery)
		return
	}

	summary, err := h.ledger.Summary(r.Context(), userID, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, summary)
}
