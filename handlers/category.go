package handlers

import (
	"net/http"
	"strings"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/money"
)

type createCategoryRequest struct {
	Name  string `json:"name" validate:"required,max=60"`
	Type  string `json:"type" validate:"required,oneof=income expense"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
	Icon  string `json:"icon" validate:"max=40"`
}

// The type is fixed once created since transactions are checked against it.
type updateCategoryRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=60"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
	Icon  *string `json:"icon" validate:"omitempty,max=40"`
}

type subcategoryRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

var categoryQuery = helpers.QueryRules{
	SearchField: "name",
	Sortable:    []string{"name", "created_at", "updated_at"},
	Filters:     map[string]helpers.Filter{"type": {Field: "type"}},
}

var subcategoryQuery = helpers.QueryRules{
	SearchField: "name",
	Sortable:    []string{"name", "created_at", "updated_at"},
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q, err := helpers.ParseQuery(r, categoryQuery)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items, total, err := h.store.Categories().List(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writePage(w, items, total, q)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req createCategoryRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category := &models.Category{
		Name:  strings.TrimSpace(req.Name),
		Type:  money.TransactionType(req.Type),
		Color: req.Color,
		Icon:  req.Icon,
	}
	category.UserID = userID

	if err := h.store.Categories().Create(r.Context(), category); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "category", category.ID, nil)
	helpers.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.store.Categories().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateCategoryRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	category, err := h.store.Categories().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}

	if err := h.store.Categories().Update(r.Context(), category); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "category", id, nil)
	helpers.WriteJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteCategory(r.Context(), userID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditDelete, "category", id, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgDeleted)
}

func (h *Handler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.store.Categories().Get(r.Context(), userID, categoryID); err != nil {
		h.fail(w, r, err)
		return
	}

	q, err := helpers.ParseQuery(r, subcategoryQuery)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q = q.Where("category_id", categoryID)

	items, total, err := h.store.Subcategories().List(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writePage(w, items, total, q)
}

func (h *Handler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req subcategoryRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.store.Categories().Get(r.Context(), userID, categoryID); err != nil {
		h.fail(w, r, err)
		return
	}

	sub := &models.Subcategory{CategoryID: categoryID, Name: strings.TrimSpace(req.Name)}
	sub.UserID = userID

	if err := h.store.Subcategories().Create(r.Context(), sub); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "subcategory", sub.ID, map[string]any{"category_id": categoryID.Hex()})
	helpers.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) GetSubcategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	sub, err := h.store.Subcategories().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req subcategoryRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	sub, err := h.store.Subcategories().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sub.Name = strings.TrimSpace(req.Name)
	if err := h.store.Subcategories().Update(r.Context(), sub); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "subcategory", id, nil)
	helpers.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteSubcategory(r.Context(), userID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditDelete, "subcategory", id, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgDeleted)
}
