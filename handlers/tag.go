package handlers

import (
	"net/http"
	"strings"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/models"
)

type createTagRequest struct {
	Name  string `json:"name" validate:"required,max=40"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type updateTagRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=40"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

var tagQuery = helpers.QueryRules{
	SearchField: "name",
	Sortable:    []string{"name", "created_at", "updated_at"},
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q, err := helpers.ParseQuery(r, tagQuery)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items, total, err := h.store.Tags().List(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writePage(w, items, total, q)
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req createTagRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	tag := &models.Tag{Name: strings.TrimSpace(req.Name), Color: req.Color}
	tag.UserID = userID

	if err := h.store.Tags().Create(r.Context(), tag); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "tag", tag.ID, nil)
	helpers.WriteJSON(w, http.StatusCreated, tag)
}

func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	tag, err := h.store.Tags().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, tag)
}

func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateTagRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	tag, err := h.store.Tags().Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Name != nil {
		tag.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}

	if err := h.store.Tags().Update(r.Context(), tag); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "tag", id, nil)
	helpers.WriteJSON(w, http.StatusOK, tag)
}

func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteTag(r.Context(), userID, id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditDelete, "tag", id, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgDeleted)
}
