package handlers

import (
	"net/http"

	"github.com/UmangSachdeva/fintrack/helpers"
)

var auditQuery = helpers.QueryRules{
	Sortable: []string{"created_at"},
	Filters: map[string]helpers.Filter{
		"action": {Field: "action"},
		"entity": {Field: "entity"},
	},
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q, err := helpers.ParseQuery(r, auditQuery)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items, total, err := h.auditor.List(r.Context(), userID, q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writePage(w, items, total, q)
}
