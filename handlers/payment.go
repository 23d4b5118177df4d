package handlers

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/models"
)

// LinkUser creates a Plaid Link token for the caller.
func (h *Handler) LinkUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	base, _ := i18n.FromContext(r.Context()).Base()

	token, err := h.banks.CreateLinkToken(r.Context(), userID, base.String())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "bank_link", primitive.NilObjectID, nil)

	response := struct {
		Status     string    `json:"status"`
		LinkToken  string    `json:"link_token"`
		Expiration time.Time `json:"expiration"`
	}{
		Status:     "success",
		LinkToken:  token.LinkToken,
		Expiration: token.Expiration,
	}

	helpers.WriteJSON(w, http.StatusCreated, response)
}
