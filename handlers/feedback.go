package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/models"
)

type feedbackRequest struct {
	Subject string `json:"subject" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SubmitFeedback accepts a multipart form with subject, message and up to the
// configured number of "attachments".
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	rule, _ := h.uploads.Rule(helpers.KindFeedback)
	r.Body = http.MaxBytesReader(w, r.Body, int64(rule.MaxFiles)*rule.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(rule.MaxBytes); err != nil {
		h.failMultipart(w, r, err)
		return
	}

	req := feedbackRequest{
		Subject: strings.TrimSpace(r.FormValue("subject")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
	if err := helpers.Validate(&req); err != nil {
		h.fail(w, r, err)
		return
	}

	files := r.MultipartForm.File["attachments"]
	if len(files) > rule.MaxFiles {
		h.fail(w, r, helpers.ErrTooManyFiles)
		return
	}

	saved := make([]string, 0, len(files))
	cleanup := func() {
		for _, path := range saved {
			if err := h.uploads.Remove(path); err != nil {
				h.log.Warn("remove attachment", zap.String("path", path), zap.Error(err))
			}
		}
	}

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			cleanup()
			h.fail(w, r, err)
			return
		}
		path, err := h.uploads.Save(helpers.KindFeedback, file)
		file.Close()
		if err != nil {
			cleanup()
			h.fail(w, r, err)
			return
		}
		saved = append(saved, path)
	}

	feedback := &models.Feedback{Subject: req.Subject, Message: req.Message, Attachments: saved}
	feedback.UserID = userID

	if err := h.store.Feedback().Create(r.Context(), feedback); err != nil {
		cleanup()
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditCreate, "feedback", feedback.ID, map[string]any{"attachments": len(saved)})
	helpers.WriteJSON(w, http.StatusCreated, feedback)
}
