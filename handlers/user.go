package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/middleware"
	"github.com/UmangSachdeva/fintrack/models"
	"github.com/UmangSachdeva/fintrack/store"
	"github.com/UmangSachdeva/fintrack/utils"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
	Language string `json:"language" validate:"omitempty,oneof=pt-BR en-US es-ES"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Language *string `json:"language" validate:"omitempty,oneof=pt-BR en-US es-ES"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type authResponse struct {
	User   *models.User    `json:"user"`
	Tokens utils.TokenPair `json:"tokens"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	hash, err := helpers.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Language == "" {
		req.Language = i18n.FromContext(r.Context()).String()
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hash,
		Language: req.Language,
	}
	if err := h.store.Users().Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			helpers.WriteError(w, r, http.StatusConflict, i18n.ErrEmailTaken)
			return
		}
		h.fail(w, r, err)
		return
	}

	tokens, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, user.ID, models.AuditSignup, "user", user.ID, nil)
	helpers.WriteJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.Users().GetByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		helpers.WriteError(w, r, http.StatusUnauthorized, i18n.ErrInvalidLogin)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := helpers.CheckPassword(user.Password, req.Password); err != nil {
		if errors.Is(err, helpers.ErrWrongPassword) {
			helpers.WriteError(w, r, http.StatusUnauthorized, i18n.ErrInvalidLogin)
			return
		}
		h.fail(w, r, err)
		return
	}

	tokens, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, user.ID, models.AuditLogin, "user", user.ID, nil)
	helpers.WriteJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	tokens, claims, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Tokens of deleted users must not be renewed.
	if _, err := h.store.Users().GetByID(r.Context(), claims.UserObjectID()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			helpers.WriteError(w, r, http.StatusUnauthorized, i18n.ErrUnauthorized)
			return
		}
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]utils.TokenPair{"tokens": tokens})
}

// Logout revokes the access token in use and, when given, the refresh token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req logoutRequest
	if r.ContentLength > 0 {
		if err := helpers.DecodeJSON(r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	if claims := middleware.Claims(r.Context()); claims != nil {
		if err := h.tokens.Revoke(r.Context(), claims); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	if req.RefreshToken != "" {
		refresh, err := h.tokens.Verify(r.Context(), req.RefreshToken, utils.RefreshToken)
		if err == nil && refresh.UserObjectID() == userID {
			if err := h.tokens.Revoke(r.Context(), refresh); err != nil {
				h.fail(w, r, err)
				return
			}
		}
	}

	h.audit(r, userID, models.AuditLogout, "user", userID, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgLoggedOut)
}

func (h *Handler) GetUserDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Language != nil {
		user.Language = *req.Language
	}

	if err := h.store.Users().Update(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			helpers.WriteError(w, r, http.StatusConflict, i18n.ErrEmailTaken)
			return
		}
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "user", userID, nil)
	helpers.WriteJSON(w, http.StatusOK, user)
}

// DeleteUser removes the account of the caller and signs them out.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.store.Users().Delete(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.uploads.Remove(user.Avatar); err != nil {
		h.log.Warn("remove avatar", zap.String("path", user.Avatar), zap.Error(err))
	}
	if claims := middleware.Claims(r.Context()); claims != nil {
		if err := h.tokens.Revoke(r.Context(), claims); err != nil {
			h.log.Warn("revoke token", zap.Error(err))
		}
	}

	h.audit(r, userID, models.AuditDelete, "user", userID, nil)
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgDeleted)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := helpers.CheckPassword(user.Password, req.CurrentPassword); err != nil {
		h.fail(w, r, err)
		return
	}

	hash, err := helpers.HashPassword(req.NewPassword)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user.Password = hash
	if err := h.store.Users().Update(r.Context(), user); err != nil {
		h.fail(w, r, err)
		return
	}

	h.audit(r, userID, models.AuditUpdate, "user", userID, map[string]any{"field": "password"})
	helpers.WriteMessage(w, r, http.StatusOK, i18n.MsgPasswordChanged)
}

// UploadAvatar stores the "avatar" multipart file and replaces the previous one.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	rule, _ := h.uploads.Rule(helpers.KindAvatar)
	r.Body = http.MaxBytesReader(w, r.Body, rule.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(rule.MaxBytes); err != nil {
		h.failMultipart(w, r, err)
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		h.fail(w, r, &helpers.FieldError{Field: "avatar", Rule: "required"})
		return
	}
	defer file.Close()

	path, err := h.uploads.Save(helpers.KindAvatar, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		_ = h.uploads.Remove(path)
		h.fail(w, r, err)
		return
	}

	previous := user.Avatar
	user.Avatar = path
	if err := h.store.Users().Update(r.Context(), user); err != nil {
		_ = h.uploads.Remove(path)
		h.fail(w, r, err)
		return
	}

	if err := h.uploads.Remove(previous); err != nil {
		h.log.Warn("remove previous avatar", zap.String("path", previous), zap.Error(err))
	}

	h.audit(r, userID, models.AuditUpload, "avatar", userID, map[string]any{"path": path})
	helpers.WriteJSON(w, http.StatusOK, user)
}

// multipartOverhead is the room left for form fields and part headers.
const multipartOverhead = 1 << 20

func (h *Handler) failMultipart(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.fail(w, r, helpers.ErrFileTooLarge)
		return
	}
	h.fail(w, r, errors.Join(helpers.ErrBadBody, err))
}
