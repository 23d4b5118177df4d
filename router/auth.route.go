package router

import (
	"github.com/gorilla/mux"

	"github.com/UmangSachdeva/fintrack/handlers"
)

// AuthRouter registers the public auth routes.
func AuthRouter(r *mux.Router, h *handlers.Handler) {
	r.HandleFunc("/api/v1/auth/signup", h.RegisterUser).Methods("POST")
	r.HandleFunc("/api/v1/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/api/v1/auth/refresh", h.RefreshToken).Methods("POST")
}

// ProfileRouter registers the signed-in user's routes on the restricted router.
func ProfileRouter(r *mux.Router, h *handlers.Handler) {
	r.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	r.HandleFunc("/auth/me", h.GetUserDetails).Methods("GET")
	r.HandleFunc("/auth/me", h.UpdateUser).Methods("PATCH")
	r.HandleFunc("/auth/me", h.DeleteUser).Methods("DELETE")
	r.HandleFunc("/auth/me/avatar", h.UploadAvatar).Methods("POST")
	r.HandleFunc("/auth/me/password", h.ChangePassword).Methods("PUT")
	r.HandleFunc("/audit-logs", h.ListAuditLogs).Methods("GET")
	r.HandleFunc("/feedback", h.SubmitFeedback).Methods("POST")
}
