package router

import (
	"github.com/gorilla/mux"

	"github.com/UmangSachdeva/fintrack/handlers"
)

func PaymentRouter(r *mux.Router, h *handlers.Handler) {
	r.HandleFunc("/bank-links/token", h.LinkUser).Methods("POST")
}
