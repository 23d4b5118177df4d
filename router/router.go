package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/UmangSachdeva/fintrack/handlers"
	"github.com/UmangSachdeva/fintrack/helpers"
	"github.com/UmangSachdeva/fintrack/i18n"
	"github.com/UmangSachdeva/fintrack/middleware"
)

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Log            *zap.Logger
}

// Router builds the full HTTP handler: the global middleware chain around the
// public, authenticated and upload routes.
func Router(h *handlers.Handler, opts Options) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteError(w, r, http.StatusNotFound, i18n.ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteError(w, r, http.StatusMethodNotAllowed, i18n.ErrBadRequest)
	})

	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.PathPrefix("/uploads/").Handler(UploadRouter(h)).Methods("GET", "HEAD")

	AuthRouter(r, h)

	restricted := r.PathPrefix("/api/v1").Subrouter()
	restricted.Use(middleware.AuthenticationMiddleware(h.Tokens(), opts.Log))
	ProfileRouter(restricted, h)
	FinanceRouter(restricted, h)
	PaymentRouter(restricted, h)

	var handler http.Handler = r
	if opts.RequestTimeout > 0 {
		handler = middleware.Timeout(opts.RequestTimeout)(handler)
	}
	handler = middleware.Compress(handler)
	handler = middleware.Language(handler)
	handler = middleware.CORSMiddleware(opts.CORSOrigins)(handler)
	handler = middleware.Logging(opts.Log)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

// UploadRouter serves stored files under /uploads/{kind}/{file}.
func UploadRouter(h *handlers.Handler) http.Handler {
	r := mux.NewRouter()
	r.Handle("/uploads/{kind}/{file}", http.StripPrefix("/uploads", http.FileServer(h.Uploads().FS())))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteError(w, r, http.StatusNotFound, i18n.ErrNotFound)
	})
	return r
}
