package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/call-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, adminToken string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// Админский путь требует общий секрет
	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AdminAuth(adminToken))
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/admin", func(ar chi.Router) {
			ar.Get("/media-settings", h.GetMediaSettings)
			ar.Put("/media-settings", h.PutMediaSettings)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", h.Readyz)

	return r
}
