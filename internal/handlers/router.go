package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter assembles the JSON API routes. Every route runs behind the
// guardian middleware; identity is provisioned on first contact.
func NewRouter(mw *Middleware, children *ChildHandler, measurements *MeasurementHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(Logging)

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.WithGuardian)

		r.Get("/children", children.ListChildren)
		r.Post("/children", children.CreateChild)
		r.Get("/children/{id}", children.GetChild)
		r.Patch("/children/{id}", children.UpdateChild)
		r.Delete("/children/{id}", children.DeleteChild)

		r.Get("/children/{id}/measurements", measurements.ListMeasurements)
		r.Post("/children/{id}/measurements", measurements.CreateMeasurement)
		r.Patch("/measurements/{id}", measurements.UpdateMeasurement)
		r.Delete("/measurements/{id}", measurements.DeleteMeasurement)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
