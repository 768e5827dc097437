package api

import (
	"net/http"

	"github.com/brightloop/pulse/internal/store"
)

// Liveness serves GET /api/ (§6, supplemented from original_source's
// root health route): a status object rather than a bare 200, carrying
// the current monitor count.
//
// @Summary  Liveness
// @Tags     health
// @Produce  json
// @Success  200 {object} object{status=string,monitors=int}
// @Router   / [get]
func Liveness(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitors, err := s.ListMonitors()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "store unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"monitors": len(monitors),
		})
	}
}
