package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/DoyleJ11/battlegrid-backend/internal/dispatch"
)

// Sessions is a read-only lobby list for dashboards; game clients get
// the same records over their connect reply and broadcasts.
func Sessions(d *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Sessions any `json:"sessions"`
		}{Sessions: d.SessionList()})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
