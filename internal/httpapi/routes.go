package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battlegrid-backend/internal/dispatch"
	"github.com/DoyleJ11/battlegrid-backend/internal/hub"
	"github.com/DoyleJ11/battlegrid-backend/internal/ws"
)

func SetupRoutes(d *dispatch.Dispatcher, h *hub.Hub, serverName string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/sessions", Sessions(d))
	r.Get("/ws", ws.Handler(d, h, serverName, logger))
	return r
}
