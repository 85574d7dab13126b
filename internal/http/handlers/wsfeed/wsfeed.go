package wsfeed

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	wsHub "github.com/signageops/signage-service/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The admin surface is internal-only; origin checks are left to the
		// reverse proxy in front of it.
		return true
	},
}

// Handler upgrades an ops dashboard connection and subscribes it to the
// signal event feed
func Handler(hub *wsHub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		client := wsHub.NewClient(conn, r.RemoteAddr, hub)
		hub.RegisterClient(client)
		client.Start()

		slog.Info("Ops feed connection established", slog.String("remote", r.RemoteAddr))
	}
}
