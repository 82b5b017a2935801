package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	socketio "github.com/googollee/go-socket.io"

	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// driver apps connect from their own origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Telemetry exported for testing purposes
type Telemetry struct {
	DB     databases.AmbulanceDatabase
	Server *socketio.Server
}

// TelemetryHandler upgrades to a raw websocket and streams ambulance position
// reports. Each frame is the same JSON payload the socket.io ambulance:move
// event takes; samples are persisted and fanned out to watchers. Used by
// onboard GPS units that speak plain websockets rather than socket.io.
func (t Telemetry) TelemetryHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		config.ErrorStatus("failed to upgrade connection", http.StatusBadRequest, w, err)
		return
	}
	defer conn.Close()

	zap.S().Debugw("telemetry stream opened",
		"remote", conn.RemoteAddr().String())

	for {
		var event moveEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Warnw("telemetry stream closed unexpectedly",
					"error", err)
			}
			return
		}
		handleAmbulanceMove(t.DB, t.Server, event)
	}
}
