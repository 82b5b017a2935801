package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/models"
)

// broadcastRoom is joined by every connection so platform-wide events reach
// all clients.
const broadcastRoom = "broadcast"

// SocketBroadcaster fans events out over the socket.io server. It satisfies
// the dispatch broadcaster so dispatch decisions reach connected clients.
type SocketBroadcaster struct {
	Server *socketio.Server
}

// Emit sends an event to every connected client
func (b SocketBroadcaster) Emit(event string, payload interface{}) {
	b.Server.BroadcastToRoom("/", broadcastRoom, event, payload)
}

// EmitToRoom sends an event to clients subscribed to a room
func (b SocketBroadcaster) EmitToRoom(room, event string, payload interface{}) {
	b.Server.BroadcastToRoom("/", room, event, payload)
}

// moveEvent is the inbound ambulance position report
type moveEvent struct {
	AmbulanceID string    `json:"ambulanceId"`
	Coordinates []float64 `json:"coordinates"`
}

// NewSocketServer wires up the socket.io server: room subscriptions for
// emergencies, users and the dashboard, plus the ambulance position stream.
func NewSocketServer(ambulanceDB databases.AmbulanceDatabase) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		s.Join(broadcastRoom)
		zap.S().Debugw("socket connected",
			"socketID", s.ID())
		return nil
	})

	server.OnEvent("/", "emergency:subscribe", func(s socketio.Conn, emergencyID string) {
		s.Join(fmt.Sprintf("emergency:%s", emergencyID))
	})

	server.OnEvent("/", "emergency:unsubscribe", func(s socketio.Conn, emergencyID string) {
		s.Leave(fmt.Sprintf("emergency:%s", emergencyID))
	})

	server.OnEvent("/", "user:subscribe", func(s socketio.Conn, userID string) {
		s.Join(fmt.Sprintf("user:%s", userID))
	})

	server.OnEvent("/", "dashboard:subscribe", func(s socketio.Conn) {
		s.Join("dashboard")
	})

	server.OnEvent("/", "ambulance:move", func(s socketio.Conn, msg string) {
		var event moveEvent
		if err := json.Unmarshal([]byte(msg), &event); err != nil {
			zap.S().Warnw("malformed ambulance:move payload",
				"error", err)
			return
		}
		handleAmbulanceMove(ambulanceDB, server, event)
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		zap.S().Errorw("socket error",
			"error", err)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		zap.S().Debugw("socket disconnected",
			"socketID", s.ID(),
			"reason", reason)
	})

	return server
}

// handleAmbulanceMove persists a position sample and rebroadcasts it to the
// fleet watchers. Bad ids and stale ambulances are logged and dropped, a
// single bad sample must not tear down the stream.
func handleAmbulanceMove(ambulanceDB databases.AmbulanceDatabase, server *socketio.Server, event moveEvent) {
	point := models.GeoPoint{Type: "Point", Coordinates: event.Coordinates}
	if !point.Valid() {
		zap.S().Warnw("invalid ambulance position",
			"ambulanceId", event.AmbulanceID,
			"coordinates", event.Coordinates)
		return
	}

	ambulanceID, err := primitive.ObjectIDFromHex(event.AmbulanceID)
	if err != nil {
		zap.S().Warnw("invalid ambulance id in position report",
			"ambulanceId", event.AmbulanceID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ambulance, err := ambulanceDB.PushLocation(ctx, ambulanceID, event.Coordinates, time.Now())
	if err != nil {
		zap.S().Errorw("failed to record ambulance position",
			"ambulanceId", event.AmbulanceID,
			"error", err)
		return
	}

	server.BroadcastToRoom("/", broadcastRoom, "ambulance:move", ambulance)
	if ambulance.AssignedEmergency != nil {
		room := fmt.Sprintf("emergency:%s", ambulance.AssignedEmergency.Hex())
		server.BroadcastToRoom("/", room, "ambulance:move", ambulance)
	}
}
