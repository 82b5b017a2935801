package dispatch

// Broadcaster pushes dispatch events to connected clients. The socket server
// in the api package implements it; a no-op implementation is fine for batch
// jobs and tests.
type Broadcaster interface {
	// Emit sends an event to every client in the dashboard room.
	Emit(event string, payload interface{})

	// EmitToRoom sends an event to a single room, such as the watchers of one
	// emergency or one user's devices.
	EmitToRoom(room, event string, payload interface{})
}

// NopBroadcaster discards every event
type NopBroadcaster struct{}

// Emit implements Broadcaster
func (NopBroadcaster) Emit(string, interface{}) {}

// EmitToRoom implements Broadcaster
func (NopBroadcaster) EmitToRoom(string, string, interface{}) {}
