// Package websocket provides real-time state streaming for simulation sessions.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State snapshot broadcasting after each environment step
//   - Custom event broadcasting (resets, session deletion)
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// pair of goroutines for reading and writing. All session bookkeeping is
// confined to the hub's Run loop; the exported broadcast methods only post
// messages onto a buffered channel and never touch shared state.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//
//	{"session_id": "ab12", "event": "state_update", "state": {...}}
//
// The state field carries a full Snapshot of the simulation after the step
// that triggered the broadcast. Viewers are read-only: incoming messages are
// drained to keep the connection alive but never acted upon. Actions go
// through the REST API.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=ab12) when establishing the connection.
// State updates are broadcast only to clients watching the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Backpressure:
//
// When the hub's broadcast channel is saturated the newest update is dropped
// rather than blocking the simulation. Slow clients whose send buffers fill
// up are disconnected.
package websocket
