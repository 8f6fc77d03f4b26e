// Package api provides HTTP REST handlers for the simulation service.
//
// The api package implements:
//   - RESTful endpoints for session lifecycle and environment operations
//   - Map listing, retrieval, and creation
//   - Episode trace retrieval with pagination
//   - WebSocket upgrade handling for state streaming
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session
//   - GET /api/sessions - List sessions (sort, order, limit)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Environment Operations:
//   - GET /api/sessions/{id}/state - Current state snapshot
//   - POST /api/sessions/{id}/step - Advance the simulation one time step
//   - POST /api/sessions/{id}/reset - Reset the episode
//   - GET /api/sessions/{id}/trace - Episode trace with pagination
//
// Maps:
//   - GET /api/maps - List available maps
//   - GET /api/maps/{name} - Get a map definition
//   - POST /api/maps - Save a new map definition
//
// Request/Response Format:
//
// All endpoints accept and return JSON. A step request carries one action
// name per player agent:
//
//	{
//	  "actions": ["MOVE_UP", "STAND"],
//	  "action": "MOVE_UP"  // single-agent shorthand
//	}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	server := api.NewServer(envService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes. Unknown
// action names and invalid arguments map to 400, missing sessions and maps
// to 404:
//
//	{
//	  "error": "parse action: unknown key \"TELEPORT\""
//	}
package api
