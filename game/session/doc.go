// Package session provides session management for the grid soccer
// environment.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management and expiry cleanup
//   - Optional file-backed persistence
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns an independent environment instance plus metadata like
// creation time and last access time.
//
// Session Identifiers:
//
// Sessions use 4-character hexadecimal IDs for easy reference, generated
// with cryptographic randomness and matched case-insensitively.
//
// Persistence:
//
// With a SessionPersistence configured, sessions are written to JSON files
// as a map identifier, team size, seed and state snapshot. Loading a file
// rebuilds the environment from the map and restores the snapshot, so a
// server restart picks up in-flight episodes where they stopped.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", loadedMap, 2, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	sessions := manager.List()
package session
