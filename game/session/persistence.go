package session

import (
	"time"

	"github.com/gridsoccer/gridsoccer/game/engine"
	"github.com/gridsoccer/gridsoccer/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(sess *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON structure for persisted sessions. The
// environment is stored as its map identifier, team size, seed and a state
// snapshot; loading rebuilds the environment and restores the snapshot.
type PersistedSessionData struct {
	ID             string           `json:"id"`
	MapID          string           `json:"map_id"`
	TeamSize       int              `json:"team_size"`
	Seed           int64            `json:"seed"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	State          *engine.Snapshot `json:"state"`
}
