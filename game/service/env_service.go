package service

import (
	"context"
	"time"

	"github.com/gridsoccer/gridsoccer/game/engine"
)

// EnvService defines all environment-related operations
type EnvService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Environment Operations
	Step(ctx context.Context, sessionID string, actions []string) (*StepResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Environment State
	GetState(ctx context.Context, sessionID string) (*StateInfo, error)
	GetTrace(ctx context.Context, sessionID string, opts TraceOptions) (*TraceResponse, error)

	// Maps
	ListMaps(ctx context.Context) ([]*MapInfo, error)
	LoadMap(ctx context.Context, mapName string) (*engine.MapConfig, error)
	SaveMap(ctx context.Context, mapName string, cfg *engine.MapConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, m *LoadedMap, teamSize int, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, m *LoadedMap, teamSize int, seed int64) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// MapManager handles map loading
type MapManager interface {
	LoadMap(name string) (*LoadedMap, error)
	ListMaps() ([]*MapInfo, error)
	GetDefault() *LoadedMap
	SaveMap(name string, cfg *engine.MapConfig) error
}

// LoadedMap bundles a map configuration with its compiled tile sets. The
// compiled MapData is shared by every environment created from the map.
type LoadedMap struct {
	ID     string
	Config *engine.MapConfig
	Data   *engine.MapData
}

// Session represents an active environment session
type Session struct {
	ID             string
	Env            *engine.Environment
	MapID          string
	Seed           int64
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
