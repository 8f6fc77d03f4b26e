package service

import (
	"time"

	"github.com/gridsoccer/gridsoccer/game/engine"
)

// CreateSessionOptions configures a new environment session
type CreateSessionOptions struct {
	MapName  string `json:"map_name,omitempty"`
	TeamSize int    `json:"team_size,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
}

// SessionInfo provides information about an environment session
type SessionInfo struct {
	ID             string           `json:"id"`
	MapID          string           `json:"map_id"`
	TeamSize       int              `json:"team_size"`
	Seed           int64            `json:"seed,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Terminal       bool             `json:"terminal"`
	State          *engine.Snapshot `json:"state"`
}

// StepResult contains the result of a step operation
type StepResult struct {
	TimeStep   int              `json:"time_step"`
	Actions    []string         `json:"actions"`
	Reward     float64          `json:"reward"`
	Terminal   bool             `json:"terminal"`
	BallHolder *BallInfo        `json:"ball_holder,omitempty"`
	State      *engine.Snapshot `json:"state"`
	Steps      []AgentStepInfo  `json:"steps"`
}

// AgentStepInfo is a compact per-agent record of one executed step
type AgentStepInfo struct {
	Index   int             `json:"index"`
	Team    string          `json:"team"`
	Action  string          `json:"action"`
	From    engine.Position `json:"from"`
	To      engine.Position `json:"to"`
	HasBall bool            `json:"has_ball"`
}

// BallInfo identifies the agent holding the ball
type BallInfo struct {
	Team  string `json:"team"`
	Index int    `json:"index"`
}

// StateInfo is the full observable state of a session
type StateInfo struct {
	SessionID  string           `json:"session_id"`
	MapID      string           `json:"map_id"`
	TimeStep   int              `json:"time_step"`
	Terminal   bool             `json:"terminal"`
	BallHolder *BallInfo        `json:"ball_holder,omitempty"`
	State      *engine.Snapshot `json:"state"`
}

// TraceEntry records one executed step of the current episode
type TraceEntry struct {
	Step     int              `json:"step"`
	Actions  []string         `json:"actions"`
	Reward   float64          `json:"reward"`
	Terminal bool             `json:"terminal"`
	State    *engine.Snapshot `json:"state"`
}

// TraceOptions configures episode trace retrieval
type TraceOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// TraceResponse contains a paginated episode trace
type TraceResponse struct {
	Steps       []TraceEntry `json:"steps"`
	TotalSteps  int          `json:"total_steps"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	TotalPages  int          `json:"total_pages"`
	HasNext     bool         `json:"has_next"`
	HasPrevious bool         `json:"has_previous"`
}

// MapInfo provides information about an available map
type MapInfo struct {
	Filename       string `json:"filename"`
	MapID          string `json:"map_id"` // The identifier to use for session creation
	Name           string `json:"name"`   // Display name
	Description    string `json:"description"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	PlayerSpawns   int    `json:"player_spawns"`
	ComputerSpawns int    `json:"computer_spawns"`
}
