package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gridsoccer/gridsoccer/game/engine"
)

// envServiceImpl implements the EnvService interface
type envServiceImpl struct {
	sessions SessionManager
	maps     MapManager
	traces   map[string][]TraceEntry
	mu       sync.RWMutex
}

// NewEnvService creates a new environment service instance
func NewEnvService(sessions SessionManager, maps MapManager) EnvService {
	return &envServiceImpl{
		sessions: sessions,
		maps:     maps,
		traces:   make(map[string][]TraceEntry),
	}
}

// CreateSession creates a new environment session
func (s *envServiceImpl) CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m *LoadedMap
	if opts.MapName != "" {
		var err error
		m, err = s.maps.LoadMap(opts.MapName)
		if err != nil {
			if infos, listErr := s.maps.ListMaps(); listErr == nil && len(infos) > 0 {
				ids := make([]string, 0, len(infos))
				for _, info := range infos {
					ids = append(ids, info.MapID)
				}
				return nil, fmt.Errorf("map '%s' not found, available maps: %v", opts.MapName, ids)
			}
			return nil, fmt.Errorf("failed to load map %s: %w", opts.MapName, err)
		}
	} else {
		m = s.maps.GetDefault()
	}

	teamSize := opts.TeamSize
	if teamSize == 0 {
		teamSize = 1
	}

	// Let session manager generate a 4-character ID
	sess, err := s.sessions.Create("", m, teamSize, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.traces[traceKey(sess.ID)] = nil

	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *envServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *envServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and its episode trace
func (s *envServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.traces, traceKey(sessionID))
	return s.sessions.Delete(sessionID)
}

// Step advances a session by one simulation step. Action names are parsed
// here; the engine below this point only sees typed actions.
func (s *envServiceImpl) Step(ctx context.Context, sessionID string, actions []string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	parsed := make([]engine.Action, len(actions))
	for i, name := range actions {
		action, err := engine.ParseAction(name)
		if err != nil {
			return nil, err
		}
		parsed[i] = action
	}

	state := sess.Env.State()
	before := make([]engine.Position, state.AgentSize())
	for i := range before {
		before[i] = state.AgentPosition(i)
	}

	obs, err := sess.Env.Step(parsed...)
	if err != nil {
		return nil, err
	}

	result := &StepResult{
		TimeStep: state.TimeStep(),
		Actions:  actionNames(parsed),
		Reward:   obs.Reward,
		Terminal: state.IsTerminal(),
		State:    state.Snapshot(),
		Steps:    agentSteps(sess.Env, before),
	}
	result.BallHolder = ballInfo(state)

	s.traces[traceKey(sess.ID)] = append(s.traces[traceKey(sess.ID)], TraceEntry{
		Step:     result.TimeStep,
		Actions:  result.Actions,
		Reward:   result.Reward,
		Terminal: result.Terminal,
		State:    result.State,
	})

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("[service] failed to persist session %s after step: %v", sessionID, err)
	}

	return result, nil
}

// Reset reinitializes a session's episode and clears its trace
func (s *envServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	obs := sess.Env.Reset()
	s.traces[traceKey(sess.ID)] = nil

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("[service] failed to persist session %s after reset: %v", sessionID, err)
	}

	return obs.State.Snapshot(), nil
}

// GetState retrieves the current session state
func (s *envServiceImpl) GetState(ctx context.Context, sessionID string) (*StateInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Env.State()
	return &StateInfo{
		SessionID:  sess.ID,
		MapID:      sess.MapID,
		TimeStep:   state.TimeStep(),
		Terminal:   state.IsTerminal(),
		BallHolder: ballInfo(state),
		State:      state.Snapshot(),
	}, nil
}

// GetTrace returns the paginated trace of the current episode
func (s *envServiceImpl) GetTrace(ctx context.Context, sessionID string, opts TraceOptions) (*TraceResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.sessions.Get(sessionID); err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	trace := s.traces[traceKey(sessionID)]
	total := len(trace)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	steps := []TraceEntry{}
	if opts.Order == "desc" {
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			steps = append(steps, trace[i])
		}
	} else if start < total {
		steps = append(steps, trace[start:end]...)
	}

	return &TraceResponse{
		Steps:       steps,
		TotalSteps:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListMaps returns available maps
func (s *envServiceImpl) ListMaps(ctx context.Context) ([]*MapInfo, error) {
	return s.maps.ListMaps()
}

// LoadMap loads a specific map configuration
func (s *envServiceImpl) LoadMap(ctx context.Context, mapName string) (*engine.MapConfig, error) {
	m, err := s.maps.LoadMap(mapName)
	if err != nil {
		return nil, err
	}
	return m.Config, nil
}

// SaveMap saves a map configuration to disk
func (s *envServiceImpl) SaveMap(ctx context.Context, mapName string, cfg *engine.MapConfig) error {
	return s.maps.SaveMap(mapName, cfg)
}

func sessionInfo(sess *Session) *SessionInfo {
	state := sess.Env.State()
	return &SessionInfo{
		ID:             sess.ID,
		MapID:          sess.MapID,
		TeamSize:       sess.Env.Options().TeamSize,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Terminal:       state.IsTerminal(),
		State:          state.Snapshot(),
	}
}

func ballInfo(state *engine.State) *BallInfo {
	team, _, idx, err := state.BallHolder()
	if err != nil {
		return nil
	}
	return &BallInfo{Team: team.String(), Index: idx}
}

func agentSteps(env *engine.Environment, before []engine.Position) []AgentStepInfo {
	state := env.State()
	opts := env.Options()
	steps := make([]AgentStepInfo, state.AgentSize())
	for i := range steps {
		steps[i] = AgentStepInfo{
			Index:   i,
			Team:    opts.TeamOf(i).String(),
			Action:  state.AgentLastAction(i).String(),
			From:    before[i],
			To:      state.AgentPosition(i),
			HasBall: state.AgentHasBall(i),
		}
	}
	return steps
}

func actionNames(actions []engine.Action) []string {
	names := make([]string, len(actions))
	for i, action := range actions {
		names[i] = action.String()
	}
	return names
}

func traceKey(sessionID string) string {
	return strings.ToLower(sessionID)
}
