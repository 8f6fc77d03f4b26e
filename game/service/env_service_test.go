package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gridsoccer/gridsoccer/game/engine"
	"github.com/gridsoccer/gridsoccer/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, loaded *service.LoadedMap, teamSize int, seed int64) (*service.Session, error) {
	// Generate ID if empty (mimics the real session manager)
	if id == "" {
		id = fmt.Sprintf("te%02d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	env, err := engine.NewEnvironment(engine.Options{
		TeamSize: teamSize,
		Map:      loaded.Data,
		Seed:     seed,
	})
	if err != nil {
		return nil, err
	}

	sess := &service.Session{
		ID:             id,
		Env:            env,
		MapID:          loaded.ID,
		Seed:           seed,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	sess, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

func (m *MockSessionManager) GetOrCreate(id string, loaded *service.LoadedMap, teamSize int, seed int64) (*service.Session, error) {
	if sess, exists := m.sessions[id]; exists {
		return sess, nil
	}
	return m.Create(id, loaded, teamSize, seed)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if sess, exists := m.sessions[id]; exists {
		sess.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	return nil
}

// MockMapManager implements service.MapManager for testing
type MockMapManager struct {
	maps map[string]*service.LoadedMap
}

func NewMockMapManager(t *testing.T) *MockMapManager {
	t.Helper()
	cfg := &engine.MapConfig{
		Name:        "test",
		Description: "Map used in tests",
		Layout: []string{
			"#.....#",
			"#.P.C.#",
			"c.P.C.p",
			"#.P.C.#",
			"#.....#",
		},
		Legend: map[string]string{
			".": engine.KindGround,
			"P": engine.KindPlayerSpawn,
			"C": engine.KindComputerSpawn,
			"p": engine.KindPlayerGoal,
			"c": engine.KindComputerGoal,
			"#": engine.KindWall,
		},
	}
	data, err := engine.CompileMap(cfg)
	if err != nil {
		t.Fatalf("Failed to compile test map: %v", err)
	}
	loaded := &service.LoadedMap{ID: "test", Config: cfg, Data: data}
	return &MockMapManager{
		maps: map[string]*service.LoadedMap{
			"test":    loaded,
			"default": loaded,
		},
	}
}

func (m *MockMapManager) LoadMap(name string) (*service.LoadedMap, error) {
	loaded, exists := m.maps[name]
	if !exists {
		return nil, errors.New("map not found")
	}
	return loaded, nil
}

func (m *MockMapManager) ListMaps() ([]*service.MapInfo, error) {
	result := make([]*service.MapInfo, 0, len(m.maps))
	for name, loaded := range m.maps {
		result = append(result, &service.MapInfo{
			Filename:    name + ".json",
			MapID:       name,
			Name:        loaded.Config.Name,
			Description: loaded.Config.Description,
			Width:       loaded.Data.Width(),
			Height:      loaded.Data.Height(),
		})
	}
	return result, nil
}

func (m *MockMapManager) GetDefault() *service.LoadedMap {
	return m.maps["default"]
}

func (m *MockMapManager) SaveMap(name string, cfg *engine.MapConfig) error {
	data, err := engine.CompileMap(cfg)
	if err != nil {
		return err
	}
	m.maps[name] = &service.LoadedMap{ID: name, Config: cfg, Data: data}
	return nil
}

func newTestService(t *testing.T) service.EnvService {
	t.Helper()
	return service.NewEnvService(NewMockSessionManager(), NewMockMapManager(t))
}

func TestEnvServiceCreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name    string
		opts    service.CreateSessionOptions
		wantErr bool
	}{
		{"default map and team size", service.CreateSessionOptions{}, false},
		{"specific map", service.CreateSessionOptions{MapName: "test", TeamSize: 2, Seed: 9}, false},
		{"unknown map", service.CreateSessionOptions{MapName: "nowhere"}, true},
		{"invalid team size", service.CreateSessionOptions{TeamSize: 7}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if info.ID == "" {
				t.Error("Expected a session ID")
			}
			if info.State == nil {
				t.Error("Expected an initial state snapshot")
			}
			if info.Terminal {
				t.Error("Fresh session reported terminal")
			}
			wantTeam := tt.opts.TeamSize
			if wantTeam == 0 {
				wantTeam = 1
			}
			if info.TeamSize != wantTeam {
				t.Errorf("TeamSize = %d, want %d", info.TeamSize, wantTeam)
			}
		})
	}
}

func TestEnvServiceSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateSession(ctx, service.CreateSessionOptions{MapName: "test"})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := svc.GetSession(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != created.ID || got.MapID != "test" {
		t.Errorf("GetSession = %q on map %q, want %q on test", got.ID, got.MapID, created.ID)
	}

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Listed %d sessions, want 1", len(list))
	}

	if err := svc.DeleteSession(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, created.ID); err == nil {
		t.Error("Session still retrievable after delete")
	}
}

func TestEnvServiceStep(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{MapName: "test", Seed: 21})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	result, err := svc.Step(ctx, info.ID, []string{"MOVE_RIGHT"})
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if result.TimeStep != 1 {
		t.Errorf("TimeStep = %d, want 1", result.TimeStep)
	}
	if len(result.Actions) != 1 || result.Actions[0] != "MOVE_RIGHT" {
		t.Errorf("Actions = %v, want [MOVE_RIGHT]", result.Actions)
	}
	if result.State == nil {
		t.Fatal("Expected a post-step snapshot")
	}
	if len(result.Steps) != 2 {
		t.Fatalf("Got %d agent step records, want 2", len(result.Steps))
	}
	if result.Steps[0].Team != "PLAYER" || result.Steps[1].Team != "COMPUTER" {
		t.Errorf("Agent teams = %s/%s, want PLAYER/COMPUTER",
			result.Steps[0].Team, result.Steps[1].Team)
	}
	if result.Steps[0].Action != "MOVE_RIGHT" {
		t.Errorf("Player action = %s, want MOVE_RIGHT", result.Steps[0].Action)
	}
	if result.BallHolder == nil {
		t.Error("Expected ball holder info")
	}

	t.Run("unknown action name", func(t *testing.T) {
		if _, err := svc.Step(ctx, info.ID, []string{"TELEPORT"}); !errors.Is(err, engine.ErrUnknownKey) {
			t.Errorf("err = %v, want ErrUnknownKey", err)
		}
	})

	t.Run("wrong action count", func(t *testing.T) {
		if _, err := svc.Step(ctx, info.ID, []string{"STAND", "STAND"}); !errors.Is(err, engine.ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := svc.Step(ctx, "none", []string{"STAND"}); err == nil {
			t.Error("Expected error for unknown session")
		}
	})
}

func TestEnvServiceResetClearsTrace(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{MapName: "test", Seed: 3})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		if _, err := svc.Step(ctx, info.ID, []string{"STAND"}); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	trace, err := svc.GetTrace(ctx, info.ID, service.TraceOptions{})
	if err != nil {
		t.Fatalf("GetTrace failed: %v", err)
	}
	if trace.TotalSteps != 4 {
		t.Errorf("TotalSteps = %d, want 4", trace.TotalSteps)
	}

	snap, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if snap.TimeStep != 0 {
		t.Errorf("Post-reset time step = %d, want 0", snap.TimeStep)
	}

	trace, err = svc.GetTrace(ctx, info.ID, service.TraceOptions{})
	if err != nil {
		t.Fatalf("GetTrace failed: %v", err)
	}
	if trace.TotalSteps != 0 {
		t.Errorf("TotalSteps after reset = %d, want 0", trace.TotalSteps)
	}
}

func TestEnvServiceGetState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{MapName: "test", Seed: 5})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.Step(ctx, info.ID, []string{"MOVE_UP"}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	state, err := svc.GetState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.SessionID != info.ID || state.MapID != "test" {
		t.Errorf("State identity = %q/%q, want %q/test", state.SessionID, state.MapID, info.ID)
	}
	if state.TimeStep != 1 {
		t.Errorf("TimeStep = %d, want 1", state.TimeStep)
	}
	if state.State == nil || len(state.State.Agents) != 2 {
		t.Error("Expected a snapshot with 2 agents")
	}
}

func TestEnvServiceGetTracePagination(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{MapName: "test", Seed: 13})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	for i := 0; i < 25; i++ {
		if _, err := svc.Step(ctx, info.ID, []string{"STAND"}); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	t.Run("defaults to most recent first", func(t *testing.T) {
		trace, err := svc.GetTrace(ctx, info.ID, service.TraceOptions{})
		if err != nil {
			t.Fatalf("GetTrace failed: %v", err)
		}
		if trace.TotalSteps != 25 || trace.PageSize != 20 || trace.TotalPages != 2 {
			t.Errorf("Pagination = %d/%d/%d, want 25/20/2",
				trace.TotalSteps, trace.PageSize, trace.TotalPages)
		}
		if len(trace.Steps) != 20 {
			t.Fatalf("Got %d steps, want 20", len(trace.Steps))
		}
		if trace.Steps[0].Step != 25 {
			t.Errorf("First entry step = %d, want 25", trace.Steps[0].Step)
		}
		if !trace.HasNext || trace.HasPrevious {
			t.Errorf("HasNext/HasPrevious = %v/%v, want true/false", trace.HasNext, trace.HasPrevious)
		}
	})

	t.Run("ascending second page", func(t *testing.T) {
		trace, err := svc.GetTrace(ctx, info.ID, service.TraceOptions{Page: 2, Limit: 10, Order: "asc"})
		if err != nil {
			t.Fatalf("GetTrace failed: %v", err)
		}
		if len(trace.Steps) != 10 {
			t.Fatalf("Got %d steps, want 10", len(trace.Steps))
		}
		if trace.Steps[0].Step != 11 {
			t.Errorf("First entry step = %d, want 11", trace.Steps[0].Step)
		}
		if !trace.HasNext || !trace.HasPrevious {
			t.Errorf("HasNext/HasPrevious = %v/%v, want true/true", trace.HasNext, trace.HasPrevious)
		}
	})
}

func TestEnvServiceMaps(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	infos, err := svc.ListMaps(ctx)
	if err != nil {
		t.Fatalf("ListMaps failed: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("Listed %d maps, want 2", len(infos))
	}

	cfg, err := svc.LoadMap(ctx, "test")
	if err != nil {
		t.Fatalf("LoadMap failed: %v", err)
	}
	if cfg.Name != "test" {
		t.Errorf("Map name = %q, want test", cfg.Name)
	}

	custom := *cfg
	custom.Name = "custom"
	if err := svc.SaveMap(ctx, "custom", &custom); err != nil {
		t.Fatalf("SaveMap failed: %v", err)
	}
	if _, err := svc.CreateSession(ctx, service.CreateSessionOptions{MapName: "custom"}); err != nil {
		t.Fatalf("CreateSession on saved map failed: %v", err)
	}
}
