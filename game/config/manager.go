package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gridsoccer/gridsoccer/game/engine"
	"github.com/gridsoccer/gridsoccer/game/service"
)

var (
	ErrMapNotFound = errors.New("map not found")
	ErrInvalidMap  = errors.New("invalid map")
)

// Manager handles map loading and caching
type Manager struct {
	mapDir     string
	defaultMap *service.LoadedMap
	maps       map[string]*service.LoadedMap
	mu         sync.RWMutex
}

// NewManager creates a new map manager rooted at the given directory
func NewManager(mapDir string) (*Manager, error) {
	if _, err := os.Stat(mapDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("map directory does not exist: %s", mapDir)
	}

	m := &Manager{
		mapDir: mapDir,
		maps:   make(map[string]*service.LoadedMap),
	}

	if err := m.loadDefaultMap(); err != nil {
		return nil, fmt.Errorf("failed to load default map: %w", err)
	}

	return m, nil
}

// LoadMap loads a map by name, compiling and caching it on first use
func (m *Manager) LoadMap(name string) (*service.LoadedMap, error) {
	id := mapID(name)

	m.mu.RLock()
	if loaded, exists := m.maps[id]; exists {
		m.mu.RUnlock()
		return loaded, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock
	if loaded, exists := m.maps[id]; exists {
		return loaded, nil
	}

	data, err := os.ReadFile(filepath.Join(m.mapDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var cfg engine.MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}

	compiled, err := engine.CompileMap(&cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	loaded := &service.LoadedMap{ID: id, Config: &cfg, Data: compiled}
	m.maps[id] = loaded
	return loaded, nil
}

// ListMaps returns information about all available maps
func (m *Manager) ListMaps() ([]*service.MapInfo, error) {
	entries, err := os.ReadDir(m.mapDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read map directory: %w", err)
	}

	var infos []*service.MapInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		loaded, err := m.LoadMap(id)
		if err != nil {
			// Skip unreadable or invalid maps
			continue
		}

		infos = append(infos, &service.MapInfo{
			Filename:       entry.Name(),
			MapID:          id,
			Name:           loaded.Config.Name,
			Description:    loaded.Config.Description,
			Width:          loaded.Data.Width(),
			Height:         loaded.Data.Height(),
			PlayerSpawns:   len(loaded.Data.Spawn(engine.TeamPlayer)),
			ComputerSpawns: len(loaded.Data.Spawn(engine.TeamComputer)),
		})
	}

	return infos, nil
}

// GetDefault returns the default map
func (m *Manager) GetDefault() *service.LoadedMap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultMap
}

// SetDefault sets the default map by name
func (m *Manager) SetDefault(name string) error {
	loaded, err := m.LoadMap(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultMap = loaded
	return nil
}

// RefreshCache drops every cached map and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.maps = make(map[string]*service.LoadedMap)
	m.mu.Unlock()

	return m.loadDefaultMap()
}

// loadDefaultMap resolves the default map: classic.json, then the first
// available map file, then the built-in field.
func (m *Manager) loadDefaultMap() error {
	loaded, err := m.LoadMap("classic")
	if err == nil {
		m.mu.Lock()
		m.defaultMap = loaded
		m.mu.Unlock()
		return nil
	}

	infos, listErr := m.ListMaps()
	if listErr == nil && len(infos) > 0 {
		if loaded, err := m.LoadMap(infos[0].MapID); err == nil {
			m.mu.Lock()
			m.defaultMap = loaded
			m.mu.Unlock()
			return nil
		}
	}

	cfg := DefaultMapConfig()
	compiled, err := engine.CompileMap(cfg)
	if err != nil {
		return fmt.Errorf("built-in map failed to compile: %w", err)
	}
	m.mu.Lock()
	m.defaultMap = &service.LoadedMap{ID: "default", Config: cfg, Data: compiled}
	m.mu.Unlock()
	return nil
}

// SaveMap validates a map configuration and writes it to disk
func (m *Manager) SaveMap(name string, cfg *engine.MapConfig) error {
	compiled, err := engine.CompileMap(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	id := mapID(name)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.mapDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}

	m.mu.Lock()
	m.maps[id] = &service.LoadedMap{ID: id, Config: cfg, Data: compiled}
	m.mu.Unlock()

	return nil
}

// mapID normalizes a user-supplied map name to a file identifier.
func mapID(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, ".json"))
}

// DefaultMapConfig returns the built-in field: a 9x6 pitch with four spawn
// tiles per team and two scoring tiles in each end line.
func DefaultMapConfig() *engine.MapConfig {
	return &engine.MapConfig{
		Name:        "Classic",
		Description: "Standard two-a-side field with twin scoring tiles",
		Layout: []string{
			"#.......#",
			"#.P...C.#",
			"c.P...C.p",
			"c.P...C.p",
			"#.P...C.#",
			"#.......#",
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
}
