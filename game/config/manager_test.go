package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gridsoccer/gridsoccer/game/engine"
)

func createTestMapDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func createValidMapConfig() *engine.MapConfig {
	return &engine.MapConfig{
		Name:        "Test Map",
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
}

func writeMapFile(t *testing.T, dir, name string, cfg *engine.MapConfig) {
	t.Helper()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal map: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write map file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestMapDir(t)
		writeMapFile(t, dir, "classic", createValidMapConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault() == nil {
			t.Error("Expected default map to be loaded")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in map", func(t *testing.T) {
		dir := createTestMapDir(t)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed without map files, got: %v", err)
		}

		def := manager.GetDefault()
		if def == nil {
			t.Fatal("Expected built-in default map")
		}
		if def.Data.Width() != 9 || def.Data.Height() != 6 {
			t.Errorf("Built-in map is %dx%d, want 9x6", def.Data.Width(), def.Data.Height())
		}
	})
}

func TestManagerLoadMap(t *testing.T) {
	dir := createTestMapDir(t)
	writeMapFile(t, dir, "classic", createValidMapConfig())

	duel := createValidMapConfig()
	duel.Name = "Duel"
	writeMapFile(t, dir, "duel", duel)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing map", func(t *testing.T) {
		loaded, err := manager.LoadMap("duel")
		if err != nil {
			t.Fatalf("Failed to load map: %v", err)
		}
		if loaded.Config.Name != "Duel" {
			t.Errorf("Map name = %q, want Duel", loaded.Config.Name)
		}
		if loaded.Data == nil {
			t.Fatal("Expected compiled map data")
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		loaded, err := manager.LoadMap("duel.json")
		if err != nil {
			t.Fatalf("Failed to load map with extension: %v", err)
		}
		if loaded.Config.Name != "Duel" {
			t.Errorf("Map name = %q, want Duel", loaded.Config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadMap("duel")
		second, err := manager.LoadMap("duel")
		if err != nil {
			t.Fatalf("Failed to load map from cache: %v", err)
		}
		if first != second {
			t.Error("Expected map to be served from cache")
		}
	})

	t.Run("load non-existent map", func(t *testing.T) {
		if _, err := manager.LoadMap("missing"); !errors.Is(err, ErrMapNotFound) {
			t.Errorf("err = %v, want ErrMapNotFound", err)
		}
	})

	t.Run("load invalid map", func(t *testing.T) {
		invalid := []byte(`{"name": "Broken", "layout": ["..."], "legend": {}}`)
		if err := os.WriteFile(filepath.Join(dir, "broken.json"), invalid, 0644); err != nil {
			t.Fatalf("Failed to write invalid map: %v", err)
		}
		if _, err := manager.LoadMap("broken"); !errors.Is(err, ErrInvalidMap) {
			t.Errorf("err = %v, want ErrInvalidMap", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformed := []byte(`{"name": "Malformed", not json}`)
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformed, 0644); err != nil {
			t.Fatalf("Failed to write malformed map: %v", err)
		}
		if _, err := manager.LoadMap("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManagerListMaps(t *testing.T) {
	dir := createTestMapDir(t)

	names := []string{"classic", "duel", "arena"}
	for _, name := range names {
		cfg := createValidMapConfig()
		cfg.Name = name
		writeMapFile(t, dir, name, cfg)
	}

	// Non-JSON files are ignored
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	infos, err := manager.ListMaps()
	if err != nil {
		t.Fatalf("Failed to list maps: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Listed %d maps, want 3", len(infos))
	}

	found := make(map[string]bool)
	for _, info := range infos {
		found[info.Name] = true
		if info.PlayerSpawns != 3 || info.ComputerSpawns != 3 {
			t.Errorf("Map %q spawns = %d/%d, want 3/3",
				info.Name, info.PlayerSpawns, info.ComputerSpawns)
		}
	}
	for _, name := range names {
		if !found[name] {
			t.Errorf("Map %q missing from listing", name)
		}
	}
}

func TestManagerSaveMap(t *testing.T) {
	dir := createTestMapDir(t)
	writeMapFile(t, dir, "classic", createValidMapConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("save and reload", func(t *testing.T) {
		cfg := createValidMapConfig()
		cfg.Name = "Custom"
		if err := manager.SaveMap("custom", cfg); err != nil {
			t.Fatalf("Failed to save map: %v", err)
		}

		loaded, err := manager.LoadMap("custom")
		if err != nil {
			t.Fatalf("Failed to load saved map: %v", err)
		}
		if loaded.Config.Name != "Custom" {
			t.Errorf("Map name = %q, want Custom", loaded.Config.Name)
		}

		if _, err := os.Stat(filepath.Join(dir, "custom.json")); err != nil {
			t.Errorf("Saved map file missing: %v", err)
		}
	})

	t.Run("reject invalid map", func(t *testing.T) {
		cfg := createValidMapConfig()
		cfg.Layout = cfg.Layout[:1]
		if err := manager.SaveMap("bad", cfg); !errors.Is(err, ErrInvalidMap) {
			t.Errorf("err = %v, want ErrInvalidMap", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
			t.Error("Invalid map was written to disk")
		}
	})
}

func TestManagerRefreshCache(t *testing.T) {
	dir := createTestMapDir(t)
	cfg := createValidMapConfig()
	writeMapFile(t, dir, "classic", cfg)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	before, _ := manager.LoadMap("classic")

	cfg.Description = "Updated on disk"
	writeMapFile(t, dir, "classic", cfg)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}

	after, err := manager.LoadMap("classic")
	if err != nil {
		t.Fatalf("Failed to reload map: %v", err)
	}
	if before == after {
		t.Error("Expected a fresh map instance after refresh")
	}
	if after.Config.Description != "Updated on disk" {
		t.Errorf("Description = %q, want the updated value", after.Config.Description)
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	dir := createTestMapDir(t)
	writeMapFile(t, dir, "classic", createValidMapConfig())
	for _, name := range []string{"alpha", "beta", "gamma"} {
		cfg := createValidMapConfig()
		cfg.Name = name
		writeMapFile(t, dir, name, cfg)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	names := []string{"alpha", "beta", "gamma", "classic"}
	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := manager.LoadMap(names[i%len(names)]); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent load failed: %v", err)
	}
}
