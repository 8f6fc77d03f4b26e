package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gridsoccer/gridsoccer/rollout/store"
)

func TestAbs(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{5, 5},
		{-5, 5},
		{0, 0},
		{-10, 10},
		{100, 100},
	}

	for _, test := range tests {
		result := abs(test.input)
		if result != test.expected {
			t.Errorf("abs(%d) = %d, expected %d", test.input, result, test.expected)
		}
	}
}

func TestAnalyzeMap_ValidFile(t *testing.T) {
	validMap := `{
		"name": "Test Field",
		"description": "Test map",
		"layout": [
			"#.....#",
			"#.P.C.#",
			"c.P.C.p",
			"#.P.C.#",
			"#.....#"
		],
		"legend": {
			"#": "wall",
			".": "ground",
			"P": "player_spawn",
			"C": "computer_spawn",
			"p": "player_goal",
			"c": "computer_goal"
		}
	}`

	tmpfile, err := os.CreateTemp("", "test_map_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(validMap)); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}
	tmpfile.Close()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeMap panicked: %v", r)
		}
	}()

	analyzeMap(tmpfile.Name())
}

func TestAnalyzeMap_InvalidFile(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeMap panicked with invalid file: %v", r)
		}
	}()

	analyzeMap("/non/existent/file.json")
}

func TestAnalyzeMap_InvalidJSON(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_map_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	tmpfile.Write([]byte(`{"name": "test", invalid json}`))
	tmpfile.Close()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeMap panicked with invalid JSON: %v", r)
		}
	}()

	analyzeMap(tmpfile.Name())
}

func TestAnalyzeRollouts(t *testing.T) {
	tmpDir := t.TempDir()

	rows := []store.EpisodeStepRow{
		{
			EpisodeID: "rollout_1_0",
			MapID:     "classic",
			Seed:      1,
			TeamSize:  1,
			TimeStep:  0,
			Width:     7,
			Height:    5,
			Agents:    []store.AgentRow{{Team: 0, X: 1, Y: 2, Action: -1}},
			Source:    "rollout",
		},
		{
			EpisodeID: "rollout_1_0",
			MapID:     "classic",
			Seed:      1,
			TeamSize:  1,
			TimeStep:  1,
			Width:     7,
			Height:    5,
			Agents:    []store.AgentRow{{Team: 0, X: 2, Y: 2, Action: 0}},
			Reward:    1,
			Terminal:  true,
			Outcome:   1,
			Source:    "rollout",
		},
	}

	if _, err := store.WriteBatchParquetAtomic(tmpDir, rows); err != nil {
		t.Fatalf("WriteBatchParquetAtomic failed: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeRollouts panicked: %v", r)
		}
	}()

	analyzeRollouts(tmpDir)
}

func TestAnalyzeRollouts_EmptyDir(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeRollouts panicked with empty dir: %v", r)
		}
	}()

	analyzeRollouts(t.TempDir())
}

func TestMain_Integration(t *testing.T) {
	tmpDir := t.TempDir()

	testMap := `{
		"name": "Integration Field",
		"layout": [
			"#.....#",
			"#.P.C.#",
			"c.P.C.p",
			"#.P.C.#",
			"#.....#"
		],
		"legend": {
			"#": "wall",
			".": "ground",
			"P": "player_spawn",
			"C": "computer_spawn",
			"p": "player_goal",
			"c": "computer_goal"
		}
	}`

	mapPath := filepath.Join(tmpDir, "classic.json")
	if err := os.WriteFile(mapPath, []byte(testMap), 0644); err != nil {
		t.Fatalf("Failed to write test map: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("analyzeMap panicked: %v", r)
		}
	}()

	analyzeMap(mapPath)
}
