package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gridsoccer/gridsoccer/game/engine"
)

func writeTempMap(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "test_map_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write map: %v", err)
	}
	tmpfile.Close()

	return tmpfile.Name()
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

func TestValidateMapFile_ValidMap(t *testing.T) {
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

	path := writeTempMap(t, validMap)

	result := validateMapFile(path)
	if !result.Valid {
		t.Errorf("Expected valid map, but got errors: %v", result.Errors)
	}

	if result.File != filepath.Base(path) {
		t.Errorf("Expected file name %s, got %s", filepath.Base(path), result.File)
	}

	if !hasError(result, "Connectivity: All") {
		t.Error("Expected connectivity confirmation in output")
	}
}

func TestValidateMapFile_InvalidJSON(t *testing.T) {
	path := writeTempMap(t, `{"name": "test", invalid json}`)

	result := validateMapFile(path)
	if result.Valid {
		t.Error("Expected invalid map due to bad JSON")
	}
	if !hasError(result, "Invalid JSON") {
		t.Error("Expected 'Invalid JSON' error")
	}
}

func TestValidateMapFile_MissingFile(t *testing.T) {
	result := validateMapFile("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateMapFile_MissingSpawns(t *testing.T) {
	config := `{
		"name": "Test",
		"layout": [
			"#.....#",
			"c.....p",
			"#.....#"
		],
		"legend": {
			"#": "wall",
			".": "ground",
			"p": "player_goal",
			"c": "computer_goal"
		}
	}`

	result := validateMapFile(writeTempMap(t, config))
	if result.Valid {
		t.Error("Expected invalid map due to missing spawns")
	}
	if !hasError(result, "Map rejected") {
		t.Error("Expected 'Map rejected' error")
	}
}

func TestValidateMapFile_UnknownLegendKind(t *testing.T) {
	config := `{
		"name": "Test",
		"layout": [
			"#.....#",
			"cPPCC.p",
			"#.....#"
		],
		"legend": {
			"#": "wall",
			".": "lava",
			"P": "player_spawn",
			"C": "computer_spawn",
			"p": "player_goal",
			"c": "computer_goal"
		}
	}`

	result := validateMapFile(writeTempMap(t, config))
	if result.Valid {
		t.Error("Expected invalid map due to unknown tile kind")
	}
	if !hasError(result, "Map rejected") {
		t.Error("Expected 'Map rejected' error")
	}
}

func TestValidateConnectivity_UnreachableGoal(t *testing.T) {
	cfg := &engine.MapConfig{
		Name: "Walled Goal",
		Layout: []string{
			"#....##",
			"cPP.C#p",
			"#...C##",
		},
		Legend: map[string]string{
			"#": "wall",
			".": "ground",
			"P": "player_spawn",
			"C": "computer_spawn",
			"p": "player_goal",
			"c": "computer_goal",
		},
	}

	mapData, err := engine.CompileMap(cfg)
	if err != nil {
		t.Fatalf("CompileMap failed: %v", err)
	}

	result := validateConnectivity(mapData)
	if result.Valid {
		t.Error("Expected invalid connectivity due to walled-off goal")
	}
	if !hasError(result, "Connectivity failure") {
		t.Error("Expected 'Connectivity failure' error")
	}
}

func TestFloodFill(t *testing.T) {
	cfg := &engine.MapConfig{
		Name: "Split Field",
		Layout: []string{
			"#..#..#",
			"cPP#CCp",
			"#..#..#",
		},
		Legend: map[string]string{
			"#": "wall",
			".": "ground",
			"P": "player_spawn",
			"C": "computer_spawn",
			"p": "player_goal",
			"c": "computer_goal",
		},
	}

	mapData, err := engine.CompileMap(cfg)
	if err != nil {
		t.Fatalf("CompileMap failed: %v", err)
	}

	// The wall column at x=3 splits the field in two
	reachable := floodFill(mapData, engine.Position{X: 1, Y: 1})

	if !reachable[engine.Position{X: 0, Y: 1}] {
		t.Error("Expected left goal to be reachable from left half")
	}
	if reachable[engine.Position{X: 6, Y: 1}] {
		t.Error("Expected right goal to be unreachable from left half")
	}
}
