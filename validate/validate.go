// Command validate provides a small CLI that validates map JSON files in the
// ../maps directory (or a directory given as the first argument). It checks:
//   - JSON structure, dimensions, and legend consistency
//   - Presence of enough spawn tiles and at least one goal per team
//   - Connectivity: every goal is reachable from at least one spawn via
//     walkable tiles using 4-directional movement
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gridsoccer/gridsoccer/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateMapFile loads and validates a single map JSON file. It performs
// structural checks through the engine's map compiler and then runs a
// reachability analysis over the walkable tiles.
func validateMapFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var cfg engine.MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	mapData, err := engine.CompileMap(&cfg)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Map rejected: %v", err))
		return result
	}

	connectivity := validateConnectivity(mapData)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", utf8.RuneCountInString(cfg.Layout[0]), len(cfg.Layout)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Walkable tiles: %d", mapData.WalkableCount()))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Player spawns: %d, goals: %d",
			len(mapData.Spawn(engine.TeamPlayer)), len(mapData.Goals(engine.TeamPlayer))))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Computer spawns: %d, goals: %d",
			len(mapData.Spawn(engine.TeamComputer)), len(mapData.Goals(engine.TeamComputer))))
	}

	return result
}

// validateConnectivity ensures every goal tile is reachable from a spawn of
// the team that scores there, moving over walkable tiles in 4 directions.
// It reports any unreachable goals and returns an aggregated ValidationResult.
func validateConnectivity(mapData *engine.MapData) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	goalCount := 0
	for _, team := range engine.Teams {
		spawns := mapData.Spawn(team)
		if len(spawns) == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("No %s spawns found for connectivity test", team))
			continue
		}

		reachable := floodFill(mapData, spawns[0])

		unreachable := []string{}
		goals := mapData.Goals(team)
		goalCount += len(goals)
		for _, goal := range goals {
			if !reachable[goal] {
				unreachable = append(unreachable, fmt.Sprintf("Goal at (%d,%d)", goal.X, goal.Y))
			}
		}

		if len(unreachable) > 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: %d/%d %s goals unreachable from spawn",
				len(unreachable), len(goals), team))
			for _, goal := range unreachable {
				result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: %s", goal))
			}
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: All %d goals reachable from spawns", goalCount))
	}

	return result
}

// floodFill walks outward from start over walkable tiles in 4 directions and
// returns the set of reachable positions.
func floodFill(mapData *engine.MapData, start engine.Position) map[engine.Position]bool {
	visited := make(map[engine.Position]bool)
	queue := []engine.Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		neighbors := []engine.Position{
			{X: current.X - 1, Y: current.Y},
			{X: current.X + 1, Y: current.Y},
			{X: current.X, Y: current.Y - 1},
			{X: current.X, Y: current.Y + 1},
		}
		for _, next := range neighbors {
			if !visited[next] && mapData.IsWalkable(next) {
				queue = append(queue, next)
			}
		}
	}

	return visited
}

// main scans the map directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	mapDir := "../maps"
	if len(os.Args) > 1 {
		mapDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(mapDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding map files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No map files found in %s\n", mapDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateMapFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All maps are valid!")
	} else {
		fmt.Println("❌ Some maps have errors")
		os.Exit(1)
	}
}
