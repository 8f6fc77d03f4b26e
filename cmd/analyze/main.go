// Command analyze prints quick, human-readable heuristics about map files in
// the project's maps directory. It summarizes dimensions, tile counts, and
// spawn-to-goal Manhattan distances, and highlights goals that cannot be
// reached within the episode step limit. With -rollout-dir it also summarizes
// recorded rollout Parquet files: episode counts, outcome distribution, and
// average episode length.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gridsoccer/gridsoccer/game/engine"
	"github.com/gridsoccer/gridsoccer/rollout/store"
)

var (
	mapDir     = flag.String("map-dir", "maps", "Directory containing map files")
	rolloutDir = flag.String("rollout-dir", "", "Directory containing rollout Parquet files (optional)")
)

func main() {
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*mapDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding map files: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeMap(file)
	}

	if *rolloutDir != "" {
		fmt.Printf("\n=== Rollout data in %s ===\n", *rolloutDir)
		analyzeRollouts(*rolloutDir)
	}
}

func analyzeMap(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var cfg engine.MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	mapData, err := engine.CompileMap(&cfg)
	if err != nil {
		fmt.Printf("Error compiling map: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", cfg.Name)
	fmt.Printf("Grid Size: %d x %d\n", mapData.Width(), mapData.Height())
	total := mapData.Width() * mapData.Height()
	fmt.Printf("Walkable: %d/%d tiles (%.0f%%)\n",
		mapData.WalkableCount(), total, 100*float64(mapData.WalkableCount())/float64(total))

	for _, team := range engine.Teams {
		spawns := mapData.Spawn(team)
		goals := mapData.Goals(team)
		fmt.Printf("%s: %d spawns, %d goals\n", team, len(spawns), len(goals))

		if len(spawns) == 0 || len(goals) == 0 {
			continue
		}

		// Manhattan distance is a lower bound on steps to score. A goal
		// further than the step limit from every spawn can never be reached
		// in time.
		minDist := -1
		maxDist := 0
		tooFar := 0
		for _, goal := range goals {
			nearest := -1
			for _, spawn := range spawns {
				dist := abs(goal.X-spawn.X) + abs(goal.Y-spawn.Y)
				if nearest == -1 || dist < nearest {
					nearest = dist
				}
			}
			if minDist == -1 || nearest < minDist {
				minDist = nearest
			}
			if nearest > maxDist {
				maxDist = nearest
			}
			if nearest > engine.MaxTimeStep {
				tooFar++
			}
		}

		fmt.Printf("  Spawn-to-goal distance: min %d, max %d steps\n", minDist, maxDist)
		if tooFar > 0 {
			fmt.Printf("  ⚠️  WARNING: %d goals are further than the %d step limit from every spawn\n",
				tooFar, engine.MaxTimeStep)
		}
	}
}

func analyzeRollouts(dir string) {
	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		fmt.Printf("Error finding Parquet files: %v\n", err)
		return
	}
	if len(files) == 0 {
		fmt.Println("No Parquet files found")
		return
	}

	totalRows := 0
	episodes := make(map[string]bool)
	wins, losses, draws := 0, 0, 0
	maps := make(map[string]int)

	for _, file := range files {
		rows, err := store.ReadEpisodeParquet(file)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", filepath.Base(file), err)
			continue
		}

		totalRows += len(rows)
		for _, row := range rows {
			episodes[row.EpisodeID] = true
			maps[row.MapID]++
			if row.Terminal {
				switch {
				case row.Outcome > 0:
					wins++
				case row.Outcome < 0:
					losses++
				default:
					draws++
				}
			}
		}
	}

	fmt.Printf("Files: %d\n", len(files))
	fmt.Printf("Step rows: %d\n", totalRows)
	fmt.Printf("Episodes: %d\n", len(episodes))
	if len(episodes) > 0 {
		fmt.Printf("Avg episode length: %.1f steps\n", float64(totalRows-len(episodes))/float64(len(episodes)))
	}
	terminal := wins + losses + draws
	if terminal > 0 {
		fmt.Printf("Outcomes: %d player wins (%.0f%%), %d losses, %d draws\n",
			wins, 100*float64(wins)/float64(terminal), losses, draws)
	} else {
		fmt.Println("Outcomes: no terminal episodes recorded")
	}
	for mapID, count := range maps {
		fmt.Printf("Map %q: %d rows\n", mapID, count)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
