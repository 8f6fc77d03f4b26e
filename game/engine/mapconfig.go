package engine

import (
	"fmt"
	"unicode/utf8"
)

// Legend tile kinds accepted in map files.
const (
	KindGround        = "ground"
	KindPlayerSpawn   = "player_spawn"
	KindComputerSpawn = "computer_spawn"
	KindPlayerGoal    = "player_goal"
	KindComputerGoal  = "computer_goal"
	KindWall          = "wall"
)

// Map dimension bounds.
const (
	MinMapWidth  = 5
	MinMapHeight = 3
	MaxMapSide   = 64
)

// MapConfig is the serializable description of a field: a character grid plus
// a legend mapping each character to a tile kind. Every kind except wall is
// walkable. A player_goal tile is one where the player team scores; it sits
// on the computer's end of the field, and vice versa.
type MapConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Layout      []string          `json:"layout"`
	Legend      map[string]string `json:"legend"`
}

// ValidateMapConfig checks a map configuration for structural correctness
// and playability.
func ValidateMapConfig(cfg *MapConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: map config is nil", ErrInvalidArgument)
	}
	if cfg.Name == "" {
		return fmt.Errorf("%w: map name is required", ErrInvalidArgument)
	}
	if len(cfg.Layout) < MinMapHeight || len(cfg.Layout) > MaxMapSide {
		return fmt.Errorf("%w: layout must have between %d and %d rows, got %d",
			ErrInvalidArgument, MinMapHeight, MaxMapSide, len(cfg.Layout))
	}

	kinds := make(map[rune]string, len(cfg.Legend))
	for key, kind := range cfg.Legend {
		if utf8.RuneCountInString(key) != 1 {
			return fmt.Errorf("%w: legend key %q must be a single character", ErrInvalidArgument, key)
		}
		switch kind {
		case KindGround, KindPlayerSpawn, KindComputerSpawn, KindPlayerGoal, KindComputerGoal, KindWall:
		default:
			return fmt.Errorf("%w: legend %q maps to unknown tile kind %q", ErrUnknownKey, key, kind)
		}
		r, _ := utf8.DecodeRuneInString(key)
		kinds[r] = kind
	}

	width := utf8.RuneCountInString(cfg.Layout[0])
	if width < MinMapWidth || width > MaxMapSide {
		return fmt.Errorf("%w: layout must be between %d and %d columns wide, got %d",
			ErrInvalidArgument, MinMapWidth, MaxMapSide, width)
	}

	counts := make(map[string]int, 6)
	for y, row := range cfg.Layout {
		if utf8.RuneCountInString(row) != width {
			return fmt.Errorf("%w: row %d has %d columns, expected %d",
				ErrInvalidArgument, y, utf8.RuneCountInString(row), width)
		}
		x := 0
		for _, r := range row {
			kind, ok := kinds[r]
			if !ok {
				return fmt.Errorf("%w: layout character %q at (%d,%d) is not in the legend",
					ErrUnknownKey, string(r), x, y)
			}
			counts[kind]++
			x++
		}
	}

	if counts[KindPlayerSpawn] < 2 {
		return fmt.Errorf("%w: map needs at least 2 player_spawn tiles, got %d",
			ErrInvalidArgument, counts[KindPlayerSpawn])
	}
	if counts[KindComputerSpawn] < 2 {
		return fmt.Errorf("%w: map needs at least 2 computer_spawn tiles, got %d",
			ErrInvalidArgument, counts[KindComputerSpawn])
	}
	if counts[KindPlayerGoal] == 0 {
		return fmt.Errorf("%w: map needs at least 1 player_goal tile", ErrInvalidArgument)
	}
	if counts[KindComputerGoal] == 0 {
		return fmt.Errorf("%w: map needs at least 1 computer_goal tile", ErrInvalidArgument)
	}

	return nil
}

// CompileMap validates a map configuration and resolves it into the runtime
// tile sets. Tiles are enumerated row-major, top to bottom, so spawn order is
// stable across loads of the same file.
func CompileMap(cfg *MapConfig) (*MapData, error) {
	if err := ValidateMapConfig(cfg); err != nil {
		return nil, err
	}

	kinds := make(map[rune]string, len(cfg.Legend))
	for key, kind := range cfg.Legend {
		r, _ := utf8.DecodeRuneInString(key)
		kinds[r] = kind
	}

	var walkable []Position
	spawn := make(map[Team][]Position, len(Teams))
	goals := make(map[Team][]Position, len(Teams))
	for y, row := range cfg.Layout {
		x := 0
		for _, r := range row {
			pos := Position{X: x, Y: y}
			x++
			kind := kinds[r]
			if kind == KindWall {
				continue
			}
			walkable = append(walkable, pos)
			switch kind {
			case KindPlayerSpawn:
				spawn[TeamPlayer] = append(spawn[TeamPlayer], pos)
			case KindComputerSpawn:
				spawn[TeamComputer] = append(spawn[TeamComputer], pos)
			case KindPlayerGoal:
				goals[TeamPlayer] = append(goals[TeamPlayer], pos)
			case KindComputerGoal:
				goals[TeamComputer] = append(goals[TeamComputer], pos)
			}
		}
	}

	return NewMapData(walkable, spawn, goals)
}
