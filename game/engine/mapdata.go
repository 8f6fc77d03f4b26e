package engine

import "fmt"

// MapData is the immutable geographical info of a field: the walkable tile
// set, per-team spawn tiles, and per-team goal tiles. Goals(t) holds the
// tiles in which team t scores; they sit on the opposing team's end of the
// field. MapData is shared by reference across an episode and never mutated
// by the engine.
type MapData struct {
	walkable map[Position]struct{}
	spawn    map[Team][]Position
	goals    map[Team][]Position
	goalSet  map[Team]map[Position]struct{}
	width    int
	height   int
}

// NewMapData builds MapData from resolved tile sets. Spawn and goal tiles
// must be walkable, and every team needs at least one tile in each category;
// absence is a construction-time failure.
func NewMapData(walkable []Position, spawn, goals map[Team][]Position) (*MapData, error) {
	if len(walkable) == 0 {
		return nil, fmt.Errorf("%w: map has no walkable tiles", ErrInvalidArgument)
	}

	m := &MapData{
		walkable: make(map[Position]struct{}, len(walkable)),
		spawn:    make(map[Team][]Position, len(Teams)),
		goals:    make(map[Team][]Position, len(Teams)),
		goalSet:  make(map[Team]map[Position]struct{}, len(Teams)),
	}
	for _, pos := range walkable {
		m.walkable[pos] = struct{}{}
		if pos.X >= m.width {
			m.width = pos.X + 1
		}
		if pos.Y >= m.height {
			m.height = pos.Y + 1
		}
	}

	for _, team := range Teams {
		if len(spawn[team]) == 0 {
			return nil, fmt.Errorf("%w: team %s has no spawn tiles", ErrInvalidArgument, team)
		}
		if len(goals[team]) == 0 {
			return nil, fmt.Errorf("%w: team %s has no goal tiles", ErrInvalidArgument, team)
		}
		for _, pos := range spawn[team] {
			if !m.IsWalkable(pos) {
				return nil, fmt.Errorf("%w: spawn tile (%d,%d) of team %s is not walkable",
					ErrInvalidArgument, pos.X, pos.Y, team)
			}
		}
		m.goalSet[team] = make(map[Position]struct{}, len(goals[team]))
		for _, pos := range goals[team] {
			if !m.IsWalkable(pos) {
				return nil, fmt.Errorf("%w: goal tile (%d,%d) of team %s is not walkable",
					ErrInvalidArgument, pos.X, pos.Y, team)
			}
			m.goalSet[team][pos] = struct{}{}
		}
		m.spawn[team] = append([]Position(nil), spawn[team]...)
		m.goals[team] = append([]Position(nil), goals[team]...)
	}

	return m, nil
}

// IsWalkable reports whether an agent may legally occupy the tile.
func (m *MapData) IsWalkable(p Position) bool {
	_, ok := m.walkable[p]
	return ok
}

// Spawn returns the spawn tiles of a team in map-definition order. The
// returned slice is shared; callers must not mutate it.
func (m *MapData) Spawn(team Team) []Position {
	return m.spawn[team]
}

// Goals returns the tiles in which the team scores, in map-definition order.
// The returned slice is shared; callers must not mutate it.
func (m *MapData) Goals(team Team) []Position {
	return m.goals[team]
}

// IsGoal reports whether the tile is one in which the team scores.
func (m *MapData) IsGoal(team Team, p Position) bool {
	_, ok := m.goalSet[team][p]
	return ok
}

// Width returns the exclusive upper bound of walkable X coordinates.
func (m *MapData) Width() int { return m.width }

// Height returns the exclusive upper bound of walkable Y coordinates.
func (m *MapData) Height() int { return m.height }

// WalkableCount returns the number of walkable tiles.
func (m *MapData) WalkableCount() int { return len(m.walkable) }
