package engine

import (
	"errors"
	"testing"
)

func TestParseAction(t *testing.T) {
	for _, action := range Actions {
		parsed, err := ParseAction(action.String())
		if err != nil {
			t.Fatalf("ParseAction(%q) failed: %v", action.String(), err)
		}
		if parsed != action {
			t.Errorf("ParseAction(%q) = %v, want %v", action.String(), parsed, action)
		}
	}

	if _, err := ParseAction("MOVE_DIAGONAL"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Expected ErrUnknownKey for unknown action, got %v", err)
	}
}

func TestParseTeam(t *testing.T) {
	for _, team := range Teams {
		parsed, err := ParseTeam(team.String())
		if err != nil {
			t.Fatalf("ParseTeam(%q) failed: %v", team.String(), err)
		}
		if parsed != team {
			t.Errorf("ParseTeam(%q) = %v, want %v", team.String(), parsed, team)
		}
	}

	if _, err := ParseTeam("REFEREE"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Expected ErrUnknownKey for unknown team, got %v", err)
	}
}

func TestPositionMoved(t *testing.T) {
	origin := Position{X: 3, Y: 3}

	tests := []struct {
		action Action
		want   Position
	}{
		{MoveRight, Position{X: 4, Y: 3}},
		{MoveUp, Position{X: 3, Y: 2}},
		{MoveLeft, Position{X: 2, Y: 3}},
		{MoveDown, Position{X: 3, Y: 4}},
		{Stand, Position{X: 3, Y: 3}},
	}

	for _, tt := range tests {
		if got := origin.Moved(tt.action); got != tt.want {
			t.Errorf("Moved(%v) = %v, want %v", tt.action, got, tt.want)
		}
	}
}

func TestAgentIndexMapping(t *testing.T) {
	opts := Options{TeamSize: 2}

	tests := []struct {
		team  Team
		local int
		want  int
	}{
		{TeamPlayer, 0, 0},
		{TeamPlayer, 1, 1},
		{TeamComputer, 0, 2},
		{TeamComputer, 1, 3},
	}

	for _, tt := range tests {
		idx := opts.AgentIndex(tt.team, tt.local)
		if idx != tt.want {
			t.Errorf("AgentIndex(%v, %d) = %d, want %d", tt.team, tt.local, idx, tt.want)
		}
		if opts.TeamOf(idx) != tt.team {
			t.Errorf("TeamOf(%d) = %v, want %v", idx, opts.TeamOf(idx), tt.team)
		}
		if opts.LocalIndex(idx) != tt.local {
			t.Errorf("LocalIndex(%d) = %d, want %d", idx, opts.LocalIndex(idx), tt.local)
		}
	}

	if opts.AgentSize() != 4 {
		t.Errorf("AgentSize() = %d, want 4", opts.AgentSize())
	}
}

func TestOptionsValidate(t *testing.T) {
	mapData := createTestMap(t)

	for _, size := range []int{0, 3, -1} {
		opts := Options{TeamSize: size, Map: mapData}
		if err := opts.Validate(); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument for team size %d, got %v", size, err)
		}
	}

	if err := (Options{TeamSize: 1}).Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Error("Expected ErrInvalidArgument for missing map")
	}

	if err := (Options{TeamSize: 2, Map: mapData}).Validate(); err != nil {
		t.Errorf("Valid options rejected: %v", err)
	}
}
