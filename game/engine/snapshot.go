package engine

import "fmt"

// Snapshot is a serializable copy of a State: all agent fields plus the step
// counter. Restoring a snapshot into an environment built with the same
// options and seed reproduces identical subsequent behavior for the same
// action sequence.
type Snapshot struct {
	TeamSize int     `json:"team_size"`
	TimeStep int     `json:"time_step"`
	Agents   []Agent `json:"agents"`
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() *Snapshot {
	return &Snapshot{
		TeamSize: s.opts.TeamSize,
		TimeStep: s.timeStep,
		Agents:   append([]Agent(nil), s.agents...),
	}
}

// RestoreSnapshot overwrites the state with the snapshot's contents after
// validating it against the environment's shape and invariants. Snapshots
// cross the external boundary (persistence files, API payloads), so a
// malformed one is rejected rather than trusted.
func (s *State) RestoreSnapshot(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot is nil", ErrInvalidArgument)
	}
	if snap.TeamSize != s.opts.TeamSize {
		return fmt.Errorf("%w: snapshot team size %d does not match environment team size %d",
			ErrInvalidArgument, snap.TeamSize, s.opts.TeamSize)
	}
	if len(snap.Agents) != s.opts.AgentSize() {
		return fmt.Errorf("%w: snapshot has %d agents, expected %d",
			ErrInvalidArgument, len(snap.Agents), s.opts.AgentSize())
	}
	if snap.TimeStep < 0 {
		return fmt.Errorf("%w: negative time step %d", ErrInvalidArgument, snap.TimeStep)
	}

	holders := 0
	seen := make(map[Position]struct{}, len(snap.Agents))
	for idx, agent := range snap.Agents {
		if !s.mapData.IsWalkable(agent.Pos) {
			return fmt.Errorf("%w: agent %d position (%d,%d) is not walkable",
				ErrInvalidArgument, idx, agent.Pos.X, agent.Pos.Y)
		}
		if _, taken := seen[agent.Pos]; taken {
			return fmt.Errorf("%w: two agents share tile (%d,%d)",
				ErrInvariantViolation, agent.Pos.X, agent.Pos.Y)
		}
		seen[agent.Pos] = struct{}{}
		if agent.HasBall {
			holders++
		}
		switch s.opts.TeamOf(idx) {
		case TeamPlayer:
			if agent.Mode != ModeNone {
				return fmt.Errorf("%w: player agent %d has mode %s",
					ErrInvalidArgument, idx, agent.Mode)
			}
		case TeamComputer:
			if agent.Mode == ModeNone {
				return fmt.Errorf("%w: computer agent %d has no mode",
					ErrInvalidArgument, idx)
			}
		}
	}
	if holders != 1 {
		return fmt.Errorf("%w: snapshot has %d ball holders, expected exactly 1",
			ErrInvariantViolation, holders)
	}

	copy(s.agents, snap.Agents)
	s.timeStep = snap.TimeStep
	return nil
}
