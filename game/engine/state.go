package engine

import (
	"fmt"
	"math/rand"
	"strings"
)

// State is the single mutable entity of the simulation: per-agent position,
// ball possession, mode and last action, plus the elapsed step counter. It
// is owned exclusively by its Environment and mutated in place by Reset and
// Step; collaborators such as rendering read it through the accessor methods
// or take a Snapshot, never a mutable handle.
type State struct {
	opts     Options
	mapData  *MapData
	rng      *rand.Rand
	agents   []Agent
	timeStep int
}

func newState(opts Options, rng *rand.Rand) *State {
	s := &State{
		opts:    opts,
		mapData: opts.Map,
		rng:     rng,
		agents:  make([]Agent, opts.AgentSize()),
	}
	s.Reset()
	return s
}

// Reset reinitializes every agent and zeroes the step counter: positions are
// sampled uniformly from each team's spawn tiles with already-occupied tiles
// rejected (placement order is team then local-index enumeration order), the
// ball goes to one uniformly chosen (team, local) pair, each computer agent
// gets an independent uniformly chosen mode, and every last action is Stand.
func (s *State) Reset() {
	for i := range s.agents {
		s.agents[i] = Agent{}
	}
	s.randomize()
	s.timeStep = 0
}

func (s *State) randomize() {
	ballTeam := Teams[s.rng.Intn(len(Teams))]
	ballLocal := s.rng.Intn(s.opts.TeamSize)

	occupied := make(map[Position]struct{}, len(s.agents))
	for _, team := range Teams {
		spawn := s.mapData.Spawn(team)
		for local := 0; local < s.opts.TeamSize; local++ {
			idx := s.opts.AgentIndex(team, local)

			// Rejection-sample a free spawn tile. Options.Validate
			// guarantees enough spawn tiles per team for this to finish.
			for {
				pos := spawn[s.rng.Intn(len(spawn))]
				if _, taken := occupied[pos]; taken {
					continue
				}
				occupied[pos] = struct{}{}
				s.agents[idx].Pos = pos
				break
			}

			s.agents[idx].HasBall = team == ballTeam && local == ballLocal
			if team == TeamComputer {
				if s.rng.Intn(2) == 0 {
					s.agents[idx].Mode = ModeDefensive
				} else {
					s.agents[idx].Mode = ModeOffensive
				}
			} else {
				s.agents[idx].Mode = ModeNone
			}
			s.agents[idx].LastAction = Stand
		}
	}
}

// Clone returns a copy of the mutable per-agent state and step counter. The
// immutable options, map data and RNG stream are shared with the original.
func (s *State) Clone() *State {
	agents := make([]Agent, len(s.agents))
	copy(agents, s.agents)
	return &State{
		opts:     s.opts,
		mapData:  s.mapData,
		rng:      s.rng,
		agents:   agents,
		timeStep: s.timeStep,
	}
}

// TimeStep returns the number of committed steps since the last reset.
func (s *State) TimeStep() int { return s.timeStep }

// AgentSize returns the roster size (2 * team size).
func (s *State) AgentSize() int { return len(s.agents) }

// AgentPosition returns the current tile of the agent.
func (s *State) AgentPosition(agentIndex int) Position {
	return s.agents[agentIndex].Pos
}

// AgentHasBall reports whether the agent currently holds the ball.
func (s *State) AgentHasBall(agentIndex int) bool {
	return s.agents[agentIndex].HasBall
}

// AgentMode returns the per-episode mode of the agent.
func (s *State) AgentMode(agentIndex int) AgentMode {
	return s.agents[agentIndex].Mode
}

// AgentLastAction returns the most recently commanded action of the agent,
// whether or not it was honored by the map.
func (s *State) AgentLastAction(agentIndex int) Action {
	return s.agents[agentIndex].LastAction
}

// IsAgentWinning reports whether the agent holds the ball on one of its
// team's scoring tiles (which lie in the opposing team's goal area).
func (s *State) IsAgentWinning(agentIndex int) bool {
	agent := s.agents[agentIndex]
	if !agent.HasBall {
		return false
	}
	return s.mapData.IsGoal(s.opts.TeamOf(agentIndex), agent.Pos)
}

// IsTeamWinning reports whether any agent of the team is winning.
func (s *State) IsTeamWinning(team Team) bool {
	for local := 0; local < s.opts.TeamSize; local++ {
		if s.IsAgentWinning(s.opts.AgentIndex(team, local)) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the episode has ended, either because the step
// budget is exhausted or because an agent is winning.
func (s *State) IsTerminal() bool {
	if s.timeStep >= MaxTimeStep {
		return true
	}
	for idx := range s.agents {
		if s.IsAgentWinning(idx) {
			return true
		}
	}
	return false
}

// SwitchBall moves the ball between the two agents: possession toggles on
// the first and the second receives the first's prior possession. Callers
// only invoke it when exactly one of the two holds the ball.
func (s *State) SwitchBall(agentIndex, otherAgentIndex int) {
	hadBall := s.agents[agentIndex].HasBall
	s.agents[agentIndex].HasBall = !hadBall
	s.agents[otherAgentIndex].HasBall = hadBall
}

// OccupantAt returns the global index of the agent occupying the tile, if
// any.
func (s *State) OccupantAt(pos Position) (int, bool) {
	for idx := range s.agents {
		if s.agents[idx].Pos == pos {
			return idx, true
		}
	}
	return 0, false
}

// BallHolder returns the team, team-local index and global index of the
// unique ball holder. A missing holder signals state corruption and returns
// ErrInvariantViolation.
func (s *State) BallHolder() (Team, int, int, error) {
	for idx := range s.agents {
		if s.agents[idx].HasBall {
			return s.opts.TeamOf(idx), s.opts.LocalIndex(idx), idx, nil
		}
	}
	return 0, 0, 0, fmt.Errorf("%w: no agent holds the ball", ErrInvariantViolation)
}

// String renders a human-readable report of the state.
func (s *State) String() string {
	var b strings.Builder
	for ti, team := range Teams {
		if ti > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Team %s:", team)
		for local := 0; local < s.opts.TeamSize; local++ {
			agent := s.agents[s.opts.AgentIndex(team, local)]
			fmt.Fprintf(&b, "\nAgent %d: Position: (%d,%d)", local+1, agent.Pos.X, agent.Pos.Y)
			if agent.Mode != ModeNone {
				fmt.Fprintf(&b, ", Mode: %s", agent.Mode)
			}
			fmt.Fprintf(&b, ", Action: %s", agent.LastAction)
		}
	}
	if team, local, _, err := s.BallHolder(); err == nil {
		fmt.Fprintf(&b, "\nBall possession: In team %s with agent %d", team, local+1)
	}
	fmt.Fprintf(&b, "\nTime step: %d", s.timeStep)
	return b.String()
}
