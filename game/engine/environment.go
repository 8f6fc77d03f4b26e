package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Environment is the state-transition engine exposed to the training loop.
// It exclusively owns its State and a seeded RNG stream; Reset and Step run
// to completion before returning and there is no concurrent access to the
// state. Parallel rollouts use one Environment per episode.
type Environment struct {
	opts    Options
	mapData *MapData
	state   *State
	rng     *rand.Rand
}

// NewEnvironment validates the options and builds an environment with a
// freshly randomized state.
func NewEnvironment(opts Options) (*Environment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Environment{
		opts:    opts,
		mapData: opts.Map,
		state:   newState(opts, rng),
		rng:     rng,
	}, nil
}

// Options returns the environment configuration.
func (e *Environment) Options() Options { return e.opts }

// State returns the current state. Collaborators must treat it as read-only;
// only the environment mutates it.
func (e *Environment) State() *State { return e.state }

// Reset reinitializes the state and returns an observation carrying the
// fresh state, no action and zero reward.
func (e *Environment) Reset() *Observation {
	e.state.Reset()
	return &Observation{State: e.state}
}

// Step resolves one simulation step: it derives every agent's intended
// destination (player agents from the supplied actions, computer agents from
// the opponent policy), resolves overlapping destinations to a fixed point,
// commits the surviving positions, advances the step counter and computes
// the reward. A single action is accepted when the team size is 1; otherwise
// exactly one action per player agent is required, in local-index order.
func (e *Environment) Step(actions ...Action) (*Observation, error) {
	if len(actions) != e.opts.TeamSize {
		return nil, fmt.Errorf("%w: got %d actions, team size is %d",
			ErrInvalidArgument, len(actions), e.opts.TeamSize)
	}

	intended, err := e.intendedPositions(actions)
	if err != nil {
		return nil, err
	}
	if err := e.resolveOverlaps(intended); err != nil {
		return nil, err
	}
	for idx, pos := range intended {
		e.state.agents[idx].Pos = pos
	}

	e.state.timeStep++

	return &Observation{
		Actions:   append([]Action(nil), actions...),
		Reward:    e.reward(),
		NextState: e.state,
	}, nil
}

// intendedPositions computes each agent's intended destination from the
// pre-step state. The chosen action is recorded as the agent's last action
// even when the destination is not walkable and the move degrades to an
// effective stand.
func (e *Environment) intendedPositions(actions []Action) ([]Position, error) {
	intended := make([]Position, e.opts.AgentSize())
	for _, team := range Teams {
		for local := 0; local < e.opts.TeamSize; local++ {
			idx := e.opts.AgentIndex(team, local)
			pos := e.state.agents[idx].Pos

			var action Action
			if team == TeamPlayer {
				action = actions[local]
			} else {
				var err error
				action, err = e.computerAction(local)
				if err != nil {
					return nil, err
				}
			}

			e.state.agents[idx].LastAction = action
			moved := pos.Moved(action)
			if e.mapData.IsWalkable(moved) {
				intended[idx] = moved
			} else {
				intended[idx] = pos
			}
		}
	}
	return intended, nil
}

// resolveOverlaps iterates the intended destinations to a fixed point: every
// agent on a tile claimed by more than one agent is rolled back to its
// pre-step position, and if exactly one claimant of such a tile holds the
// ball it is handed to a uniformly chosen other claimant. The hand-off
// happens at most once per step regardless of how many contested tiles exist
// or how many passes the loop takes. Rolled-back agents no longer contest a
// moved-into tile, so the loop converges within one pass per agent; running
// past that bound signals corruption.
func (e *Environment) resolveOverlaps(intended []Position) error {
	switched := false
	for pass := 0; ; pass++ {
		if pass > len(intended) {
			return fmt.Errorf("%w: overlap resolution exceeded %d passes",
				ErrInvariantViolation, len(intended))
		}

		contested := contestedGroups(intended)
		if len(contested) == 0 {
			return nil
		}
		for _, group := range contested {
			if !switched {
				switched = e.switchBallAmong(group)
			}
			for _, idx := range group {
				intended[idx] = e.state.agents[idx].Pos
			}
		}
	}
}

// contestedGroups partitions the intended destinations by tile and returns
// the groups with more than one claimant. Groups are ordered by their lowest
// agent index so that the once-per-step ball hand-off elects its group
// deterministically under a fixed seed.
func contestedGroups(intended []Position) [][]int {
	byTile := make(map[Position][]int, len(intended))
	for idx, pos := range intended {
		byTile[pos] = append(byTile[pos], idx)
	}

	var groups [][]int
	for _, group := range byTile {
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})
	return groups
}

// switchBallAmong hands the ball from the single holder in the group, if
// there is one, to a uniformly chosen other member. It reports whether a
// hand-off occurred.
func (e *Environment) switchBallAmong(group []int) bool {
	holder := -1
	var others []int
	for _, idx := range group {
		if e.state.agents[idx].HasBall {
			holder = idx
		} else {
			others = append(others, idx)
		}
	}
	if holder < 0 {
		return false
	}
	e.state.SwitchBall(holder, others[e.rng.Intn(len(others))])
	return true
}

func (e *Environment) reward() float64 {
	if e.state.IsTeamWinning(TeamPlayer) {
		return 1.0
	}
	if e.state.IsTeamWinning(TeamComputer) {
		return -1.0
	}
	return 0.0
}

// Distance returns the straight-line Euclidean distance between two tiles.
func Distance(a, b Position) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
