package engine

import (
	"errors"
	"fmt"
)

// Failure taxonomy. All three classes indicate programmer errors or state
// corruption rather than recoverable runtime conditions: they propagate to
// the caller of Reset/Step/construction and are never silently defaulted.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownKey         = errors.New("unknown key")
	ErrInvariantViolation = errors.New("invariant violation")
)

// MaxTimeStep is the step budget: an episode is terminal once the step
// counter reaches this value, goal or not.
const MaxTimeStep = 100

// Team identifies one of the two fixed team groups.
type Team int

const (
	// TeamPlayer is the controlled team whose actions are supplied
	// externally by the training loop.
	TeamPlayer Team = iota
	// TeamComputer is the scripted team driven by the built-in opponent
	// policy.
	TeamComputer
)

// Teams lists both teams in group-index order. The position of a team in
// this list is the group index used by Options.AgentIndex.
var Teams = [...]Team{TeamPlayer, TeamComputer}

func (t Team) String() string {
	switch t {
	case TeamPlayer:
		return "PLAYER"
	case TeamComputer:
		return "COMPUTER"
	default:
		return fmt.Sprintf("Team(%d)", int(t))
	}
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamPlayer {
		return TeamComputer
	}
	return TeamPlayer
}

// ParseTeam maps an external team name to a Team. Unrecognized names return
// ErrUnknownKey.
func ParseTeam(name string) (Team, error) {
	switch name {
	case "PLAYER":
		return TeamPlayer, nil
	case "COMPUTER":
		return TeamComputer, nil
	default:
		return 0, fmt.Errorf("%w: team %q", ErrUnknownKey, name)
	}
}

// Action is a single-step agent command on the 4-neighbor grid.
type Action int

const (
	MoveRight Action = iota
	MoveUp
	MoveLeft
	MoveDown
	Stand
)

// Actions lists every action in declaration order.
var Actions = [...]Action{MoveRight, MoveUp, MoveLeft, MoveDown, Stand}

func (a Action) String() string {
	switch a {
	case MoveRight:
		return "MOVE_RIGHT"
	case MoveUp:
		return "MOVE_UP"
	case MoveLeft:
		return "MOVE_LEFT"
	case MoveDown:
		return "MOVE_DOWN"
	case Stand:
		return "STAND"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction maps an external action name to an Action. Unrecognized names
// return ErrUnknownKey.
func ParseAction(name string) (Action, error) {
	switch name {
	case "MOVE_RIGHT":
		return MoveRight, nil
	case "MOVE_UP":
		return MoveUp, nil
	case "MOVE_LEFT":
		return MoveLeft, nil
	case "MOVE_DOWN":
		return MoveDown, nil
	case "STAND":
		return Stand, nil
	default:
		return 0, fmt.Errorf("%w: action %q", ErrUnknownKey, name)
	}
}

// MarshalJSON serializes the action under its external name so snapshots
// stay readable and portable across versions.
func (a Action) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.String())), nil
}

// UnmarshalJSON parses the external action name, rejecting unknown values.
func (a *Action) UnmarshalJSON(data []byte) error {
	name, err := unquote(data)
	if err != nil {
		return err
	}
	parsed, err := ParseAction(name)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AgentMode is the per-episode behavior mode of an agent. Player agents are
// always ModeNone; computer agents are assigned ModeDefensive or
// ModeOffensive at reset and keep it for the whole episode.
type AgentMode int

const (
	ModeNone AgentMode = iota
	ModeDefensive
	ModeOffensive
)

func (m AgentMode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeDefensive:
		return "DEFENSIVE"
	case ModeOffensive:
		return "OFFENSIVE"
	default:
		return fmt.Sprintf("AgentMode(%d)", int(m))
	}
}

// ParseAgentMode maps an external mode name to an AgentMode.
func ParseAgentMode(name string) (AgentMode, error) {
	switch name {
	case "NONE":
		return ModeNone, nil
	case "DEFENSIVE":
		return ModeDefensive, nil
	case "OFFENSIVE":
		return ModeOffensive, nil
	default:
		return 0, fmt.Errorf("%w: agent mode %q", ErrUnknownKey, name)
	}
}

func (m AgentMode) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.String())), nil
}

func (m *AgentMode) UnmarshalJSON(data []byte) error {
	name, err := unquote(data)
	if err != nil {
		return err
	}
	parsed, err := ParseAgentMode(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// StrategicMode is the per-decision objective used by the greedy action
// search, distinct from the per-episode AgentMode.
type StrategicMode int

const (
	// Approach minimizes the distance to the target.
	Approach StrategicMode = iota
	// Avoid maximizes the distance to the target.
	Avoid
	// Intercept minimizes the distance without landing on the target tile.
	Intercept
)

func (m StrategicMode) String() string {
	switch m {
	case Approach:
		return "APPROACH"
	case Avoid:
		return "AVOID"
	case Intercept:
		return "INTERCEPT"
	default:
		return fmt.Sprintf("StrategicMode(%d)", int(m))
	}
}

// Position represents x,y tile coordinates on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Moved returns the 4-neighbor tile reached by taking the action from p.
// Stand returns p unchanged. MoveUp decrements Y: the origin is the top-left
// corner of the map.
func (p Position) Moved(a Action) Position {
	switch a {
	case MoveRight:
		p.X++
	case MoveUp:
		p.Y--
	case MoveLeft:
		p.X--
	case MoveDown:
		p.Y++
	case Stand:
	}
	return p
}

// Agent holds the per-agent state tracked during an episode.
type Agent struct {
	Pos        Position  `json:"pos"`
	HasBall    bool      `json:"has_ball"`
	Mode       AgentMode `json:"mode"`
	LastAction Action    `json:"last_action"`
}

// Observation is the immutable snapshot returned by Reset and Step.
//
// Reset fills State with the fresh state; Step fills NextState with the
// post-step state and leaves State nil. The pre-step state is intentionally
// omitted from step observations to avoid a full-state copy on every step:
// callers that need the prior state retain the previous observation.
type Observation struct {
	State     *State
	Actions   []Action
	Reward    float64
	NextState *State
}

// Options is the immutable environment configuration.
type Options struct {
	// TeamSize is the number of agents per team, 1 or 2.
	TeamSize int
	// Map is the resolved map data shared by reference across the episode.
	Map *MapData
	// Seed seeds the environment's RNG stream. Zero selects a time-based
	// seed; fix it for reproducible trajectories.
	Seed int64
}

// Validate checks the options at construction time.
func (o Options) Validate() error {
	if o.TeamSize < 1 || o.TeamSize > 2 {
		return fmt.Errorf("%w: team size must be 1 or 2, got %d", ErrInvalidArgument, o.TeamSize)
	}
	if o.Map == nil {
		return fmt.Errorf("%w: map data is required", ErrInvalidArgument)
	}
	for _, team := range Teams {
		if len(o.Map.Spawn(team)) < o.TeamSize {
			return fmt.Errorf("%w: team %s needs at least %d spawn tiles, map has %d",
				ErrInvalidArgument, team, o.TeamSize, len(o.Map.Spawn(team)))
		}
	}
	return nil
}

// AgentSize returns the total roster size across both teams.
func (o Options) AgentSize() int {
	return 2 * o.TeamSize
}

// AgentIndex maps a (team, team-local index) pair to the global agent index.
// The formula TeamSize*group + local is a stable contract consumed by any
// collaborator that must map a global index back to a team/local pair.
func (o Options) AgentIndex(team Team, local int) int {
	return o.TeamSize*int(team) + local
}

// TeamOf returns the team owning the given global agent index.
func (o Options) TeamOf(agentIndex int) Team {
	if agentIndex < o.TeamSize {
		return TeamPlayer
	}
	return TeamComputer
}

// LocalIndex returns the team-local index of the given global agent index.
func (o Options) LocalIndex(agentIndex int) int {
	return agentIndex % o.TeamSize
}

// unquote strips the JSON quotes around a short string token.
func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("%w: expected JSON string, got %s", ErrInvalidArgument, data)
	}
	return string(data[1 : len(data)-1]), nil
}
