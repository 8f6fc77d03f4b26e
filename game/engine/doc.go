// Package engine implements the grid soccer state-transition engine used as
// a training environment for reinforcement-learning agents.
//
// Two teams of one or two agents occupy a tile grid; one agent at a time
// holds the ball, and an episode ends when a ball holder reaches a scoring
// tile or the step budget runs out. The Environment resolves one step at a
// time: player-team actions come from the caller, computer-team actions from
// the built-in opponent policy, and simultaneous moves onto the same tile
// are resolved by an iterative fixed-point procedure that rolls contested
// agents back and hands the ball over at most once per step.
//
// The engine is deterministic under a fixed Options.Seed: all randomness
// (spawn placement, ball assignment, opponent tie-breaking, ball hand-offs)
// is drawn from a single seeded RNG stream owned by the Environment. It is
// not safe for concurrent use; parallel rollouts own one Environment each.
package engine
