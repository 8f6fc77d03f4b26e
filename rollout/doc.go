// Package rollout plays batches of self-play episodes for dataset generation.
//
// The rollout package implements:
//   - Parallel episode execution across a worker pool
//   - Deterministic seeding (episode i plays with base seed + i)
//   - A uniform random legal policy for the player team
//   - Batched Parquet output via the rollout/store package
//
// Architecture:
//
// A Runner feeds episode seeds to workers over a channel. Each worker owns
// its environment and random source, so episodes never share mutable state.
// Completed episodes stream their rows to a single collector goroutine that
// batches and flushes Parquet files, keeping disk writes off the worker
// goroutines.
//
// Usage:
//
//	runner, err := rollout.NewRunner(rollout.Options{
//		Map:      loadedMap,
//		Episodes: 1000,
//		Workers:  8,
//		TeamSize: 2,
//		Seed:     42,
//		OutDir:   "data/rollouts",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	summary, err := runner.Run(ctx)
//
// Cancellation:
//
// Cancelling the context stops seed production and aborts in-flight episodes
// at their next step boundary. Rows from episodes that completed before the
// cancellation are still flushed.
package rollout
