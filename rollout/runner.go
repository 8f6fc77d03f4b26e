package rollout

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gridsoccer/gridsoccer/game/engine"
	"github.com/gridsoccer/gridsoccer/game/service"
	"github.com/gridsoccer/gridsoccer/rollout/store"
)

const defaultBatchRows = 4096

// Options configures a rollout run.
type Options struct {
	Map      *service.LoadedMap
	Episodes int
	Workers  int
	TeamSize int

	// Seed is the base seed; episode i plays with Seed+i. Zero derives a
	// base from the wall clock.
	Seed int64

	// OutDir receives batch Parquet files. Empty disables writing, which is
	// useful for benchmarking the engine alone.
	OutDir string

	// BatchRows sets how many rows accumulate before a batch file is
	// flushed. Zero uses a sensible default.
	BatchRows int

	Verbose bool
}

// Summary aggregates the outcomes of a rollout run.
type Summary struct {
	Episodes   int
	PlayerWins int
	PlayerLoss int
	Draws      int
	TotalSteps int
	Files      []string
	Elapsed    time.Duration
}

// EpisodeResult reports one completed episode.
type EpisodeResult struct {
	EpisodeID string
	Seed      int64
	Steps     int
	Outcome   float64
}

// Runner plays seeded self-play episodes in parallel and records them as
// Parquet step rows
type Runner struct {
	opts Options
}

// NewRunner validates options and creates a runner
func NewRunner(opts Options) (*Runner, error) {
	if opts.Map == nil {
		return nil, fmt.Errorf("map is required")
	}
	if opts.Episodes <= 0 {
		return nil, fmt.Errorf("episodes must be positive, got %d", opts.Episodes)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.TeamSize <= 0 {
		opts.TeamSize = 1
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.BatchRows <= 0 {
		opts.BatchRows = defaultBatchRows
	}
	return &Runner{opts: opts}, nil
}

// Run plays all episodes and returns a summary. Cancelling the context stops
// the run after the in-flight episodes finish their current step; completed
// rows already handed to the collector are still flushed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	seeds := make(chan int64)
	results := make(chan EpisodeResult, r.opts.Workers)
	rowBatches := make(chan []store.EpisodeStepRow, r.opts.Workers)

	// Feed episode seeds until done or cancelled
	go func() {
		defer close(seeds)
		for i := 0; i < r.opts.Episodes; i++ {
			select {
			case seeds <- r.opts.Seed + int64(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for seed := range seeds {
				rows, result, err := r.playEpisode(ctx, workerID, seed)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("[rollout] worker %d episode seed %d failed: %v", workerID, seed, err)
					continue
				}
				if r.opts.Verbose {
					log.Printf("[rollout] worker %d finished %s: %d steps, outcome %+g",
						workerID, result.EpisodeID, result.Steps, result.Outcome)
				}
				rowBatches <- rows
				results <- result
			}
		}(w)
	}

	// Collector owns all file writes so workers never block on disk
	var collectWg sync.WaitGroup
	summary := &Summary{}

	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for result := range results {
			summary.Episodes++
			summary.TotalSteps += result.Steps
			switch {
			case result.Outcome > 0:
				summary.PlayerWins++
			case result.Outcome < 0:
				summary.PlayerLoss++
			default:
				summary.Draws++
			}
		}
	}()

	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		pending := make([]store.EpisodeStepRow, 0, r.opts.BatchRows)
		flush := func() {
			if len(pending) == 0 || r.opts.OutDir == "" {
				pending = pending[:0]
				return
			}
			path, err := store.WriteBatchParquetAtomic(r.opts.OutDir, pending)
			if err != nil {
				log.Printf("[rollout] batch write failed: %v", err)
			} else {
				summary.Files = append(summary.Files, path)
			}
			pending = pending[:0]
		}
		for rows := range rowBatches {
			pending = append(pending, rows...)
			if len(pending) >= r.opts.BatchRows {
				flush()
			}
		}
		flush()
	}()

	wg.Wait()
	close(results)
	close(rowBatches)
	collectWg.Wait()

	summary.Elapsed = time.Since(start)
	return summary, ctx.Err()
}

// playEpisode runs one full episode with a uniform random legal policy for
// the player team. The scripted computer policies act inside the engine.
func (r *Runner) playEpisode(ctx context.Context, workerID int, seed int64) ([]store.EpisodeStepRow, EpisodeResult, error) {
	env, err := engine.NewEnvironment(engine.Options{
		TeamSize: r.opts.TeamSize,
		Map:      r.opts.Map.Data,
		Seed:     seed,
	})
	if err != nil {
		return nil, EpisodeResult{}, err
	}

	episodeID := fmt.Sprintf("rollout_%d_%d", seed, workerID)
	rng := rand.New(rand.NewSource(seed))

	env.Reset()

	rows := make([]store.EpisodeStepRow, 0, engine.MaxTimeStep+1)
	rows = append(rows, r.stepRow(episodeID, seed, env, 0, false, nil))

	outcome := 0.0
	steps := 0
	for !env.State().IsTerminal() {
		select {
		case <-ctx.Done():
			return nil, EpisodeResult{}, ctx.Err()
		default:
		}

		actions := make([]engine.Action, r.opts.TeamSize)
		for i := range actions {
			actions[i] = engine.Actions[rng.Intn(len(engine.Actions))]
		}

		obs, err := env.Step(actions...)
		if err != nil {
			return nil, EpisodeResult{}, err
		}

		steps++
		outcome = obs.Reward
		rows = append(rows, r.stepRow(episodeID, seed, env, obs.Reward, env.State().IsTerminal(), actions))
	}

	// The last step's reward is the episode outcome; backfill it into every
	// row so trainers can read a value target without a join
	for i := range rows {
		rows[i].Outcome = float32(outcome)
	}

	return rows, EpisodeResult{
		EpisodeID: episodeID,
		Seed:      seed,
		Steps:     steps,
		Outcome:   outcome,
	}, nil
}

// stepRow snapshots the current environment state into a Parquet row.
// playerActions is nil for the initial row, where every agent action is -1.
func (r *Runner) stepRow(episodeID string, seed int64, env *engine.Environment, reward float64, terminal bool, playerActions []engine.Action) store.EpisodeStepRow {
	state := env.State()
	opts := env.Options()

	row := store.EpisodeStepRow{
		EpisodeID: episodeID,
		MapID:     r.opts.Map.ID,
		Seed:      seed,
		TeamSize:  int32(r.opts.TeamSize),
		TimeStep:  int32(state.TimeStep()),
		Width:     int32(r.opts.Map.Data.Width()),
		Height:    int32(r.opts.Map.Data.Height()),
		Reward:    float32(reward),
		Terminal:  terminal,
		Source:    "rollout",
	}

	row.Agents = make([]store.AgentRow, 0, state.AgentSize())
	for idx := 0; idx < state.AgentSize(); idx++ {
		pos := state.AgentPosition(idx)
		action := int32(-1)
		if playerActions != nil {
			action = int32(state.AgentLastAction(idx))
		}
		team := int32(0)
		if opts.TeamOf(idx) == engine.TeamComputer {
			team = 1
		}
		row.Agents = append(row.Agents, store.AgentRow{
			Team:    team,
			X:       int32(pos.X),
			Y:       int32(pos.Y),
			HasBall: state.AgentHasBall(idx),
			Mode:    int32(state.AgentMode(idx)),
			Action:  action,
		})
	}

	return row
}
