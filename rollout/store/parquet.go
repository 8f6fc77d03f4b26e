package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// EpisodeStepRow is a single (episode, time step) snapshot intended for
// offline training.
//
// It is model-agnostic and optimized for compression:
// - one row per time step (no duplication of map metadata across agents)
// - nested/repeated agent data
//
// Outcome is the final episode result in [-1..1] from the player team's
// perspective, backfilled into every row once the episode completes.
type EpisodeStepRow struct {
	EpisodeID string `parquet:"episode_id,dict"`
	MapID     string `parquet:"map_id,dict"`
	Seed      int64  `parquet:"seed"`
	TeamSize  int32  `parquet:"team_size"`
	TimeStep  int32  `parquet:"time_step"`
	Width     int32  `parquet:"width"`
	Height    int32  `parquet:"height"`

	Agents []AgentRow `parquet:"agents"`

	// Reward earned by the step that produced this state; 0 on the initial row.
	Reward   float32 `parquet:"reward"`
	Terminal bool    `parquet:"terminal"`
	Outcome  float32 `parquet:"outcome"`

	Source string `parquet:"source,dict"`
}

// AgentRow records one agent's state at a time step. Action is the numeric
// action that produced this state, or -1 on the initial row. Team is 0 for
// the player team and 1 for the computer team; Mode is 0 for player agents.
type AgentRow struct {
	Team    int32 `parquet:"team"`
	X       int32 `parquet:"x"`
	Y       int32 `parquet:"y"`
	HasBall bool  `parquet:"has_ball"`
	Mode    int32 `parquet:"mode"`
	Action  int32 `parquet:"action"`
}

// WriteEpisodeParquet writes rows to outPath, creating parent directories as
// needed. The file appears atomically via a temp-file rename.
func WriteEpisodeParquet(outPath string, rows []EpisodeStepRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "episode_step_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteBatchParquetAtomic writes a Parquet file into outDir/tmp and then
// atomically moves it into outDir.
//
// Long-running writers use this so readers never observe partially-written
// Parquet files.
func WriteBatchParquetAtomic(outDir string, rows []EpisodeStepRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "episode_step_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}

	return finalPath, nil
}

// ReadEpisodeParquet loads all rows from a Parquet file written by this
// package. Mostly used by analysis tooling and tests.
func ReadEpisodeParquet(path string) ([]EpisodeStepRow, error) {
	rows, err := parquet.ReadFile[EpisodeStepRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
