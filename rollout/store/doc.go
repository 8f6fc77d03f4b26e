// Package store persists episode step rows as Parquet files.
//
// One row is written per (episode, time step) with nested per-agent data,
// zstd compression, and a schema tag in the file metadata. Files are always
// written to a temp path and renamed so readers never observe partial files.
package store
