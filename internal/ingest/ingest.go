// Package ingest reads plain-text documents off the local filesystem
// for batch processing.
package ingest

import (
	"context"
	"time"
)

// Document is one text file ready for the pipeline.
type Document struct {
	FileName string
	Text     string
	Metadata map[string]any
}

// FileInfo is the per-file ingest outcome.
type FileInfo struct {
	SourcePath   string
	Deduplicated bool
	HashHex      string
	LoadedAt     time.Time
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the batch runner depends on.
type Ingestor interface {
	// ReadPath loads a single text file.
	ReadPath(ctx context.Context, path string) (Document, FileInfo, error)
	// ReadDirectory loads all matching files under root.
	ReadDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, []FileInfo, DirStats, error)
}
