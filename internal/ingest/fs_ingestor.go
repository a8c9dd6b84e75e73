package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docsift/docsift/constants"
)

// FSIngestor reads from the local filesystem. It deduplicates files by
// content hash, so the same text dropped under two names is processed once.
type FSIngestor struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set
	logger      *slog.Logger

	seen map[string]struct{}
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

func (i *FSIngestor) allowed(ext string) bool {
	ext = constants.NormalizeExt(ext)
	if i.AllowedExts != nil {
		_, ok := i.AllowedExts[ext]
		return ok
	}
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

func (i *FSIngestor) ReadPath(ctx context.Context, path string) (Document, FileInfo, error) {
	var doc Document
	var info FileInfo

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("ingest.abs_path failed", "path", path, "error", err)
		return doc, info, err
	}
	info.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !i.allowed(ext) {
		i.logger.Warn("ingest.unsupported_extension", "path", abs, "ext", ext)
		return doc, info, fmt.Errorf("unsupported or missing extension %q", ext)
	}

	b, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("ingest.read failed", "path", abs, "error", err)
		return doc, info, err
	}

	sum := sha256.Sum256(b)
	info.HashHex = hex.EncodeToString(sum[:])
	info.LoadedAt = time.Now().UTC()
	if _, dup := i.seen[info.HashHex]; dup {
		info.Deduplicated = true
	} else {
		i.seen[info.HashHex] = struct{}{}
	}

	doc = Document{
		FileName: filepath.Base(abs),
		Text:     string(b),
		Metadata: map[string]any{"source_path": abs},
	}
	return doc, info, nil
}

// ReadDirectory walks root, skips hidden entries if requested, and loads
// each matching file. Deduplicated files are counted but not returned.
func (i *FSIngestor) ReadDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, []FileInfo, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	var docs []Document
	var infos []FileInfo
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			infos = append(infos, FileInfo{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !i.allowed(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		doc, info, err := i.ReadPath(ctx, path)
		if err != nil {
			infos = append(infos, FileInfo{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		infos = append(infos, info)
		stats.Succeeded++
		if info.Deduplicated {
			stats.Deduplicated++
			return nil
		}
		docs = append(docs, doc)
		return nil
	})

	if err != nil {
		return docs, infos, stats, fmt.Errorf("walk: %w", err)
	}
	return docs, infos, stats, nil
}
