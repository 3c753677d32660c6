package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
)

// ScanDirectory walks root, skips hidden entries if requested, and hashes
// every file with an allowed extension. Per-file failures are recorded in
// the results rather than aborting the walk.
func (i *FSIngestor) ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			stats.Scanned++
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Scanned++
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++

		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext, i.allowedExts) {
			stats.Skipped++
			return nil
		}
		stats.Matched++

		hash, size, err := HashFile(path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, IngestionResult{
			SourcePath: path,
			HashHex:    hash,
			FileExt:    ext,
			Size:       size,
		})
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Debug("ingest.scan.ok", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return results, stats, nil
}
