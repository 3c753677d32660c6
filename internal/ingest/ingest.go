package ingest

import (
	"context"
	"io"
	"time"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath string
	StoredName string
	HashHex    string
	FileExt    string
	Size       int64
	UploadedAt time.Time
	Err        string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Ingestor is the behavior the servers and the CLI depend on.
type Ingestor interface {
	// SaveUpload stores an uploaded document in the upload directory.
	SaveUpload(ctx context.Context, name string, r io.Reader) (IngestionResult, error)
	// ScanDirectory finds all matching documents under root.
	ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
	// Resolve maps a stored file name back to its path in the upload directory.
	Resolve(name string) (string, error)
	// Allowed reports whether a file name has an accepted extension.
	Allowed(name string) bool
	// Dir is the upload directory.
	Dir() string
}
