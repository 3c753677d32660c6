package ingest

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
)

var _ Ingestor = (*FSIngestor)(nil)

// FSIngestor stores uploads in, and reads documents from, the local filesystem.
type FSIngestor struct {
	dir         string
	allowedExts map[string]struct{}
	logger      *slog.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewFSIngestor(dir string, allowedExts []string, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		dir:         dir,
		allowedExts: ExtSet(allowedExts),
		logger:      logger,
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
}

// Dir is the upload directory.
func (i *FSIngestor) Dir() string { return i.dir }

// Allowed reports whether a file name has an accepted extension.
func (i *FSIngestor) Allowed(name string) bool {
	return AllowedExt(filepath.Ext(name), i.allowedExts)
}

// NewStoredName prefixes a sanitized name with a ULID so uploads sort by
// arrival and never collide.
func (i *FSIngestor) NewStoredName(name string) string {
	i.mu.Lock()
	id := ulid.MustNew(ulid.Now(), i.entropy)
	i.mu.Unlock()
	return id.String() + "_" + SecureFilename(name)
}

func (i *FSIngestor) SaveUpload(ctx context.Context, name string, r io.Reader) (IngestionResult, error) {
	var out IngestionResult

	secure := SecureFilename(name)
	if secure == "" {
		return out, common.NewAppError("UPLOAD_REJECTED", "empty file name", common.ErrInvalidInput)
	}
	ext := constants.NormalizeExt(filepath.Ext(secure))
	if ext == "" || !AllowedExt(ext, i.allowedExts) {
		i.logger.Warn("ingest.upload.rejected", "name", name, "ext", ext)
		return out, common.NewAppError("UPLOAD_REJECTED", fmt.Sprintf("extension %q not allowed", ext), common.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return out, common.WrapError(err, "create upload dir")
	}

	stored := i.NewStoredName(secure)
	path := filepath.Join(i.dir, stored)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return out, common.WrapError(err, "create upload")
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return out, common.WrapError(err, "write upload")
	}

	out = IngestionResult{
		SourcePath: path,
		StoredName: stored,
		HashHex:    hex.EncodeToString(h.Sum(nil)),
		FileExt:    ext,
		Size:       n,
		UploadedAt: time.Now().UTC(),
	}
	i.logger.Info("ingest.upload.ok", "stored", stored, "bytes", n, "sha256", out.HashHex)
	return out, nil
}

// Resolve maps a stored name to a path inside the upload directory. Names
// that would escape the directory or do not exist yield common.ErrNotFound.
func (i *FSIngestor) Resolve(name string) (string, error) {
	if name == "" || SecureFilename(name) != name {
		return "", common.NewAppError("NOT_FOUND", "invalid file name", common.ErrNotFound)
	}
	path := filepath.Join(i.dir, name)
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return "", common.NewAppError("NOT_FOUND", fmt.Sprintf("file %q not found", name), common.ErrNotFound)
	}
	return path, nil
}

// HashFile returns the hex SHA-256 of a file and its size.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
