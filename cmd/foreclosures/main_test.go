package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/foreclosure-notices/internal/async"
	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/export"
)

const sampleNotices = "LEGAL NOTICES:\n" +
	"1) John Q. Smith,\n(Mortgage Foreclosure) Default has been made. Property: 123 Main St,\n" +
	"Springfield, IL 62701. Amount claimed due is $125,430.00; sale starting promptly at\n" +
	"10:00 AM, on March 3, 2025. ---\f" +
	"2) Ann Lee, (Mortgage Foreclosure) The sale has been adjourned.\f"

var fixedNow = time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC)

func testConfig() *common.Config {
	c := common.DefaultConfig()
	c.Upload.AllowedExtensions = []string{"pdf", "txt"}
	return c
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(common.LogConfig{Level: "warn", Format: "json"}, &buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])

	buf.Reset()
	l = newLogger(common.LogConfig{Level: "debug", Format: "text"}, &buf)
	l.Debug("text.line")
	assert.Contains(t, buf.String(), "msg=text.line")
	assert.NotContains(t, buf.String(), "time=")
}

func TestRunExtractWritesOneExportPerDocument(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	src := writeFile(t, in, "notices.txt", sampleNotices)

	var stdout bytes.Buffer
	err := runExtract(context.Background(), testConfig(), quietLogger(), []string{src},
		extractOptions{OutDir: out, Format: export.FormatJSON, Workers: 2, Now: func() time.Time { return fixedNow }}, &stdout)
	require.NoError(t, err)

	dst := filepath.Join(out, "notices_foreclosure_records_20250301_150405.json")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.NoError(t, export.ValidateDocument(data))

	var doc export.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Summary.Total)
	assert.Equal(t, 1, doc.Summary.Full)
	assert.Equal(t, "John Q. Smith", doc.Records[0].Name)
	assert.Equal(t, "Ann Lee", doc.Records[1].Name)

	assert.Contains(t, stdout.String(), "2 records (1 full, 1 partial, 50.0% full)")
}

func TestRunExtractScansDirectoriesAndReportsFailures(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "a.txt", sampleNotices)
	writeFile(t, in, "b.txt", sampleNotices)
	writeFile(t, in, ".hidden.txt", sampleNotices)
	writeFile(t, in, "readme.md", "not a document")
	bad := writeFile(t, t.TempDir(), "notes.docx", "binary")

	var stdout bytes.Buffer
	err := runExtract(context.Background(), testConfig(), quietLogger(), []string{in, bad},
		extractOptions{OutDir: out, Format: export.FormatCSV, Workers: 3, Now: func() time.Time { return fixedNow }}, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 documents failed")
	assert.Contains(t, stdout.String(), "FAILED")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"a_foreclosure_records_20250301_150405.csv",
		"b_foreclosure_records_20250301_150405.csv",
	}, names)
}

func TestRunExtractRejectsBadInput(t *testing.T) {
	var stdout bytes.Buffer
	err := runExtract(context.Background(), testConfig(), quietLogger(), []string{"x.pdf"},
		extractOptions{OutDir: t.TempDir(), Format: "pdf"}, &stdout)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = runExtract(context.Background(), testConfig(), quietLogger(), []string{filepath.Join(t.TempDir(), "missing.pdf")},
		extractOptions{OutDir: t.TempDir(), Format: export.FormatCSV}, &stdout)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = runExtract(context.Background(), testConfig(), quietLogger(), []string{t.TempDir()},
		extractOptions{OutDir: t.TempDir(), Format: export.FormatCSV}, &stdout)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExportHandler(t *testing.T) {
	c := testConfig()
	c.Watch.Format = export.FormatXLSX
	out := t.TempDir()
	h := exportHandler(c, quietLogger(), out)

	src := writeFile(t, t.TempDir(), "inbox.txt", sampleNotices)
	require.NoError(t, h(context.Background(), async.Job{Path: src}))

	matches, err := filepath.Glob(filepath.Join(out, "inbox_foreclosure_records_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	empty := writeFile(t, t.TempDir(), "ads.txt", "Classified ads only.")
	assert.ErrorIs(t, h(context.Background(), async.Job{Path: empty}), common.ErrNoNotices)
}

func TestRunWatchExportsNewDocuments(t *testing.T) {
	inbox := t.TempDir()
	c := testConfig()
	c.Watch.OutDir = t.TempDir()
	c.Watch.Debounce = 20 * time.Millisecond
	c.Watch.InitialScan = true
	writeFile(t, inbox, "early.txt", sampleNotices)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, c, quietLogger(), inbox) }()

	require.Eventually(t, func() bool {
		m, _ := filepath.Glob(filepath.Join(c.Watch.OutDir, "early_foreclosure_records_*.csv"))
		return len(m) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
