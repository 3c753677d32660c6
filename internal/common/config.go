package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "FORECLOSURE_"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upload   UploadConfig   `koanf:"upload"`
	PDF      PDFConfig      `koanf:"pdf"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Watch    WatchConfig    `koanf:"watch"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string        `koanf:"http_addr"`
	GRPCAddr        string        `koanf:"grpc_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxUploadMB     int           `koanf:"max_upload_mb"`
}

// UploadConfig holds the upload folder and the extensions accepted there.
type UploadConfig struct {
	Dir               string   `koanf:"dir"`
	AllowedExtensions []string `koanf:"allowed_extensions"`
}

// PDFConfig holds document-text configuration
type PDFConfig struct {
	Pdftotext     string        `koanf:"pdftotext"`
	Pdftoppm      string        `koanf:"pdftoppm"`
	Tesseract     string        `koanf:"tesseract"`
	TesseractLang string        `koanf:"tesseract_lang"`
	DPI           int           `koanf:"dpi"`
	MaxPages      int           `koanf:"max_pages"`
	OCRFallback   bool          `koanf:"ocr_fallback"`
	Timeout       time.Duration `koanf:"timeout"`
}

// PipelineConfig toggles the compatibility behaviors of the extraction pipeline.
type PipelineConfig struct {
	LiteralCompleteness bool `koanf:"literal_completeness"`
	GenericLoanOnly     bool `koanf:"generic_loan_only"`
}

// WatchConfig holds inbox watcher configuration
type WatchConfig struct {
	Dir         string        `koanf:"dir"`
	OutDir      string        `koanf:"out_dir"`
	Format      string        `koanf:"format"`
	Workers     int           `koanf:"workers"`
	QueueSize   int           `koanf:"queue_size"`
	JobTimeout  time.Duration `koanf:"job_timeout"`
	Debounce    time.Duration `koanf:"debounce"`
	InitialScan bool          `koanf:"initial_scan"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LoadConfig loads configuration from an optional YAML file, then overrides
// with FORECLOSURE_ environment variables:
//
//	FORECLOSURE_SERVER_HTTP_ADDR -> server.http_addr
//	FORECLOSURE_PDF_OCR_FALLBACK -> pdf.ocr_fallback
//
// Values left unset by both fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapError(err, "read config file")
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, WrapError(err, "load environment variables")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, WrapError(err, "unmarshal config")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps FORECLOSURE_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// DefaultConfig returns a configuration populated only with defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":9090"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 32
	}

	if c.Upload.Dir == "" {
		c.Upload.Dir = "uploads"
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{"pdf"}
	}

	if c.PDF.Pdftotext == "" {
		c.PDF.Pdftotext = "pdftotext"
	}
	if c.PDF.Pdftoppm == "" {
		c.PDF.Pdftoppm = "pdftoppm"
	}
	if c.PDF.Tesseract == "" {
		c.PDF.Tesseract = "tesseract"
	}
	if c.PDF.TesseractLang == "" {
		c.PDF.TesseractLang = "eng"
	}
	if c.PDF.DPI == 0 {
		c.PDF.DPI = 300
	}
	if c.PDF.Timeout == 0 {
		c.PDF.Timeout = 2 * time.Minute
	}

	if c.Watch.Format == "" {
		c.Watch.Format = "csv"
	}
	if c.Watch.Workers == 0 {
		c.Watch.Workers = 2
	}
	if c.Watch.QueueSize == 0 {
		c.Watch.QueueSize = 64
	}
	if c.Watch.JobTimeout == 0 {
		c.Watch.JobTimeout = 3 * time.Minute
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("server.http_addr", c.Server.HTTPAddr, Required).
		Field("server.grpc_addr", c.Server.GRPCAddr, Required).
		Field("server.max_upload_mb", c.Server.MaxUploadMB, Positive).
		Field("upload.dir", c.Upload.Dir, Required).
		Field("pdf.dpi", c.PDF.DPI, Positive).
		Field("watch.format", c.Watch.Format, OneOf("csv", "xlsx", "json")).
		Field("watch.workers", c.Watch.Workers, Positive).
		Field("watch.queue_size", c.Watch.QueueSize, Positive).
		Field("log.level", strings.ToLower(c.Log.Level), OneOf("debug", "info", "warn", "error")).
		Field("log.format", strings.ToLower(c.Log.Format), OneOf("text", "json"))
	if c.PDF.MaxPages < 0 {
		v.Add(ValidationError{Field: "pdf.max_pages", Value: c.PDF.MaxPages, Message: "must not be negative"})
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
