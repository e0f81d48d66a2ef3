package otdoc

import (
	"time"

	"go.uber.org/zap"
)

// Config carries the tunables shared by the composer and the exporter.
// Zero values are replaced by the defaults from DefaultConfig.
type Config struct {
	// MaxAttachmentImages caps how many work-order attachments are laid out
	// visually. Attachments beyond the cap are listed as text only.
	MaxAttachmentImages int

	// ExportTimeout bounds a single converter-backend invocation.
	ExportTimeout time.Duration

	// MinSignatureGapRows is the margin kept between the end of the
	// attachment area and the signature block.
	MinSignatureGapRows int

	// CharsPerWrappedLine tunes the row-height estimate for long free-text
	// fields.
	CharsPerWrappedLine int

	// DecodeWorkers bounds concurrent image decode/resize work.
	DecodeWorkers int

	// ConverterSlots bounds concurrent converter processes.
	ConverterSlots int

	// Logger receives composition and export diagnostics. Defaults to a
	// no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttachmentImages: 3,
		ExportTimeout:       60 * time.Second,
		MinSignatureGapRows: 3,
		CharsPerWrappedLine: 55,
		DecodeWorkers:       4,
		ConverterSlots:      1,
		Logger:              zap.NewNop(),
	}
}

// Option is a functional option applied on top of DefaultConfig.
type Option func(*Config)

// Apply returns DefaultConfig with the given options applied.
func Apply(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

// WithMaxAttachmentImages caps the number of visually placed attachments.
func WithMaxAttachmentImages(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MaxAttachmentImages = n
		}
	}
}

// WithExportTimeout sets the per-backend conversion timeout.
func WithExportTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ExportTimeout = d
		}
	}
}

// WithMinSignatureGapRows sets the margin between the attachment area and
// the signature block.
func WithMinSignatureGapRows(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MinSignatureGapRows = n
		}
	}
}

// WithCharsPerWrappedLine tunes row-height estimation for wrapped text.
func WithCharsPerWrappedLine(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.CharsPerWrappedLine = n
		}
	}
}

// WithDecodeWorkers bounds concurrent image decoding.
func WithDecodeWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.DecodeWorkers = n
		}
	}
}

// WithConverterSlots bounds concurrent converter processes.
func WithConverterSlots(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ConverterSlots = n
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}
