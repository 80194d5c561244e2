package upgrade

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Write sizing defaults.
const (
	// LegacyWriteBlockSize is the data bytes per write command on legacy
	// bootloaders
	LegacyWriteBlockSize = 252

	// EnhancedWriteBlockSize is the data bytes per write command once
	// enhanced mode is active
	EnhancedWriteBlockSize = 8192

	// DefaultVerifyWriteLimit is the number of data blocks written before
	// a verify is issued
	DefaultVerifyWriteLimit = 8
)

// Config holds the session configuration.
type Config struct {
	// Logger receives session logging (silent by default)
	Logger logrus.FieldLogger

	// ProgressCallback is called as the session advances (optional)
	ProgressCallback ProgressCallback

	// WriteBlockSize is the data bytes per write command before enhanced
	// mode detection runs
	WriteBlockSize int

	// VerifyWriteLimit is the number of data blocks per verify window
	VerifyWriteLimit int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	silent := logrus.New()
	silent.SetOutput(io.Discard)

	return Config{
		Logger:           silent,
		WriteBlockSize:   LegacyWriteBlockSize,
		VerifyWriteLimit: DefaultVerifyWriteLimit,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithLogger directs session logging to the given logger.
//
// Example:
//
//	sess := upgrade.New(port, profile, upgrade.WithLogger(logrus.StandardLogger()))
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithProgressCallback sets a callback to track upgrade progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithWriteBlockSize overrides the legacy write block size. Enhanced-mode
// detection still switches to EnhancedWriteBlockSize when it triggers.
func WithWriteBlockSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.WriteBlockSize = size
		}
	}
}

// WithVerifyWriteLimit overrides the number of data blocks written before
// each verify.
func WithVerifyWriteLimit(limit int) Option {
	return func(c *Config) {
		if limit > 0 {
			c.VerifyWriteLimit = limit
		}
	}
}
