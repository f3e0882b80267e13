// Package logging builds the zap logger shared by the API client and the
// vault workflows. Diagnostics go to stderr so they never mix with command
// output.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a development logger at debug level when debug is set and a
// JSON logger at warn level otherwise.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Redact shortens a secret for log fields
func Redact(secret string) zap.Field {
	if len(secret) <= 8 {
		return zap.String("token", "***")
	}
	return zap.String("token", secret[:4]+"…"+secret[len(secret)-4:])
}
