package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger named "memefeed". When debug is true, uses development config
// (human-readable, debug level); otherwise uses production config (JSON, info level).
// Extra fields are attached to every entry.
func NewLogger(debug bool, fields ...zap.Field) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Named("memefeed").With(fields...), nil
}
