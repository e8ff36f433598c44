//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package backend

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/text/superscript"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines the backend configuration.
type Config struct {
	// MyID is this party's ID, 0 or 1.
	MyID int
	// Threads bounds the number of concurrently evaluated gates. The
	// value 0 means unlimited.
	Threads int
	// SyncBetweenSetupAndOnline runs a two-party barrier between the
	// setup and online phases.
	SyncBetweenSetupAndOnline bool
	// Evaluation selects the executor mode.
	Evaluation circuit.Evaluation
	// Logger is the party's logger. If nil, logging is disabled.
	Logger *zap.Logger
}

func (cfg *Config) validate() error {
	if cfg.MyID != 0 && cfg.MyID != 1 {
		return errors.Newf("backend: invalid party ID %d", cfg.MyID)
	}
	if cfg.Threads < 0 {
		return errors.Newf("backend: invalid number of threads %d",
			cfg.Threads)
	}
	switch cfg.Evaluation {
	case circuit.SetupOnline, circuit.Interleaved:
	default:
		return errors.Newf("backend: invalid evaluation mode %v",
			cfg.Evaluation)
	}
	return nil
}

// NewLogger creates a logger for the party. The verbose logger is a
// development logger at the debug level.
func NewLogger(myID int, verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "backend: logger")
	}
	return log.Named("P" + superscript.Itoa(myID)), nil
}
