package logging

import (
	"os"

	"github.com/ontohin26/ontohin/internal/gelf"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. environment "production" selects the JSON
// encoder; anything else gets the coloured development console. LOG_LEVEL,
// when set, overrides the level of either. A non-empty gelfAddr tees every
// entry to a GELF collector. The returned func flushes the logger and
// releases the GELF socket; call it on exit.
func New(environment, level, gelfAddr string) (*zap.Logger, func(), error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err == nil {
			config.Level.SetLevel(lvl)
		}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = logger.Sync() }

	if gelfAddr != "" {
		core, err := gelf.New(gelfAddr, "ontohin", config.Level)
		if err != nil {
			logger.Warn("GELF init failed", zap.String("addr", gelfAddr), zap.Error(err))
			return logger, closeFn, nil
		}
		logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
		logger.Info("GELF logging enabled", zap.String("addr", gelfAddr))
		closeFn = func() {
			_ = logger.Sync()
			core.Close()
		}
	}

	return logger, closeFn, nil
}
