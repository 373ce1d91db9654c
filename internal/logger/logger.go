package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aliskhannn/quizroom/internal/config"
)

// New builds the process logger. Production gets JSON output at info level,
// every other environment gets the console encoder at debug level.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		zcfg := zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return zcfg.Build()
	}

	return zap.NewDevelopment()
}
