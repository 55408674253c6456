package observability

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// NewLogger builds a zap-backed logr.Logger. An empty level means info.
func NewLogger(level string, development bool) (logr.Logger, error) {
	var zapConfig zap.Config
	if development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return logr.Logger{}, fmt.Errorf("log level: %w", err)
		}
		zapConfig.Level = lvl
	}
	zapConfig.InitialFields = map[string]interface{}{"service": "qcflow"}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return zapr.NewLogger(zapLogger), nil
}
