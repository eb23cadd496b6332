package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/restaurant-portal/internal/config"
)

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.LoggerConfig
		wantEncoding string
		wantLevel    zapcore.Level
		wantSampling bool
	}{
		{name: "development default", cfg: config.LoggerConfig{Level: "debug", Development: true}, wantEncoding: "console", wantLevel: zapcore.DebugLevel},
		{name: "production default", cfg: config.LoggerConfig{Level: "WARN"}, wantEncoding: "json", wantLevel: zapcore.WarnLevel, wantSampling: true},
		{name: "forced json in development", cfg: config.LoggerConfig{Level: "info", Format: "JSON", Development: true}, wantEncoding: "json", wantLevel: zapcore.InfoLevel},
		{name: "unknown level", cfg: config.LoggerConfig{Level: "loud", Format: "console"}, wantEncoding: "console", wantLevel: zapcore.InfoLevel, wantSampling: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loggerConfig(tt.cfg)
			if got.Encoding != tt.wantEncoding {
				t.Errorf("Encoding = %q, want %q", got.Encoding, tt.wantEncoding)
			}
			if got.Level.Level() != tt.wantLevel {
				t.Errorf("Level = %v, want %v", got.Level.Level(), tt.wantLevel)
			}
			if (got.Sampling != nil) != tt.wantSampling {
				t.Errorf("Sampling = %+v, want sampling %v", got.Sampling, tt.wantSampling)
			}
		})
	}
}

func TestNewLoggerTagsService(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "error", Service: "restaurant-portal"})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at error level")
	}
}
