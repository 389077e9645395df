package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/intranet-portal/internal/config"
)

func TestLoggerConfig(t *testing.T) {
	app := config.AppConfig{Name: "intranet-portal", Version: "1.2.0", Env: "production"}

	tests := []struct {
		name     string
		cfg      config.LoggerConfig
		level    zapcore.Level
		encoding string
	}{
		{"defaults", config.LoggerConfig{Level: "info", Format: "json"}, zapcore.InfoLevel, "json"},
		{"debug console", config.LoggerConfig{Level: "DEBUG", Format: "Console"}, zapcore.DebugLevel, "console"},
		{"unknown level", config.LoggerConfig{Level: "chatty"}, zapcore.InfoLevel, "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zc := loggerConfig(tt.cfg, app)
			if zc.Level.Level() != tt.level {
				t.Fatalf("level = %v, want %v", zc.Level.Level(), tt.level)
			}
			if zc.Encoding != tt.encoding {
				t.Fatalf("encoding = %q, want %q", zc.Encoding, tt.encoding)
			}
			if zc.InitialFields["service"] != "intranet-portal" || zc.InitialFields["version"] != "1.2.0" {
				t.Fatalf("initial fields = %v", zc.InitialFields)
			}
			if zc.Development {
				t.Fatal("production logger built in development mode")
			}
		})
	}
}
