package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/rl1809/ticket-inventory/config"
)

func TestFromConfig_DevelopmentForcesDebug(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{AppEnv: "development"},
		Logger: config.LoggerConfig{Level: "error", Encoding: "json"},
	}

	lc := FromConfig(cfg)

	assert.True(t, lc.IsDevelopment)
	assert.Equal(t, "console", lc.Encoding)
	assert.Equal(t, "debug", lc.Level)
}

func TestNewZapLogger_Level(t *testing.T) {
	l := NewZapLogger(&ZapLoggerConfig{Level: "warn", Encoding: "json"})

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestNewZapLogger_BadLevelFallsBackToInfo(t *testing.T) {
	l := NewZapLogger(&ZapLoggerConfig{Level: "loud", Encoding: "xml"})

	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
