package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/natefinch/lumberjack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Equal(t, 100, cfg.Rotation.MaxSizeMB)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "json to stderr", cfg: &Config{Level: "warn", Format: "json", Output: "stderr", TimeFormat: "2006-01-02"}},
		{name: "missing time format", cfg: &Config{Level: "debug", Format: "json", Output: "stderr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, core)
	require.NoError(t, err)

	logger.Info("feed uploaded", zap.String("feed", "gtfs.zip"))

	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "feed uploaded", recorded.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.level))
		})
	}
}

func TestCreateWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.log")
	cfg := DefaultConfig()
	cfg.Output = path
	cfg.Format = "json"

	logger, err := New(cfg)
	require.NoError(t, err)
	logger.Info("written to file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestCreateWriter_Rotation(t *testing.T) {
	cfg := &Config{Output: "/var/log/gtfs.log", Rotation: RotationConfig{MaxSizeMB: 7, MaxBackups: 2, MaxAgeDays: 3, Compress: true}}

	ws := createWriter(cfg)
	assert.NotNil(t, ws)

	// zapcore.AddSync wraps non-syncers in a struct embedding the writer
	lj := &lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    7,
		MaxBackups: 2,
		MaxAge:     3,
		Compress:   true,
	}
	assert.Equal(t, zapcore.AddSync(lj), ws)
}
