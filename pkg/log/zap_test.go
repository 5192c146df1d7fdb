package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/eventsvc/config/modules"
	"go.uber.org/zap"
)

func TestNewZapLoggerJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "eventsvc.log")
	log, err := NewZapLogger(&modules.LogConfig{File: file, Level: "info", Format: modules.LogFormatJson})
	require.NoError(t, err)
	defer zap.ReplaceGlobals(zap.NewNop())

	log.Named("api").Debugw("hidden")
	log.Named("api").Infow("listening", "addr", "127.0.0.1:3000")
	require.NoError(t, log.Sync())

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "api", entry["logger"])
	assert.Equal(t, "listening", entry["msg"])
	assert.Equal(t, "127.0.0.1:3000", entry["addr"])
	assert.Contains(t, entry, "ts")
}

func TestNewZapLoggerText(t *testing.T) {
	file := filepath.Join(t.TempDir(), "eventsvc.log")
	log, err := NewZapLogger(&modules.LogConfig{File: file, Level: "debug", Format: modules.LogFormatText})
	require.NoError(t, err)
	defer zap.ReplaceGlobals(zap.NewNop())

	log.Named("db").Debug("connected")
	require.NoError(t, log.Sync())

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "DEBUG\t[db]")
	assert.Contains(t, string(b), "connected")
}

func TestNewZapLoggerInvalidLevel(t *testing.T) {
	_, err := NewZapLogger(&modules.LogConfig{Level: "loud", Format: modules.LogFormatText})
	assert.Error(t, err)
}
