package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shapes.log")
	log, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	log.Info("pool created", zap.Int("count", 200))
	log.Debug("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pool created"`)
	assert.Contains(t, string(data), `"count":200`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
