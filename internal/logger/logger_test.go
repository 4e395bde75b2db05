package logger

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesLeveledLines(t *testing.T) {
	dir := t.TempDir()

	log, err := New(dir)
	require.NoError(t, err)

	log.Info("session started for %s", "AB1234")
	log.Warning("slow response")
	log.Trade("BUY 50 NIFTY24SEP22000CE @ 125.50")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(log.Path())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "[INFO] session started for AB1234")
	assert.Contains(t, out, "[WARN] slow response")
	assert.Contains(t, out, "[TRADE] BUY 50 NIFTY24SEP22000CE @ 125.50")
}
