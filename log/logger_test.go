/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_FileOutput(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output = OutputFile
	cfg.File.Path = filepath.Join(t.TempDir(), "docsubmit.log")

	logger, closeFn := NewLogger(cfg)
	logger.Info("document sent", String("doc_id", "DOC1"), Int("status", 200))
	logger.Debug("must be skipped on info level")
	logger.Error("request dump", String("dump", "X-Signature: secret\r\n"))
	closeFn()

	data, err := os.ReadFile(cfg.File.Path)
	require.NoError(t, err)

	var lines []map[string]interface{}
	for _, line := range splitLines(data) {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 2)
	require.Equal(t, "document sent", lines[0]["msg"])
	require.Equal(t, "DOC1", lines[0]["doc_id"])
	require.EqualValues(t, 200, lines[0]["status"])
	require.Equal(t, "X-Signature: ***\r\n", lines[1]["dump"])
}

func TestNewDisabledLogger(t *testing.T) {
	logger := NewDisabledLogger()
	require.NotPanics(t, func() {
		logger.With(String("k", "v")).Infof("value %d", 1)
		logger.WithLevel(LevelError).Error("error")
	})
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
