package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "json", false)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.WithField("line", 3).Warn("skipping unparsable log line")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, float64(3), entry["line"])
}

func TestNew_VerboseWins(t *testing.T) {
	logger, err := New(&bytes.Buffer{}, "error", "text", true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "text", false)
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml", false)
	assert.Error(t, err)
}
