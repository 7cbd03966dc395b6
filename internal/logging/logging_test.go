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
	log, err := New(&buf, "info", "json", false)
	require.NoError(t, err)

	log.WithField("quality", 80).Info("recompressed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "recompressed", entry["msg"])
	assert.Equal(t, float64(80), entry["quality"])
}

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", "text", false)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log, err = New(&buf, "warn", "text", true)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "text", false)
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml", false)
	assert.Error(t, err)
}
