package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("prod", &buf)
	log.Debug("hidden")
	log.Info("book created", "book_id", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "book created", rec["msg"])
	assert.Equal(t, "librarium", rec["service"])
	assert.EqualValues(t, 7, rec["book_id"])
}

func TestDevLoggerIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("dev", &buf).Debug("tag resolved", "name", "python")
	assert.Contains(t, buf.String(), "tag resolved")
	assert.Contains(t, buf.String(), "name=python")
}
