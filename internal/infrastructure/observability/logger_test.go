package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_JSON(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	initLogger(&buf, "mediflow-admin", "production", "debug")

	LoggerFromContext(context.Background()).Debug().Str("collection", "patients").Msg("refreshed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mediflow-admin", entry["service"])
	assert.Equal(t, "patients", entry["collection"])
	assert.Equal(t, "refreshed", entry["message"])
	assert.NotContains(t, entry, "trace_id")
}

func TestInitLogger_LevelFallback(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	initLogger(&buf, "mediflow-admin", "production", "shouty")

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	GetLogger().Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}
