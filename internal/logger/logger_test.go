package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RedactsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.Info("calling provider", "provider", "gemini", "api_key", "abc123", "Authorization", "Bearer x")
	log.With("access_token", "t").Warn("retry")

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "gemini", fields["provider"])
	assert.Equal(t, redacted, fields["api_key"])
	assert.Equal(t, redacted, fields["Authorization"])

	assert.Equal(t, redacted, entries[1].ContextMap()["access_token"])
}

func TestScrub_OddPairsAndNoAliasing(t *testing.T) {
	in := []interface{}{"password", "p", "dangling"}
	out := scrub(in)
	assert.Equal(t, []interface{}{"password", redacted, "dangling"}, out)
	assert.Equal(t, "p", in[1])
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode)
		require.NoError(t, err)
		l.Debug("ok")
	}
	Nop().Error("discarded")
}
