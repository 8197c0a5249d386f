package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_Disabled(t *testing.T) {
	cfg := DefaultConfig("fincore")
	require.False(t, cfg.Enabled)

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracer_NeverNil(t *testing.T) {
	assert.NotNil(t, Tracer("fincore"))
}
