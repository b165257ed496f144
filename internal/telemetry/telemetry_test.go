package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitNone(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Exporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitStdout(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Exporter: "stdout", ServiceName: "test", Version: "dev"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitRejectsBadConfig(t *testing.T) {
	_, err := Init(context.Background(), Config{Exporter: "otlp"})
	assert.ErrorContains(t, err, "endpoint")

	_, err = Init(context.Background(), Config{Exporter: "smoke-signals"})
	assert.ErrorContains(t, err, "unknown")
}
