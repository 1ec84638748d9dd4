package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTraceProviderDisabled(t *testing.T) {
	shutdown, err := InitTraceProvider(context.Background(), "expense-api", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions("collector:4317"), 2)
	assert.Len(t, exporterOptions("https://collector.example:4317"), 1)
}
