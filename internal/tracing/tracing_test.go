package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_NoopExporter(t *testing.T) {
	shutdown, err := InitTracing("fincalc-test", "")
	require.NoError(t, err)
	require.NotNil(t, Tracer)

	_, span := Tracer.Start(context.Background(), "loan_payment")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}
