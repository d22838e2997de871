package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nathangeffen/libuseful/pkg/errors"
)

func TestTracingExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracing(DefaultTracingConfig("useful-test"), &buf)
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "convert", attribute.String("input", "people.csv"))
	span.SetAttribute("rows", 9)
	span.AddEvent("table built")
	assert.True(t, Tracer() != nil)

	err = Trace(ctx, "validate", func(context.Context) error {
		return errors.New(errors.ErrorTypeValidation, "ragged rows")
	})
	assert.Error(t, err)
	span.End(nil)

	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name":"convert"`)
	assert.Contains(t, out, `"Name":"validate"`)
	assert.Contains(t, out, "people.csv")
	assert.Contains(t, out, "ragged rows")
	assert.Contains(t, out, "useful-test")
}

func TestNeverSample(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultTracingConfig("useful-test")
	config.SamplingRate = 0

	shutdown, err := InitTracing(config, &buf)
	require.NoError(t, err)

	require.NoError(t, Trace(context.Background(), "matrix", func(context.Context) error { return nil }))
	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}
