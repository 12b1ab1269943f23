package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("ordering", "info", &buf)

	l.Info("direccion guardada", "address_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ordering", entry["service"])
	assert.Equal(t, "direccion guardada", entry["msg"])
	assert.EqualValues(t, 7, entry["address_id"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("ordering", "warn", &buf)

	l.Info("should be dropped")
	assert.Empty(t, buf.String())

	l.Warn("should be logged")
	assert.Contains(t, buf.String(), "should be logged")
}

func TestNewWithWriter_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("ordering", "chatty", &buf)

	l.Debug("dropped")
	assert.Empty(t, buf.String())

	l.Info("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestCorrelationIDRoundtrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestFromContext_Fallback(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	var buf bytes.Buffer
	stored := NewWithWriter("ordering", "info", &buf)
	ctx := NewContext(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx))
}

func TestWithContext_EnrichesFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter("ordering", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "abc-123")
	ctx = WithCustomerID(ctx, "42")

	WithContext(ctx, base).Info("hola")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc-123", entry["correlation_id"])
	assert.Equal(t, "42", entry["customer_id"])
}
