package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestWithClientID(t *testing.T) {
	ctx := WithClientID(context.Background(), "client-456")
	assert.Equal(t, "client-456", GetClientID(ctx))
}

func TestGetters_missing_values(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetClientID(ctx))
}
