package idaia_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrocandeias/idaia"
)

func TestClassifyStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status int
		kind   idaia.ProviderErrorKind
	}{
		{429, idaia.ProviderRateLimited},
		{500, idaia.ProviderServerError},
		{503, idaia.ProviderServerError},
		{400, idaia.ProviderBadRequest},
		{401, idaia.ProviderBadRequest},
		{404, idaia.ProviderBadRequest},
	}
	for _, tt := range tests {
		pe := idaia.ClassifyStatus(tt.status, "msg")
		assert.Equal(t, tt.kind, pe.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, pe.Status)
	}
}

func TestClassifyTransport(t *testing.T) {
	t.Parallel()

	// Caller cancellation passes through unclassified.
	err := idaia.ClassifyTransport(context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	var pe *idaia.ProviderError
	assert.False(t, errors.As(err, &pe))

	// Deadline expiry is a timeout.
	err = idaia.ClassifyTransport(context.DeadlineExceeded)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, idaia.ProviderTimeout, pe.Kind)

	// Anything else is a transport failure.
	err = idaia.ClassifyTransport(errors.New("connection refused"))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, idaia.ProviderTransport, pe.Kind)
}

func TestProviderError_Retryable(t *testing.T) {
	t.Parallel()
	assert.True(t, (&idaia.ProviderError{Kind: idaia.ProviderRateLimited}).Retryable())
	assert.True(t, (&idaia.ProviderError{Kind: idaia.ProviderServerError}).Retryable())
	assert.True(t, (&idaia.ProviderError{Kind: idaia.ProviderTimeout}).Retryable())
	assert.True(t, (&idaia.ProviderError{Kind: idaia.ProviderTransport}).Retryable())
	assert.False(t, (&idaia.ProviderError{Kind: idaia.ProviderBadRequest}).Retryable())
}
