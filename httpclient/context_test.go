/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crptkit/docsubmit/log"
)

func TestRequestTypeContext(t *testing.T) {
	t.Run("empty request type", func(t *testing.T) {
		require.Equal(t, "", GetRequestTypeFromContext(context.Background()))
	})

	t.Run("non empty request type", func(t *testing.T) {
		const requestType = "documents_create"
		ctx := NewContextWithRequestType(context.Background(), requestType)
		require.Equal(t, requestType, GetRequestTypeFromContext(ctx))
	})
}

func TestRequestIDContext(t *testing.T) {
	require.Equal(t, "", GetRequestIDFromContext(context.Background()))

	ctx := NewContextWithRequestID(context.Background(), "cnpab0sl8r8i6bp5g7n0")
	require.Equal(t, "cnpab0sl8r8i6bp5g7n0", GetRequestIDFromContext(ctx))
	require.Equal(t, "", GetRequestTypeFromContext(ctx))
}

func TestLoggerContext(t *testing.T) {
	require.Nil(t, GetLoggerFromContext(context.Background()))

	logger := log.NewDisabledLogger()
	ctx := NewContextWithLogger(context.Background(), logger)
	require.Equal(t, logger, GetLoggerFromContext(ctx))
}
