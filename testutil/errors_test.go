/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type testCodeError struct {
	Code int
}

func (e *testCodeError) Error() string {
	return fmt.Sprintf("code %d", e.Code)
}

func TestRequireErrorIsAny(t *testing.T) {
	targetErrs := []error{
		errors.New("error A"),
		errors.New("error B"),
		errors.New("error C"),
	}

	mockT := &MockT{}

	RequireErrorIsAny(mockT, fmt.Errorf("do something: %w", targetErrs[1]), targetErrs)
	require.False(t, mockT.Failed)

	RequireErrorIsAny(mockT, fmt.Errorf("do something: %w", errors.New("error D")), targetErrs)
	require.True(t, mockT.Failed)

	mockT = &MockT{}
	RequireErrorIsAny(mockT, nil, targetErrs)
	require.True(t, mockT.Failed)
}

func TestRequireErrorAsAll(t *testing.T) {
	err := fmt.Errorf("submit: %w", &testCodeError{Code: 42})

	mockT := &MockT{}
	var codeErr *testCodeError
	RequireErrorAsAll(mockT, err, []interface{}{&codeErr})
	require.False(t, mockT.Failed)
	require.Equal(t, 42, codeErr.Code)

	mockT = &MockT{}
	var pathErr *testPathError
	RequireErrorAsAll(mockT, err, []interface{}{&codeErr, &pathErr})
	require.True(t, mockT.Failed)
}

type testPathError struct{}

func (e *testPathError) Error() string { return "path" }
