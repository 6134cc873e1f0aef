/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stretchr/testify/require"
)

// RequireErrorIsAny asserts that at least one of the errors in err's chain matches at least one target.
// This is a wrapper for errors.Is.
func RequireErrorIsAny(t require.TestingT, err error, targets []error, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	for _, targetErr := range targets {
		if errors.Is(err, targetErr) {
			return
		}
	}
	expectedErrTexts := make([]string, 0, len(targets))
	for _, targetErr := range targets {
		expectedErrTexts = append(expectedErrTexts, fmt.Sprintf("%q", targetErr.Error()))
	}
	require.FailNow(t, fmt.Sprintf("At least one target error should be in err chain:\n"+
		"expected: [%s]\n"+
		"in chain: %s", strings.Join(expectedErrTexts, "; "), buildErrorChainString(err),
	), msgAndArgs...)
}

// RequireErrorAsAll asserts that err's chain has a value of every target's type.
// Targets must be non-nil pointers, like for errors.As.
func RequireErrorAsAll(t require.TestingT, err error, targets []interface{}, msgAndArgs ...interface{}) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	for _, target := range targets {
		if !errors.As(err, target) {
			require.FailNow(t, fmt.Sprintf("Error of type %T should be in err chain:\n"+
				"in chain: %s", target, buildErrorChainString(err)), msgAndArgs...)
			return
		}
	}
}

func buildErrorChainString(err error) string {
	if err == nil {
		return ""
	}
	chain := []string{fmt.Sprintf("%q", err.Error())}
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%q", e.Error()))
	}
	return strings.Join(chain, "\n\t")
}
