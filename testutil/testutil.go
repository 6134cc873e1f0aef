/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package testutil contains helpers for testing the submission client:
// a fake document endpoint, metrics and error assertions.
package testutil

type tHelper interface {
	Helper()
}
