/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package service

// Unit represents a component with its own lifecycle that can be started and stopped.
type Unit interface {
	// Start begins the unit's operation. It may block the calling goroutine for the unit's lifetime.
	// If Start succeeds, it must not write anything to the provided error channel.
	Start(fatalErr chan<- error)

	// Stop halts the unit. If 'gracefully' is true, Stop waits until the unit is finished.
	// It may be called even if Start has failed or was never called, and more than once.
	Stop(gracefully bool) error
}
