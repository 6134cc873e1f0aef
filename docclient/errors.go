/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import "fmt"

// SerializationError is returned by Client.Submit when the document cannot be serialized.
// Nothing is sent and no rate limit capacity is consumed in this case.
type SerializationError struct {
	DocID string
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize document %q: %s", e.DocID, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// TransportError is returned by Client.Submit when the request fails before any response is received.
// The consumed rate limit capacity is not returned.
type TransportError struct {
	DocID string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send document %q: %s", e.DocID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
