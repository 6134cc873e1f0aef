/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import (
	"encoding/json"
	"fmt"
)

// ContentTypeJSON is the content type of the serialized documents.
const ContentTypeJSON = "application/json"

// Serializer converts a document into the request body.
type Serializer interface {
	Serialize(doc *Document) ([]byte, error)
}

// SerializerFunc is an adapter to allow the use of ordinary functions as Serializer.
type SerializerFunc func(doc *Document) ([]byte, error)

// Serialize is a part of Serializer interface.
func (f SerializerFunc) Serialize(doc *Document) ([]byte, error) {
	return f(doc)
}

// JSONSerializer serializes documents into JSON.
type JSONSerializer struct{}

var _ Serializer = JSONSerializer{}

// Serialize is a part of Serializer interface.
func (JSONSerializer) Serialize(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	return json.Marshal(doc)
}
