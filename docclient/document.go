/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package docclient

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the wire format of dates in documents.
const DateLayout = "2006-01-02"

// Date is a calendar date serialized as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate returns a pointer to the Date for the given calendar day (UTC).
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns a pointer to the Date which contains t.
func DateOf(t time.Time) *Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// String returns the date in DateLayout.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date should be a string, got %s", data)
	}
	t, err := time.Parse(DateLayout, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	d.Time = t
	return nil
}

// Document is a document submitted to the document creation endpoint.
// Field names follow the wire format of the remote API; all fields are optional.
type Document struct {
	Description       string    `json:"description,omitempty"`
	ParticipantINN    string    `json:"participantInn,omitempty"`
	DocID             string    `json:"doc_id,omitempty"`
	DocStatus         string    `json:"doc_status,omitempty"`
	DocType           string    `json:"doc_type,omitempty"`
	ImportRequest     bool      `json:"importRequest"`
	OwnerINN          string    `json:"owner_inn,omitempty"`
	// DocParticipantINN duplicates ParticipantINN in the snake_case form the API also reads.
	DocParticipantINN string    `json:"participant_inn,omitempty"`
	ProducerINN       string    `json:"producer_inn,omitempty"`
	ProductionDate    *Date     `json:"production_date,omitempty"`
	ProductionType    string    `json:"production_type,omitempty"`
	RegDate           *Date     `json:"reg_date,omitempty"`
	RegNumber         string    `json:"reg_number,omitempty"`
	// Products is always present on the wire: an empty list is sent as [] and a nil one as null.
	Products          []Product `json:"products"`
}

// Product is an item of the Document.
type Product struct {
	CertificateDocument       string `json:"certificate_document,omitempty"`
	CertificateDocumentDate   *Date  `json:"certificate_document_date,omitempty"`
	CertificateDocumentNumber string `json:"certificate_document_number,omitempty"`
	OwnerINN                  string `json:"owner_inn,omitempty"`
	ProducerINN               string `json:"producer_inn,omitempty"`
	ProductionDate            *Date  `json:"production_date,omitempty"`
	TNVEDCode                 string `json:"tnved_code,omitempty"`
	UITCode                   string `json:"uit_code,omitempty"`
	UITUCode                  string `json:"uitu_code,omitempty"`
}
