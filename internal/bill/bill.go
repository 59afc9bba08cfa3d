package bill

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zombor/splitbill/internal/parsing"
)

var (
	// ErrBillNotFound is returned when no shared bill has the requested ID
	ErrBillNotFound = errors.New("shared bill not found")
	// ErrInvalidBill is returned when billData is not an object or people is not an array
	ErrInvalidBill = errors.New("invalid shared bill")
)

// SharedBill is a split bill published for the people it was split between.
// BillData and People are stored as the client sent them.
type SharedBill struct {
	ID        string          `json:"id"`
	BillData  json.RawMessage `json:"billData"`
	People    json.RawMessage `json:"people"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ScanResult is the response to a receipt upload
type ScanResult struct {
	Text   []string             `json:"text"`
	Parsed *parsing.ParseResult `json:"parsed"`
}

// validate checks the JSON kinds of the client payload
func (b *SharedBill) validate() error {
	if !isJSONKind(b.BillData, '{') {
		return fmt.Errorf("%w: billData must be an object", ErrInvalidBill)
	}
	if !isJSONKind(b.People, '[') {
		return fmt.Errorf("%w: people must be an array", ErrInvalidBill)
	}
	return nil
}

func isJSONKind(raw json.RawMessage, open byte) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c == open && json.Valid(raw)
	}
	return false
}
