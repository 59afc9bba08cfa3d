package parsing

import (
	"context"
	"errors"
	"strings"
)

// ErrModelResponse is returned when a model reply is empty, is not JSON or
// does not have the receipt layout.
var ErrModelResponse = errors.New("model response is not a receipt")

// LineItem is one purchased product on a receipt
type LineItem struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	PricePerItem float64 `json:"pricePerItem"`
	Price        float64 `json:"price"` // line total
}

// Summary holds the receipt-level figures
type Summary struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Tax           float64 `json:"tax"`
	TaxPercent    float64 `json:"taxPercent"`
	ServiceCharge float64 `json:"serviceCharge"`
	Total         float64 `json:"total"`
	Merchant      string  `json:"merchant"`
	Date          string  `json:"date"`
	PaymentMethod string  `json:"paymentMethod"`
}

// ParseResult is the structured record produced for one receipt.
// The summary fields are flattened into the top-level JSON object.
type ParseResult struct {
	Items []LineItem `json:"items"`
	Summary
	RawText string `json:"rawText"`

	// Dropped counts lines that were neither an item nor a summary line.
	Dropped int `json:"-"`
	// Strategy names the merchant strategy or model that produced the items.
	Strategy string `json:"-"`
}

// Extractor turns OCR lines into a ParseResult
type Extractor interface {
	// Extract parses the ordered receipt lines; rawText is the lines joined by newlines
	Extract(ctx context.Context, lines []string, rawText string) (*ParseResult, error)
}

// Run trims the lines, extracts them with ext and applies reconciliation once.
func Run(ctx context.Context, ext Extractor, lines []string) (*ParseResult, error) {
	cleaned := CleanLines(lines)
	result, err := ext.Extract(ctx, cleaned, strings.Join(cleaned, "\n"))
	if err != nil {
		return nil, err
	}
	reconciled := Reconcile(*result)
	return &reconciled, nil
}

// CleanLines trims every line and drops the empty ones
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// itemsTotal sums the line totals
func itemsTotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price
	}
	return sum
}
