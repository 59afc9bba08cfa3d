package scanning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zombor/splitbill/internal/parsing"
)

//go:embed receipt.schema.json
var receiptSchemaJSON string

var receiptSchema = jsonschema.MustCompileString("receipt.schema.json", receiptSchemaJSON)

// modelReceipt is the snake_case layout the prompt asks for
type modelReceipt struct {
	Items []struct {
		Name         string  `json:"name"`
		Quantity     int     `json:"quantity"`
		PricePerItem float64 `json:"price_per_item"`
		Price        float64 `json:"price"`
	} `json:"items"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Tax           float64 `json:"tax"`
	TaxPercent    float64 `json:"tax_percent"`
	ServiceCharge float64 `json:"service_charge"`
	Total         float64 `json:"total"`
	Merchant      string  `json:"merchant"`
	Date          string  `json:"date"`
	PaymentMethod string  `json:"payment_method"`
}

// parseReceiptJSON decodes a model reply into a ParseResult. The amounts are
// taken as the model returned them.
func parseReceiptJSON(text string) (*parsing.ParseResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("%w: no JSON object found", parsing.ErrModelResponse)
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, fmt.Errorf("%w: unterminated JSON object", parsing.ErrModelResponse)
	}
	raw := []byte(text[startIdx : endIdx+1])

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", parsing.ErrModelResponse, err)
	}
	if err := receiptSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", parsing.ErrModelResponse, err)
	}

	var data modelReceipt
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", parsing.ErrModelResponse, err)
	}

	items := make([]parsing.LineItem, 0, len(data.Items))
	for _, it := range data.Items {
		ppi := it.PricePerItem
		if ppi == 0 && it.Quantity > 0 {
			ppi = math.Round(it.Price / float64(it.Quantity))
		}
		items = append(items, parsing.LineItem{
			Name:         strings.TrimSpace(it.Name),
			Quantity:     it.Quantity,
			PricePerItem: ppi,
			Price:        it.Price,
		})
	}

	return &parsing.ParseResult{
		Items: items,
		Summary: parsing.Summary{
			Subtotal:      data.Subtotal,
			Discount:      data.Discount,
			Tax:           data.Tax,
			TaxPercent:    data.TaxPercent,
			ServiceCharge: data.ServiceCharge,
			Total:         data.Total,
			Merchant:      strings.TrimSpace(data.Merchant),
			Date:          strings.TrimSpace(data.Date),
			PaymentMethod: strings.TrimSpace(data.PaymentMethod),
		},
	}, nil
}

// completeResult fills in the raw text and the fields the model left empty
// from the receipt lines.
func completeResult(result *parsing.ParseResult, lines []string, rawText, strategy string) {
	catalog := parsing.DefaultCatalog()
	if result.Merchant == "" {
		result.Merchant = catalog.DetectMerchant(lines)
	}
	if result.Date == "" {
		result.Date = parsing.DetectDate(rawText)
	}
	if result.PaymentMethod == "" {
		result.PaymentMethod = catalog.DetectPaymentMethod(lines)
	}
	result.RawText = rawText
	result.Strategy = strategy
}
