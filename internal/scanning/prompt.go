package scanning

import (
	"errors"
	"strings"
)

// ErrMissingAPIKey is returned by constructors that need credentials
var ErrMissingAPIKey = errors.New("api key is required")

// receiptPrompt is the shared instruction sent to every model provider. The
// receipt text is appended between --- fences.
const receiptPrompt = `Extract structured data from the following receipt text.
The output must be a single, clean JSON object with no extra text or markdown formatting.
Use snake_case for all JSON keys.

IMPORTANT RULES:
1. Indonesian Tax: Restaurant tax in Indonesia is often abbreviated as "PB1" or "PPN". OCR might misread "PB1" as "2B1" or something similar.
2. Logical Check: Any line between the subtotal and total that includes a percentage (%) is almost always a tax or service charge. Discounts are usually labeled "Discount" or are negative numbers.
3. Calculation: The tax and service charge are added to the subtotal. If a value is subtracted, it's a discount.
4. Amounts are in Indonesian Rupiah. "." separates thousands, so "47.500" is 47500.

The JSON object should have this exact structure:
{
  "items": [
    {
      "name": "string",
      "quantity": "integer",
      "price_per_item": "number",
      "price": "number"
    }
  ],
  "subtotal": "number",
  "discount": "number",
  "tax": "number",
  "tax_percent": "number",
  "service_charge": "number",
  "total": "number"
}

Receipt Text:
---
`

func buildPrompt(lines []string) string {
	var b strings.Builder
	b.WriteString(receiptPrompt)
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n---\n")
	return b.String()
}
