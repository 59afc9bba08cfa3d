package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Partial is what a merchant strategy extracts. Zero fields are left for the
// generic pipeline and the fallback rules.
type Partial struct {
	Items         []LineItem
	Subtotal      float64
	Discount      float64
	Total         float64
	PaymentMethod string
}

// Strategy is an item extraction routine tuned to one receipt family
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string
	// Detect reports whether rawText carries the strategy's merchant signature
	Detect(rawText string) bool
	// Extract parses the receipt lines
	Extract(lines []string, rawText string) Partial
}

// MerchantStrategies returns the merchant strategies in priority order. The generic
// strategy is last and always matches.
func (c *Catalog) MerchantStrategies() []Strategy {
	return []Strategy{
		&Cakery{catalog: c},
		&FoodDelivery{catalog: c},
		&Generic{},
	}
}

// SelectStrategy returns the first strategy whose signature matches rawText
func SelectStrategy(strategies []Strategy, rawText string) Strategy {
	for _, s := range strategies {
		if s.Detect(rawText) {
			return s
		}
	}
	return &Generic{}
}

var (
	reGenericNameQty = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s*x\s*(?:Rp\.?\s*)?([\d.,]+)$`)
	reGenericAtUnit  = regexp.MustCompile(`(?i)^(\d+)\s*x\s*@\s*([\d.,]+)\s+([\d.,]+)(?:\s+(.+))?$`)
)

// Generic recognizes single-line item layouts found on most POS receipts
type Generic struct{}

func (g *Generic) Name() string { return "generic" }

func (g *Generic) Detect(string) bool { return true }

// Extract reads "NAME 2 x 10.000" lines, where the amount is the unit price,
// and "2 x @10.000 20.000 [NAME]" lines, where the name may sit on the line above.
func (g *Generic) Extract(lines []string, _ string) Partial {
	var p Partial
	for i, line := range lines {
		if m := reGenericAtUnit.FindStringSubmatch(line); m != nil {
			qty, ok := quantity(m[1])
			if !ok {
				continue
			}
			name := strings.TrimSpace(m[4])
			if name == "" && i > 0 && !reDigit.MatchString(lines[i-1]) {
				name = lines[i-1]
			}
			p.Items = append(p.Items, LineItem{
				Name:         name,
				Quantity:     qty,
				PricePerItem: NormalizeAmount(m[2]),
				Price:        NormalizeAmount(m[3]),
			})
			continue
		}
		if m := reGenericNameQty.FindStringSubmatch(line); m != nil {
			qty, ok := quantity(m[2])
			if !ok {
				continue
			}
			unit := NormalizeAmount(m[3])
			p.Items = append(p.Items, LineItem{
				Name:         strings.TrimSpace(m[1]),
				Quantity:     qty,
				PricePerItem: unit,
				Price:        unit * float64(qty),
			})
		}
	}
	return p
}

var (
	reCakeryDetail = regexp.MustCompile(`(?i)^(\d+)\s*x\s*([\d.,]+)\s*=?\s*([\d.,]+)$`)
	reCakeryInline = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s*x\s*([\d.,]+)\s*=?\s*([\d.,]+)$`)
	reCakerySub    = regexp.MustCompile(`(?i)^sub\s*total\s*:?\s*(?:rp\.?)?\s*([\d.,]+)$`)
	reCakeryDisc   = regexp.MustCompile(`(?i)^(?:disc(?:ount)?|diskon|potongan)\b.*?-?\s*([\d.,]+)$`)
	reCakeryTotal  = regexp.MustCompile(`(?i)^(?:grand\s*)?total\s*:?\s*(?:rp\.?)?\s*([\d.,]+)$`)
	reCakeryPay    = regexp.MustCompile(`(?i)^((?:debit|credit|kredit|qris|cash|tunai)[a-z ]*?)\s*:?\s*[\d.,]*$`)
)

// Cakery handles bakery POS receipts: the product name on one line and
// "qty x unit total" on the next, with summary amounts inline.
type Cakery struct {
	catalog *Catalog
}

func (k *Cakery) Name() string { return "cakery" }

func (k *Cakery) Detect(rawText string) bool {
	return k.catalog.strategyMatches("cakery", rawText)
}

func (k *Cakery) Extract(lines []string, _ string) Partial {
	var p Partial
	for i, line := range lines {
		switch {
		case reCakeryDetail.MatchString(line):
			m := reCakeryDetail.FindStringSubmatch(line)
			qty, ok := quantity(m[1])
			if !ok || i == 0 {
				continue
			}
			p.Items = append(p.Items, LineItem{
				Name:         lines[i-1],
				Quantity:     qty,
				PricePerItem: NormalizeAmount(m[2]),
				Price:        NormalizeAmount(m[3]),
			})
		case reCakeryInline.MatchString(line):
			m := reCakeryInline.FindStringSubmatch(line)
			qty, ok := quantity(m[2])
			if !ok {
				continue
			}
			p.Items = append(p.Items, LineItem{
				Name:         strings.TrimSpace(m[1]),
				Quantity:     qty,
				PricePerItem: NormalizeAmount(m[3]),
				Price:        NormalizeAmount(m[4]),
			})
		case reCakerySub.MatchString(line):
			p.Subtotal = NormalizeAmount(reCakerySub.FindStringSubmatch(line)[1])
		case reCakeryDisc.MatchString(line):
			p.Discount += NormalizeAmount(reCakeryDisc.FindStringSubmatch(line)[1])
		case reCakeryTotal.MatchString(line):
			p.Total = NormalizeAmount(reCakeryTotal.FindStringSubmatch(line)[1])
		case p.PaymentMethod == "" && reCakeryPay.MatchString(line):
			p.PaymentMethod = strings.ToUpper(strings.TrimSpace(reCakeryPay.FindStringSubmatch(line)[1]))
		}
	}
	return p
}

var (
	reDeliveryItem    = regexp.MustCompile(`(?i)^(\d+)\s*x\s+(.+?)(?:\s+Rp\.?\s*([\d.,]+))?$`)
	reDeliveryPrice   = regexp.MustCompile(`(?i)^Rp\.?\s*([\d.,]+)$`)
	reDeliverySub     = regexp.MustCompile(`(?i)^(?:subtotal|harga)\b`)
	reDeliveryDisc    = regexp.MustCompile(`(?i)^(?:diskon|discount|promo|voucher|potongan)\b`)
	reDeliveryTotal   = regexp.MustCompile(`(?i)^total(?:\s+(?:pembayaran|bayar))?\b`)
	reDeliveryPayment = regexp.MustCompile(`(?i)\b(gopay|ovo|shopeepay|dana|linkaja|cash|tunai)\b`)
)

// FoodDelivery handles order summaries from food-delivery apps, where items
// read "2x Nasi Goreng" with the price inline or on the following line.
type FoodDelivery struct {
	catalog *Catalog
}

func (f *FoodDelivery) Name() string { return "food-delivery" }

func (f *FoodDelivery) Detect(rawText string) bool {
	return f.catalog.strategyMatches("food-delivery", rawText)
}

func (f *FoodDelivery) Extract(lines []string, _ string) Partial {
	var p Partial
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case reDeliverySub.MatchString(line):
			if v, ok := inlineOrNext(lines, i); ok {
				p.Subtotal = v
			}
		case reDeliveryDisc.MatchString(line):
			if v, ok := inlineOrNext(lines, i); ok {
				p.Discount += v
			}
		case reDeliveryTotal.MatchString(line):
			if v, ok := inlineOrNext(lines, i); ok {
				p.Total = v
			}
		case reDeliveryItem.MatchString(line):
			m := reDeliveryItem.FindStringSubmatch(line)
			qty, ok := quantity(m[1])
			if !ok {
				continue
			}
			priceText := m[3]
			if priceText == "" && i+1 < len(lines) {
				if pm := reDeliveryPrice.FindStringSubmatch(lines[i+1]); pm != nil {
					priceText = pm[1]
					i++
				}
			}
			price := NormalizeAmount(priceText)
			p.Items = append(p.Items, LineItem{
				Name:         strings.TrimSpace(m[2]),
				Quantity:     qty,
				PricePerItem: math.Round(price / float64(qty)),
				Price:        price,
			})
		}
		if p.PaymentMethod == "" {
			if m := reDeliveryPayment.FindStringSubmatch(line); m != nil {
				p.PaymentMethod = m[1]
			}
		}
	}
	return p
}

// inlineOrNext reads the amount on lines[i] after its label, or on the next line
func inlineOrNext(lines []string, i int) (float64, bool) {
	if v, ok := lastAmount(lines[i]); ok {
		return v, true
	}
	if i+1 < len(lines) && reDeliveryPrice.MatchString(lines[i+1]) {
		return lastAmount(lines[i+1])
	}
	return 0, false
}

func quantity(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

var reDate = regexp.MustCompile(`\b\d{2}[-/]\d{2}[-/]\d{4}\b`)

// DetectMerchant returns the first line containing a known brand token
func (c *Catalog) DetectMerchant(lines []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, brand := range c.Merchants {
			if strings.Contains(lower, strings.ToLower(brand)) {
				return line
			}
		}
	}
	return ""
}

// DetectDate returns the first DD-MM-YYYY or DD/MM/YYYY substring
func DetectDate(rawText string) string {
	return reDate.FindString(rawText)
}

// DetectPaymentMethod returns the first line naming a bank or payment method,
// without trailing colons
func (c *Catalog) DetectPaymentMethod(lines []string) string {
	for _, line := range lines {
		if c.paymentRe.MatchString(line) {
			return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(line), ":"))
		}
	}
	return ""
}
