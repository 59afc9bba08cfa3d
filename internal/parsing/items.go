package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// itemShape is one recognizable item layout. The fields are submatch indexes.
type itemShape struct {
	re                *regexp.Regexp
	qty, name, amount int
}

// itemShapes are tried in order; the first match wins.
var itemShapes = []itemShape{
	// ICE TEA 2 x Rp 10.000
	{re: regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s*x\s*Rp[\s.]*([\d.,]+)$`), name: 1, qty: 2, amount: 3},
	// 2 x Rp 10.000 ICE TEA
	{re: regexp.MustCompile(`(?i)^(\d+)\s*x\s*Rp[\s.]*([\d.,]+)\s+(.+)$`), qty: 1, amount: 2, name: 3},
	// 2 ICE TEA 20.000
	{re: regexp.MustCompile(`^(\d+)\s+(.+?)\s+([\d.,]+)$`), qty: 1, name: 2, amount: 3},
}

// MatchItem recognizes a merged line as a line item. The matched amount is the
// line total; the unit price is derived from it.
func MatchItem(line string) (LineItem, bool) {
	for _, shape := range itemShapes {
		m := shape.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[shape.qty])
		if err != nil || qty < 1 {
			continue
		}
		price := NormalizeAmount(m[shape.amount])
		return LineItem{
			Name:         strings.TrimSpace(m[shape.name]),
			Quantity:     qty,
			PricePerItem: math.Round(price / float64(qty)),
			Price:        price,
		}, true
	}
	return LineItem{}, false
}
