package parsing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var reNonAmount = regexp.MustCompile(`[^\d.,\-]`)

// NormalizeAmount parses locale-formatted money text such as "Rp 47.500" or
// "1.234,50" into a number rounded to 3 decimals. Text without digits yields 0.
//
// Every separator is a thousands separator when all digit groups after the first
// have exactly three digits. Otherwise the last separator is the decimal point and
// the others are dropped. A result with exactly three decimals, such as 1.235,
// therefore reads back as 1235.
func NormalizeAmount(s string) float64 {
	s = reNonAmount.ReplaceAllString(s, "")
	negative := strings.HasPrefix(s, "-")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.Trim(s, ".,")
	if !strings.ContainsAny(s, "0123456789") {
		return 0
	}

	groups := strings.FieldsFunc(s, isSeparator)
	canonical := strings.Join(groups, "")
	if len(groups) > 1 && !allThousands(groups[1:]) {
		last := groups[len(groups)-1]
		canonical = strings.Join(groups[:len(groups)-1], "") + "." + last
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return 0
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Round(3).Float64()
	return f
}

func isSeparator(r rune) bool {
	return r == '.' || r == ','
}

func allThousands(groups []string) bool {
	for _, g := range groups {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
