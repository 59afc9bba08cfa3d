package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reDiscount = regexp.MustCompile(`^-\s*[\d.,]+$`)
	reAmount   = regexp.MustCompile(`\d[\d.,]*`)
	rePercent  = regexp.MustCompile(`(\d{1,3})\s*%`)

	reValueLine   = regexp.MustCompile(`(?i)^[:\s]*(?:rp\.?\s*)?[\d.,]*\d[\d.,]*$`)
	rePercentLine = regexp.MustCompile(`^\(?\s*(\d{1,3})\s*%\s*\)?$`)
)

// matchDiscount recognizes a "- 5.000" line
func matchDiscount(line string) (float64, bool) {
	if !reDiscount.MatchString(line) {
		return 0, false
	}
	return math.Abs(NormalizeAmount(line)), true
}

// lastAmount returns the last number found in s
func lastAmount(s string) (float64, bool) {
	found := reAmount.FindAllString(s, -1)
	if len(found) == 0 {
		return 0, false
	}
	return math.Abs(NormalizeAmount(found[len(found)-1])), true
}

// valueAmount reads a line that holds nothing but an amount. Lines carrying
// any other text, such as items, are never taken as a summary value.
func valueAmount(line string) (float64, bool) {
	if !reValueLine.MatchString(strings.TrimSpace(line)) {
		return 0, false
	}
	return lastAmount(line)
}

// summaryMatch is the outcome of classifying one merged line
type summaryMatch struct {
	matched bool
	// values is how many following lines were read as the line's value
	values int
}

// classifySummary records the summary value carried by lines[idx] into s.
// Categories are checked in the order subtotal, tax, service, total and the
// first one that yields a value wins.
func (c *Catalog) classifySummary(lines []MergedLine, idx int, s *Summary) summaryMatch {
	line := lines[idx].Text
	next := func(k int) string {
		if idx+k < len(lines) {
			return lines[idx+k].Text
		}
		return ""
	}

	if loc := c.subtotalRe.FindStringIndex(line); loc != nil {
		if v, ok := lastAmount(line[loc[1]:]); ok {
			s.Subtotal = v
			return summaryMatch{matched: true}
		}
		if v, ok := valueAmount(next(1)); ok {
			s.Subtotal = v
			return summaryMatch{matched: true, values: 1}
		}
	}

	if loc := c.taxRe.FindStringIndex(line); loc != nil {
		return c.classifyTax(line[loc[1]:], next(1), next(2), s)
	}

	if loc := c.serviceRe.FindStringIndex(line); loc != nil {
		rest := rePercent.ReplaceAllString(line[loc[1]:], "")
		if v, ok := lastAmount(rest); ok {
			s.ServiceCharge = v
			return summaryMatch{matched: true}
		}
		if v, ok := valueAmount(next(1)); ok {
			s.ServiceCharge = v
			return summaryMatch{matched: true, values: 1}
		}
		if rePercentLine.MatchString(strings.TrimSpace(next(1))) {
			if v, ok := valueAmount(next(2)); ok {
				s.ServiceCharge = v
				return summaryMatch{matched: true, values: 2}
			}
		}
	}

	if c.totalRe.MatchString(line) {
		if v, ok := valueAmount(next(1)); ok {
			s.Total = v
			return summaryMatch{matched: true, values: 1}
		}
	}

	return summaryMatch{}
}

// classifyTax reads the tax amount and percentage. A percent marker on the line
// after the keyword means the amount sits one line further down. Without an
// amount the line is left unclassified.
func (c *Catalog) classifyTax(rest, next1, next2 string, s *Summary) summaryMatch {
	var (
		percent    float64
		hasPercent bool
		values     int
		amount     float64
		found      bool
	)

	if m := rePercent.FindStringSubmatch(rest); m != nil {
		percent, hasPercent = parsePercent(m[1])
		rest = rePercent.ReplaceAllString(rest, "")
	}

	if amount, found = lastAmount(rest); !found {
		if amount, found = valueAmount(next1); found {
			values = 1
		} else if m := rePercentLine.FindStringSubmatch(strings.TrimSpace(next1)); m != nil && !hasPercent {
			if amount, found = valueAmount(next2); found {
				percent, hasPercent = parsePercent(m[1])
				values = 2
			}
		}
	}
	if !found {
		return summaryMatch{}
	}

	s.Tax = amount
	switch {
	case hasPercent:
		s.TaxPercent = percent
	case s.Subtotal > 0:
		s.TaxPercent = math.Round(amount / s.Subtotal * 100)
	}
	return summaryMatch{matched: true, values: values}
}

func parsePercent(s string) (float64, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return float64(n), true
}
