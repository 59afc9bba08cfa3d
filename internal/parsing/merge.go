package parsing

import (
	"iter"
	"regexp"
	"strings"
)

// RawLine is one trimmed OCR line with its position in the receipt
type RawLine struct {
	Index int
	Text  string
}

// MergedLine is one logical receipt line built from 1 to 4 raw lines
type MergedLine struct {
	Text     string
	Start    int // index of the first raw line
	Consumed int
}

var (
	reQtyThenName = regexp.MustCompile(`\d+\s+\D+$`)
	reBareAmount  = regexp.MustCompile(`^[\d.,]+$`)
	reQtyAmount   = regexp.MustCompile(`^(\d+)\s+([\d.,]+)$`)
	reBareQty     = regexp.MustCompile(`^\d{1,3}$`)
	reQtyX        = regexp.MustCompile(`(?i)^(\d+)\s*x$`)
	reAtUnit      = regexp.MustCompile(`^@[\d.,]+$`)
	reDigit       = regexp.MustCompile(`\d`)
)

// ToRawLines indexes already-trimmed lines
func ToRawLines(lines []string) []RawLine {
	raw := make([]RawLine, len(lines))
	for i, l := range lines {
		raw[i] = RawLine{Index: i, Text: strings.TrimSpace(l)}
	}
	return raw
}

// MergeLines walks the raw lines once and yields logical lines, folding item
// fragments that OCR split across several lines. A source line is yielded at
// most once.
func (c *Catalog) MergeLines(lines []RawLine) iter.Seq[MergedLine] {
	return func(yield func(MergedLine) bool) {
		for i := 0; i < len(lines); {
			m := c.mergeAt(lines, i)
			if !yield(m) {
				return
			}
			i += m.Consumed
		}
	}
}

func (c *Catalog) mergeAt(lines []RawLine, i int) MergedLine {
	at := func(k int) string {
		if i+k < len(lines) {
			return lines[i+k].Text
		}
		return ""
	}
	curr, next1, next2, next3 := at(0), at(1), at(2), at(3)
	start := lines[i].Index
	nameOnly := !reDigit.MatchString(curr) && !c.isSummaryKeyword(curr)

	// qty and name here, price on the next line
	if reQtyThenName.MatchString(curr) && reBareAmount.MatchString(next1) {
		return MergedLine{Text: curr + " " + next1, Start: start, Consumed: 2}
	}

	// name here, "qty price" on the next line
	if nameOnly {
		if m := reQtyAmount.FindStringSubmatch(next1); m != nil {
			return MergedLine{Text: m[1] + " " + curr + " " + m[2], Start: start, Consumed: 2}
		}
	}

	// name, qty and price on three lines
	if nameOnly && reBareQty.MatchString(next1) && reBareAmount.MatchString(next2) && reDigit.MatchString(next2) {
		return MergedLine{Text: next1 + " " + curr + " " + next2, Start: start, Consumed: 3}
	}

	// name, "2x", "@unit", line total
	if m := reQtyX.FindStringSubmatch(next1); m != nil && reAtUnit.MatchString(next2) && reBareAmount.MatchString(next3) {
		return MergedLine{Text: m[1] + " " + curr + " " + next3, Start: start, Consumed: 4}
	}

	return MergedLine{Text: curr, Start: start, Consumed: 1}
}
