package parsing

import (
	"context"
	"log/slog"
	"slices"
)

// Heuristic is the rule-based Extractor. It merges split lines, matches item
// and summary lines, runs the merchant strategy picked from the raw text and
// derives whatever the receipt left out.
type Heuristic struct {
	catalog    *Catalog
	strategies []Strategy
	logger     *slog.Logger
}

// NewHeuristic creates a Heuristic extractor. A nil catalog uses DefaultCatalog.
func NewHeuristic(catalog *Catalog, logger *slog.Logger) *Heuristic {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Heuristic{
		catalog:    catalog,
		strategies: catalog.MerchantStrategies(),
		logger:     logger,
	}
}

// Extract implements Extractor
func (h *Heuristic) Extract(ctx context.Context, lines []string, rawText string) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, summary, dropped := h.parseMerged(lines)

	strategy := SelectStrategy(h.strategies, rawText)
	partial := strategy.Extract(lines, rawText)
	_, generic := strategy.(*Generic)
	if generic {
		items, summary = fillFrom(items, summary, partial)
	} else {
		items, summary = overrideWith(items, summary, partial)
	}

	summary.Merchant = h.catalog.DetectMerchant(lines)
	summary.Date = DetectDate(rawText)
	if summary.PaymentMethod == "" {
		summary.PaymentMethod = h.catalog.DetectPaymentMethod(lines)
	}
	summary = DeriveMissing(summary, items)

	h.logger.Debug("parsing.heuristic.done",
		"strategy", strategy.Name(),
		"lines", len(lines),
		"items", len(items),
		"dropped", dropped,
	)

	if items == nil {
		items = []LineItem{}
	}
	return &ParseResult{
		Items:    items,
		Summary:  summary,
		RawText:  rawText,
		Dropped:  dropped,
		Strategy: strategy.Name(),
	}, nil
}

// parseMerged runs the merged-line pipeline. Lines that are neither items nor
// summary lines are dropped and counted.
func (h *Heuristic) parseMerged(lines []string) ([]LineItem, Summary, int) {
	var (
		items   []LineItem
		summary Summary
		dropped int
	)
	merged := slices.Collect(h.catalog.MergeLines(ToRawLines(lines)))
	for i := 0; i < len(merged); i++ {
		line := merged[i].Text
		if v, ok := matchDiscount(line); ok {
			summary.Discount += v
			continue
		}
		if item, ok := MatchItem(line); ok {
			items = append(items, item)
			continue
		}
		if m := h.catalog.classifySummary(merged, i, &summary); m.matched {
			i += m.values
			continue
		}
		dropped++
	}
	return items, summary, dropped
}

// overrideWith lets a merchant-specific strategy win: its items replace the
// pipeline's when it found any, and its non-zero fields take precedence.
func overrideWith(items []LineItem, s Summary, p Partial) ([]LineItem, Summary) {
	if len(p.Items) > 0 {
		items = p.Items
	}
	if p.Subtotal > 0 {
		s.Subtotal = p.Subtotal
	}
	if p.Discount > 0 {
		s.Discount = p.Discount
	}
	if p.Total > 0 {
		s.Total = p.Total
	}
	if p.PaymentMethod != "" {
		s.PaymentMethod = p.PaymentMethod
	}
	return items, s
}

// fillFrom uses the generic strategy only where the pipeline found nothing
func fillFrom(items []LineItem, s Summary, p Partial) ([]LineItem, Summary) {
	if len(items) == 0 {
		items = p.Items
	}
	if s.Subtotal == 0 {
		s.Subtotal = p.Subtotal
	}
	if s.Discount == 0 {
		s.Discount = p.Discount
	}
	if s.Total == 0 {
		s.Total = p.Total
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = p.PaymentMethod
	}
	return items, s
}
