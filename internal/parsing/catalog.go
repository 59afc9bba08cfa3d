package parsing

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed signatures.yaml
var signaturesYAML []byte

// Catalog holds the read-only keyword tables that drive detection.
// It is built once and shared by every extraction.
type Catalog struct {
	Strategies []StrategySignature `yaml:"strategies"`
	Merchants  []string            `yaml:"merchants"`
	Payments   []string            `yaml:"payments"`
	Summary    SummaryKeywords     `yaml:"summary"`

	paymentRe  *regexp.Regexp
	subtotalRe *regexp.Regexp
	taxRe      *regexp.Regexp
	serviceRe  *regexp.Regexp
	totalRe    *regexp.Regexp
}

// StrategySignature maps a merchant strategy to the substrings that identify it
type StrategySignature struct {
	Name       string   `yaml:"name"`
	Signatures []string `yaml:"signatures"`
}

// SummaryKeywords lists the line prefixes for each summary category
type SummaryKeywords struct {
	Subtotal []string `yaml:"subtotal"`
	Tax      []string `yaml:"tax"`
	Service  []string `yaml:"service"`
	Total    []string `yaml:"total"`
}

// DefaultCatalog returns the embedded catalog, parsed on first use.
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := LoadCatalog(signaturesYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// LoadCatalog parses a YAML keyword table
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(c.Summary.Subtotal) == 0 || len(c.Summary.Tax) == 0 ||
		len(c.Summary.Service) == 0 || len(c.Summary.Total) == 0 {
		return nil, fmt.Errorf("catalog is missing summary keywords")
	}

	c.paymentRe = wordsRegexp(c.Payments)
	c.subtotalRe = regexp.MustCompile(`(?i)^(?:` + alternation(c.Summary.Subtotal) + `)`)
	c.taxRe = regexp.MustCompile(`(?i)^(?:` + alternation(c.Summary.Tax) + `)\b`)
	c.serviceRe = regexp.MustCompile(`(?i)(?:` + alternation(c.Summary.Service) + `)`)
	c.totalRe = regexp.MustCompile(`(?i)^(?:` + alternation(c.Summary.Total) + `)$`)
	return &c, nil
}

// strategyMatches reports whether rawText carries one of the strategy's signatures
func (c *Catalog) strategyMatches(name, rawText string) bool {
	lower := strings.ToLower(rawText)
	for _, s := range c.Strategies {
		if s.Name != name {
			continue
		}
		for _, sig := range s.Signatures {
			if strings.Contains(lower, strings.ToLower(sig)) {
				return true
			}
		}
	}
	return false
}

// isSummaryKeyword reports whether the line opens a summary category
func (c *Catalog) isSummaryKeyword(line string) bool {
	return c.subtotalRe.MatchString(line) || c.taxRe.MatchString(line) ||
		c.serviceRe.MatchString(line) || c.totalRe.MatchString(line)
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s*`)
	}
	return strings.Join(quoted, "|")
}

func wordsRegexp(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return regexp.MustCompile(`$^`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + alternation(words) + `)\b`)
}
