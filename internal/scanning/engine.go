package scanning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zombor/splitbill/internal/parsing"
)

// Config selects and configures the receipt extractor
type Config struct {
	// Engine is heuristic, gemini or ollama
	Engine      string
	GeminiKey   string
	GeminiModel string
	OllamaURL   string
	OllamaModel string
}

// NewExtractor builds the extractor named by cfg.Engine. The returned close
// function releases the model client.
func NewExtractor(ctx context.Context, cfg Config, logger *slog.Logger) (parsing.Extractor, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Engine {
	case "", "heuristic":
		return parsing.NewHeuristic(nil, logger), noop, nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case "ollama":
		o := NewOllama(cfg.OllamaURL, cfg.OllamaModel, logger)
		return o, o.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown extractor %q (valid: heuristic, gemini, ollama)", cfg.Engine)
}
