package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/zombor/splitbill/internal/parsing"
)

// generator is the part of *genai.GenerativeModel that Gemini uses
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini implements parsing.Extractor using Google Gemini
type Gemini struct {
	client  *genai.Client
	model   generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini creates a new Gemini extractor instance
func NewGemini(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.SetMaxOutputTokens(2048)
	model.ResponseMIMEType = "application/json"

	g := newGemini(model, logger)
	g.client = client
	return g, nil
}

func newGemini(model generator, logger *slog.Logger) *Gemini {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{
		model:   model,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Extract sends the receipt lines to Gemini and decodes its JSON reply
func (g *Gemini) Extract(ctx context.Context, lines []string, rawText string) (*parsing.ParseResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(lines)))
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no response from gemini", parsing.ErrModelResponse)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	g.logger.Debug("scanning.gemini.response",
		"bytes", responseText.Len(),
		"elapsed", time.Since(start),
	)

	result, err := parseReceiptJSON(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("parsing gemini reply: %w", err)
	}
	completeResult(result, lines, rawText, "gemini")
	return result, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
