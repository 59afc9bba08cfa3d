// Command receipt-parse extracts items and totals from OCR'd receipt lines.
// It reads one line of receipt text per input line from a file argument or
// stdin and prints the result as JSON.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/splitbill/internal/logging"
	"github.com/zombor/splitbill/internal/parsing"
	"github.com/zombor/splitbill/internal/scanning"
)

func main() {
	fs := ff.NewFlagSet("receipt-parse")
	var (
		extractorType = fs.StringLong("extractor", "heuristic", "Receipt extractor: 'heuristic', 'gemini' or 'ollama'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-1.5-flash", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llama3.1", "Ollama model name")
		indent        = fs.BoolLong("indent", "Indent the JSON output")
		logLevel      = fs.StringLong("log-level", "warn", "Log level: debug, info, warn or error")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PARSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{Level: *logLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	extractor, closeExtractor, err := scanning.NewExtractor(ctx, scanning.Config{
		Engine:      *extractorType,
		GeminiKey:   apiKey,
		GeminiModel: *geminiModel,
		OllamaURL:   *ollamaURL,
		OllamaModel: *ollamaModel,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize extractor", "type", *extractorType, "error", err)
		os.Exit(1)
	}
	defer closeExtractor()

	if err := run(ctx, extractor, fs.GetArgs(), os.Stdin, os.Stdout, *indent); err != nil {
		logger.Error("Failed to parse receipt", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, extractor parsing.Extractor, args []string, stdin io.Reader, stdout io.Writer, indent bool) error {
	in := stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	lines, err := readLines(in)
	if err != nil {
		return err
	}

	result, err := parsing.Run(ctx, extractor, lines)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}
