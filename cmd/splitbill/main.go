package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/splitbill/internal/bill"
	"github.com/zombor/splitbill/internal/logging"
	"github.com/zombor/splitbill/internal/ocr"
	"github.com/zombor/splitbill/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("splitbill")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		dbPath         = fs.StringLong("db", "splitbill.db", "Database file path")
		allowedOrigins = fs.StringLong("allowed-origins", "http://localhost:3000", "Comma-separated origins allowed to call the API")
		ocrProvider    = fs.StringLong("ocr", "azure", "OCR provider: 'azure' or 'vision'")
		azureEndpoint  = fs.StringLong("azure-endpoint", "", "Azure Computer Vision endpoint (or set AZURE_COMPUTER_VISION_ENDPOINT env var)")
		azureKey       = fs.StringLong("azure-key", "", "Azure Computer Vision key (or set AZURE_COMPUTER_VISION_KEY env var)")
		ocrLanguage    = fs.StringLong("ocr-language", "", "OCR language hint, e.g. 'id' (empty for auto-detect)")
		ocrMaxWait     = fs.DurationLong("ocr-max-wait", 30*time.Second, "Maximum time to wait for an Azure read operation")
		visionCreds    = fs.StringLong("vision-credentials", "", "Google Cloud service account file for Vision (default: application default credentials)")
		extractorType  = fs.StringLong("extractor", "heuristic", "Receipt extractor: 'heuristic', 'gemini' or 'ollama'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-1.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llama3.1", "Ollama model name")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		logJSON        = fs.BoolLong("log-json", "Write logs as JSON")
		_              = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SPLITBILL"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{Level: *logLevel, JSON: *logJSON})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Initializing database...", "path", *dbPath)
	db, err := bill.NewBoltDB(*dbPath)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var hints []string
	if *ocrLanguage != "" {
		hints = []string{*ocrLanguage}
	}
	logger.Info("Initializing OCR...", "provider", *ocrProvider)
	recognizer, closeOCR, err := ocr.New(ctx, ocr.Config{
		Provider: *ocrProvider,
		Azure: ocr.AzureConfig{
			Endpoint: envOr(*azureEndpoint, "AZURE_COMPUTER_VISION_ENDPOINT"),
			Key:      envOr(*azureKey, "AZURE_COMPUTER_VISION_KEY"),
			Language: *ocrLanguage,
			MaxWait:  *ocrMaxWait,
		},
		VisionCredentialsFile: *visionCreds,
		LanguageHints:         hints,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize OCR", "provider", *ocrProvider, "error", err)
		os.Exit(1)
	}
	defer closeOCR()

	logger.Info("Initializing extractor...", "type", *extractorType)
	extractor, closeExtractor, err := scanning.NewExtractor(ctx, scanning.Config{
		Engine:      *extractorType,
		GeminiKey:   envOr(*geminiKey, "GEMINI_API_KEY"),
		GeminiModel: *geminiModel,
		OllamaURL:   *ollamaURL,
		OllamaModel: *ollamaModel,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize extractor", "type", *extractorType, "error", err)
		os.Exit(1)
	}
	defer closeExtractor()

	service := bill.NewService(db, recognizer, extractor, logger)
	server := bill.NewServer(service, splitList(*allowedOrigins), logger)

	addr := fmt.Sprintf(":%d", *port)
	if err := server.Start(ctx, addr); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Shut down")
}

// envOr returns value, or the named environment variable when value is empty
func envOr(value, env string) string {
	if value != "" {
		return value
	}
	return os.Getenv(env)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimRight(strings.TrimSpace(part), "/"); part != "" {
			out = append(out, part)
		}
	}
	return out
}
