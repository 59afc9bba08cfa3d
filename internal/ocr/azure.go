package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.1/computervision"
	"github.com/Azure/go-autorest/autorest"
	"github.com/avast/retry-go"
	"github.com/gofrs/uuid"
)

const (
	defaultPollInterval = time.Second
	defaultMaxWait      = 30 * time.Second

	statusSucceeded = computervision.Succeeded
	statusFailed    = computervision.Failed
)

var errStillRunning = errors.New("read operation still running")

// readAPI is the part of computervision.BaseClient that Azure uses
type readAPI interface {
	ReadInStream(ctx context.Context, imageParameter io.ReadCloser, language computervision.OcrDetectionLanguage) (autorest.Response, error)
	GetReadResult(ctx context.Context, operationID uuid.UUID) (computervision.ReadOperationResult, error)
}

// AzureConfig holds the Azure Computer Vision settings
type AzureConfig struct {
	Endpoint string
	Key      string
	// Language is the OCR language hint. Empty means English.
	Language string
	// PollInterval is the delay between read result checks (default 1s)
	PollInterval time.Duration
	// MaxWait bounds the whole read operation (default 30s)
	MaxWait time.Duration
}

// Azure recognizes receipt text with the Azure Computer Vision Read API.
// The read is asynchronous: the image is submitted, then the operation is
// polled until it succeeds or fails.
type Azure struct {
	client       readAPI
	language     computervision.OcrDetectionLanguage
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *slog.Logger
}

// NewAzure creates an Azure recognizer
func NewAzure(cfg AzureConfig, logger *slog.Logger) (*Azure, error) {
	if cfg.Endpoint == "" || cfg.Key == "" {
		return nil, fmt.Errorf("azure computer vision: %w", ErrMissingCredentials)
	}
	client := computervision.New(cfg.Endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(cfg.Key)
	return newAzure(client, cfg, logger), nil
}

func newAzure(client readAPI, cfg AzureConfig, logger *slog.Logger) *Azure {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Azure{
		client:       client,
		language:     computervision.OcrDetectionLanguage(cfg.Language),
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		logger:       logger,
	}
}

// Recognize implements Recognizer
func (a *Azure) Recognize(ctx context.Context, image []byte, contentType string) ([]string, error) {
	pngData, err := PrepareImage(image, contentType)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.maxWait)
	defer cancel()

	resp, err := a.client.ReadInStream(ctx, io.NopCloser(bytes.NewReader(pngData)), a.language)
	if err != nil {
		return nil, fmt.Errorf("submitting read: %w", err)
	}

	location := autorest.ExtractHeaderValue("Operation-Location", resp.Response)
	operationID := uuid.FromStringOrNil(path.Base(location))
	if operationID == uuid.Nil {
		return nil, fmt.Errorf("read response has no operation id (Operation-Location %q)", location)
	}

	result, err := a.poll(ctx, operationID)
	if err != nil {
		return nil, err
	}

	var lines []string
	if result.AnalyzeResult != nil && result.AnalyzeResult.ReadResults != nil {
		for _, page := range *result.AnalyzeResult.ReadResults {
			if page.Lines == nil {
				continue
			}
			for _, line := range *page.Lines {
				if line.Text == nil {
					continue
				}
				if text := strings.TrimSpace(*line.Text); text != "" {
					lines = append(lines, text)
				}
			}
		}
	}
	return lines, nil
}

// poll checks the read operation every pollInterval until it leaves the
// running state. ctx carries the maxWait deadline.
func (a *Azure) poll(ctx context.Context, operationID uuid.UUID) (computervision.ReadOperationResult, error) {
	var (
		result computervision.ReadOperationResult
		checks int
	)
	start := time.Now()

	err := retry.Do(
		func() error {
			checks++
			r, err := a.client.GetReadResult(ctx, operationID)
			if err != nil {
				return fmt.Errorf("getting read result: %w", err)
			}
			result = r
			if r.Status == statusSucceeded || r.Status == statusFailed {
				return nil
			}
			return errStillRunning
		},
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errStillRunning)
		}),
		retry.Attempts(uint(a.maxWait/a.pollInterval)+1),
		retry.Delay(a.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)

	a.logger.Debug("ocr.azure.poll",
		"operation", operationID.String(),
		"status", string(result.Status),
		"checks", checks,
		"elapsed", time.Since(start),
	)

	switch {
	case errors.Is(err, errStillRunning), errors.Is(err, context.DeadlineExceeded):
		return result, fmt.Errorf("%w after %s", ErrReadTimeout, a.maxWait)
	case err != nil:
		return result, err
	case result.Status == statusFailed:
		return result, ErrReadFailed
	}
	return result, nil
}
