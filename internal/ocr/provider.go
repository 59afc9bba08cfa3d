package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
)

// Config selects and configures the OCR provider
type Config struct {
	// Provider is azure or vision
	Provider string
	Azure    AzureConfig
	// VisionCredentialsFile is a service account key; empty uses application default credentials
	VisionCredentialsFile string
	LanguageHints         []string
}

// New builds the recognizer named by cfg.Provider. The returned close
// function releases the provider client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Recognizer, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Provider {
	case "", "azure":
		a, err := NewAzure(cfg.Azure, logger)
		if err != nil {
			return nil, noop, err
		}
		return a, noop, nil
	case "vision":
		var opts []option.ClientOption
		if cfg.VisionCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.VisionCredentialsFile))
		}
		v, err := NewVision(ctx, cfg.LanguageHints, logger, opts...)
		if err != nil {
			return nil, noop, err
		}
		return v, v.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown OCR provider %q (valid: azure, vision)", cfg.Provider)
}
