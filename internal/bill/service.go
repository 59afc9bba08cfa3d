package bill

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/splitbill/internal/ocr"
	"github.com/zombor/splitbill/internal/parsing"
)

// IDGenerator generates unique IDs for shared bills
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now().UTC()
}

// Service reads receipts and stores shared bills
type Service struct {
	db          DB
	recognizer  ocr.Recognizer
	extractor   parsing.Extractor
	idGenerator IDGenerator
	timeSource  TimeSource
	logger      *slog.Logger
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, recognizer ocr.Recognizer, extractor parsing.Extractor, logger *slog.Logger) *Service {
	return NewServiceWithDeps(db, recognizer, extractor, &defaultIDGenerator{}, &defaultTimeSource{}, logger)
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, recognizer ocr.Recognizer, extractor parsing.Extractor, idGen IDGenerator, timeSrc TimeSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:          db,
		recognizer:  recognizer,
		extractor:   extractor,
		idGenerator: idGen,
		timeSource:  timeSrc,
		logger:      logger,
	}
}

// ScanReceipt reads the text of a receipt image and extracts its items and totals
func (s *Service) ScanReceipt(ctx context.Context, data []byte, contentType string) (*ScanResult, error) {
	lines, err := s.recognizer.Recognize(ctx, data, contentType)
	if err != nil {
		s.logger.Error("Failed to recognize receipt",
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("recognizing receipt: %w", err)
	}

	parsed, err := parsing.Run(ctx, s.extractor, lines)
	if err != nil {
		s.logger.Error("Failed to parse receipt", "lines", len(lines), "error", err)
		return nil, fmt.Errorf("parsing receipt: %w", err)
	}

	s.logger.Info("Scanned receipt",
		"lines", len(lines),
		"items", len(parsed.Items),
		"dropped", parsed.Dropped,
		"strategy", parsed.Strategy,
		"total", parsed.Total,
	)

	if lines == nil {
		lines = []string{}
	}
	return &ScanResult{Text: lines, Parsed: parsed}, nil
}

// ShareBill stores a split bill and returns it with its new ID
func (s *Service) ShareBill(billData, people json.RawMessage) (*SharedBill, error) {
	now := s.timeSource.Now()
	bill := &SharedBill{
		ID:        s.idGenerator.Generate(),
		BillData:  billData,
		People:    people,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := bill.validate(); err != nil {
		return nil, err
	}

	if err := s.db.SaveBill(bill); err != nil {
		return nil, fmt.Errorf("saving shared bill: %w", err)
	}
	return bill, nil
}

// GetSharedBill retrieves a shared bill by ID
func (s *Service) GetSharedBill(id string) (*SharedBill, error) {
	bill, err := s.db.GetBill(id)
	if err != nil {
		return nil, fmt.Errorf("getting shared bill: %w", err)
	}
	return bill, nil
}
