package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// imageAnnotator is the part of vision.ImageAnnotatorClient that Vision uses
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// Vision recognizes receipt text with Google Cloud Vision document text detection
type Vision struct {
	client        imageAnnotator
	languageHints []string
	logger        *slog.Logger
}

// NewVision creates a Vision recognizer. Credentials come from opts or the
// application default credentials.
func NewVision(ctx context.Context, languageHints []string, logger *slog.Logger, opts ...option.ClientOption) (*Vision, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	return newVision(client, languageHints, logger), nil
}

func newVision(client imageAnnotator, languageHints []string, logger *slog.Logger) *Vision {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vision{client: client, languageHints: languageHints, logger: logger}
}

// Recognize implements Recognizer
func (v *Vision) Recognize(ctx context.Context, image []byte, contentType string) ([]string, error) {
	pngData, err := PrepareImage(image, contentType)
	if err != nil {
		return nil, err
	}

	var ictx *visionpb.ImageContext
	if len(v.languageHints) > 0 {
		ictx = &visionpb.ImageContext{LanguageHints: v.languageHints}
	}

	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:        &visionpb.Image{Content: pngData},
			Features:     []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
			ImageContext: ictx,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("detecting document text: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, errors.New("detecting document text: empty response")
	}

	annotated := resp.GetResponses()[0]
	if e := annotated.GetError(); e != nil && e.GetCode() != 0 {
		return nil, fmt.Errorf("detecting document text: %s", e.GetMessage())
	}

	annotation := annotated.GetFullTextAnnotation()
	lines := splitLines(annotation.GetText())
	v.logger.Debug("ocr.vision.done", "lines", len(lines))
	return lines, nil
}

// Close closes the Vision client
func (v *Vision) Close() error {
	return v.client.Close()
}
