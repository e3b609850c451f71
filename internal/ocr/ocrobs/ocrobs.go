package ocrobs

import (
	"context"

	"tradeshot/internal/interfaces"
	"tradeshot/internal/logger"
	"tradeshot/internal/trace"
	"tradeshot/internal/types"
)

type observableRecognizer struct {
	recognizer interfaces.Recognizer
}

var _ interfaces.Recognizer = (*observableRecognizer)(nil)

func Wrap(recognizer interfaces.Recognizer) interfaces.Recognizer {
	return &observableRecognizer{recognizer: recognizer}
}

func (o *observableRecognizer) Recognize(ctx context.Context, imagePath string) (types.Recognition, error) {
	ctx, span := trace.StartSpan(ctx, "ocr.Recognize")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Recognizing screenshot text", "image", imagePath)

	rec, err := o.recognizer.Recognize(ctx, imagePath)
	if err != nil {
		logger.WarnSkip(ctx, 1, "Text recognition failed",
			"image", imagePath,
			"error", err,
		)
		return rec, err
	}

	logger.InfoSkip(ctx, 1, "Text recognized",
		"image", imagePath,
		"words", rec.Words,
		"confidence", rec.Confidence,
	)
	return rec, nil
}
