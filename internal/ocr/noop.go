package ocr

import (
	"context"

	"tradeshot/internal/types"
)

// Noop recognizes nothing. It is used when OCR is disabled.
type Noop struct{}

func (Noop) Recognize(ctx context.Context, imagePath string) (types.Recognition, error) {
	return types.Recognition{}, ErrNoText
}
