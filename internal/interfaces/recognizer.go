package interfaces

import (
	"context"

	"tradeshot/internal/types"
)

// Recognizer reads text from a screenshot.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (types.Recognition, error)
}
