package port

import (
	"context"
	"sobot/internal/core/domain"
)

type Source interface {
	// GetName identifies the source; it keys the persisted watermark.
	GetName() string
	// Fetch returns the current feed, newest first.
	Fetch(ctx context.Context) ([]domain.Item, error)
	// Render formats one item as a room notification.
	Render(item domain.Item) string
}
