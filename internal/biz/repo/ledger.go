package repo

import (
	"context"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
)

// LedgerRepo is the append-only record of captured keywords and images
type LedgerRepo interface {
	Append(ctx context.Context, entry domain.LedgerEntry) error
}

// LedgerReader is implemented by ledgers that can be read back locally
type LedgerReader interface {
	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
}
