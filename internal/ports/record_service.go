package ports

import "context"

type HistoryService interface {
	// Record stores rec in the background. Failures are reported, never returned.
	Record(rec TranslationRecord)
	History(ctx context.Context, userID int64, limit int) ([]TranslationRecord, error)
	Enabled() bool
}
