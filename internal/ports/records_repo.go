package ports

import (
	"context"
	"time"
)

// TranslationRecord is one row of translation history.
type TranslationRecord struct {
	ID             int64     `json:"id"`
	UserID         *int64    `json:"user_id,omitempty"`
	InputText      string    `json:"input_text"`
	TranslatedText string    `json:"translated_text"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	IsAudio        bool      `json:"is_audio"`
	AudioURL       *string   `json:"audio_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Репозиторий Postgres
type TranslationRepo interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, rec TranslationRecord) (int64, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]TranslationRecord, error)
}
