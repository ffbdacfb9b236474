package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vovarama1992/voxbridge/internal/ports"
)

type translationRepo struct {
	db *sql.DB
}

func NewTranslationRepo(db *sql.DB) ports.TranslationRepo {
	return &translationRepo{db: db}
}

func (r *translationRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS translations (
			id              BIGSERIAL PRIMARY KEY,
			user_id         BIGINT NULL,
			input_text      TEXT NOT NULL,
			translated_text TEXT NOT NULL,
			source_lang     VARCHAR(16) NOT NULL,
			target_lang     VARCHAR(16) NOT NULL,
			is_audio        BOOLEAN NOT NULL DEFAULT FALSE,
			audio_url       TEXT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS translations_user_idx ON translations (user_id, created_at DESC);
	`)
	return err
}

func (r *translationRepo) Create(ctx context.Context, rec ports.TranslationRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO translations (user_id, input_text, translated_text, source_lang, target_lang, is_audio, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, rec.UserID, rec.InputText, rec.TranslatedText, rec.SourceLang, rec.TargetLang, rec.IsAudio, rec.AudioURL, createdAt).Scan(&id)
	return id, err
}

func (r *translationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]ports.TranslationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, input_text, translated_text, source_lang, target_lang, is_audio, audio_url, created_at
		FROM translations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ports.TranslationRecord
	for rows.Next() {
		var rec ports.TranslationRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.InputText,
			&rec.TranslatedText,
			&rec.SourceLang,
			&rec.TargetLang,
			&rec.IsAudio,
			&rec.AudioURL,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
