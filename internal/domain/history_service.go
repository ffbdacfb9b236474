package domain

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Vovarama1992/voxbridge/internal/error_notificator"
	"github.com/Vovarama1992/voxbridge/internal/ports"
)

const historyWriteTimeout = 10 * time.Second

type HistoryService struct {
	repo     ports.TranslationRepo
	notifier error_notificator.Notificator
	wg       sync.WaitGroup
}

// NewHistoryService returns a service that drops records when repo is nil.
func NewHistoryService(repo ports.TranslationRepo, n error_notificator.Notificator) *HistoryService {
	if n == nil {
		n = error_notificator.LogInfra{}
	}
	return &HistoryService{
		repo:     repo,
		notifier: n,
	}
}

func (s *HistoryService) Enabled() bool { return s.repo != nil }

func (s *HistoryService) Record(rec ports.TranslationRecord) {
	if s.repo == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
		defer cancel()

		id, err := s.repo.Create(ctx, rec)
		if err != nil {
			log.Printf("[history] save fail src=%s tgt=%s audio=%v err=%v", rec.SourceLang, rec.TargetLang, rec.IsAudio, err)
			_ = s.notifier.Notify(ctx, "history", err,
				fmt.Sprintf("Ошибка записи перевода в history: %s→%s", rec.SourceLang, rec.TargetLang))
			return
		}
		log.Printf("[history] saved id=%d", id)
	}()
}

func (s *HistoryService) History(ctx context.Context, userID int64, limit int) ([]ports.TranslationRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// Wait blocks until pending writes finish.
func (s *HistoryService) Wait() {
	s.wg.Wait()
}
