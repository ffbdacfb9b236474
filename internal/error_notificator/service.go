package error_notificator

import (
	"context"
	"log"
)

// Service always logs and then forwards to infra when one is configured.
type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

func (s *Service) Notify(ctx context.Context, source string, err error, details string) error {
	if s.infra == nil {
		return LogInfra{}.Notify(ctx, source, err, details)
	}
	if _, ok := s.infra.(LogInfra); !ok {
		log.Printf("[error_notificator] source=%s err=%v", source, err)
	}
	return s.infra.Notify(ctx, source, err, details)
}
