package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/Vovarama1992/voxbridge/internal/ports"
)

func RegisterRoutes(
	r chi.Router,
	hTr *TranslateHandler,
	hAudio *AudioHandler,
	hHist *HistoryHandler,
	authSvc ports.AuthService,
	ratePerMin int,
) {
	r.Route("/api", func(api chi.Router) {
		api.Use(
			httputil.RecoverMiddleware,
			IdentityMiddleware(authSvc),
		)

		// --- перевод ---
		api.Group(func(lim chi.Router) {
			if ratePerMin > 0 {
				lim.Use(httprate.LimitByIP(ratePerMin, time.Minute))
			}
			lim.Post("/audio-to-audio", hTr.AudioToAudio)
			lim.Post("/translate-text", hTr.TranslateText)
		})
		api.Get("/languages", hTr.Languages)

		// --- аудио ---
		api.Get("/audio/{audioId}", hAudio.Get)
		api.Post("/cleanup", hAudio.Cleanup)

		// --- история ---
		api.With(RequireIdentity).Get("/history", hHist.List)
	})
}
