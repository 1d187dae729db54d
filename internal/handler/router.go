package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	questionshandler "github.com/arogya-ai/consult-backend/internal/handler/questions"
	sentimenthandler "github.com/arogya-ai/consult-backend/internal/handler/sentiment"
	sessionhandler "github.com/arogya-ai/consult-backend/internal/handler/session"
	transcribehandler "github.com/arogya-ai/consult-backend/internal/handler/transcribe"
	middlewarePkg "github.com/arogya-ai/consult-backend/internal/middleware"
	consultservice "github.com/arogya-ai/consult-backend/internal/service/consult"
	transcribesvc "github.com/arogya-ai/consult-backend/internal/service/transcribe"
	"github.com/arogya-ai/consult-backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. transcribeSvc may be nil
// when no transcription engine is configured; the upload endpoints then
// answer 503.
func NewRouter(consultSvc *consultservice.Service, transcribeSvc *transcribesvc.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sessionHandler := sessionhandler.New(consultSvc)
	questionsHandler := questionshandler.New(consultSvc)
	sentimentHandler := sentimenthandler.New()

	r.Route("/api", func(api chi.Router) {
		sessionHandler.RegisterRoutes(api)
		questionsHandler.RegisterRoutes(api)
		sentimentHandler.RegisterRoutes(api)

		if transcribeSvc != nil {
			transcribeHandler := transcribehandler.New(transcribeSvc, consultSvc)
			transcribeHandler.RegisterRoutes(api)
		} else {
			unavailable := func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "transcription unavailable")
			}
			api.Post("/transcribe", unavailable)
			api.Post("/transcribe/{sessionID}", unavailable)
		}

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"service": "consult",
			})
		})
	})

	return r
}
