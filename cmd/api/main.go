package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/arogya-ai/consult-backend/internal/config"
	"github.com/arogya-ai/consult-backend/internal/handler"
	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
	consultservice "github.com/arogya-ai/consult-backend/internal/service/consult"
	"github.com/arogya-ai/consult-backend/internal/service/questions"
	"github.com/arogya-ai/consult-backend/internal/service/transcribe"
	"github.com/arogya-ai/consult-backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize the Ark chat model shared by question generation and the
	// ark transcription engine
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to initialize ark chat model: %v", err)
			log.Println("continuing without AI functionality")
		} else {
			log.Println("ark chat model initialized successfully")
		}
	} else {
		log.Println("ark credentials not configured, skipping AI initialization")
	}

	// Initialize transcription service
	var transcribeSvc *transcribe.Service
	switch cfg.Transcribe.Provider {
	case "openai":
		if cfg.Transcribe.OpenAIAPIKey != "" {
			engine, engineErr := transcribe.NewWhisperEngine(cfg.Transcribe.OpenAIAPIKey, cfg.Transcribe.OpenAIBaseURL, cfg.Transcribe.WhisperModel)
			if engineErr != nil {
				log.Printf("warning: failed to initialize whisper engine: %v", engineErr)
			} else {
				transcribeSvc = transcribe.NewService(engine, cfg.Transcribe.MaxBytes)
				log.Println("whisper transcription engine initialized")
			}
		} else {
			log.Println("OPENAI_API_KEY not set, transcription disabled")
		}
	default:
		if chatModel != nil {
			engine, engineErr := transcribe.NewArkEngine(chatModel)
			if engineErr != nil {
				log.Printf("warning: failed to initialize ark transcription engine: %v", engineErr)
			} else {
				transcribeSvc = transcribe.NewService(engine, cfg.Transcribe.MaxBytes)
				log.Println("ark transcription engine initialized")
			}
		} else {
			log.Println("chat model unavailable, transcription disabled")
		}
	}

	// Initialize question generation service
	var questionsSvc *questions.Service
	if chatModel != nil {
		questionsSvc, err = questions.NewService(ctx, chatModel)
		if err != nil {
			log.Printf("warning: failed to initialize question service: %v", err)
			questionsSvc = nil
		} else {
			log.Println("question generation service initialized")
		}
	}

	// Initialize summary archive
	var archive *storage.Archive
	if cfg.Archive.DBPath != "" {
		archive, err = storage.NewArchive(cfg.Archive.DBPath)
		if err != nil {
			log.Printf("warning: failed to open summary archive: %v", err)
			archive = nil
		} else {
			defer archive.Close()
			log.Printf("summary archive opened at %s", cfg.Archive.DBPath)
		}
	} else {
		log.Println("ARCHIVE_DB_PATH not set, summaries kept in memory only")
	}

	store := consultmodel.NewMemoryStore()

	var transcriber consultservice.Transcriber
	if transcribeSvc != nil {
		transcriber = transcribeSvc
	}
	var generator consultservice.QuestionGenerator
	if questionsSvc != nil {
		generator = questionsSvc
	}
	var summaryArchive consultservice.SummaryArchive
	if archive != nil {
		summaryArchive = archive
	}

	consultSvc := consultservice.NewService(store, transcriber, generator, summaryArchive)

	router := handler.NewRouter(consultSvc, transcribeSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Arogya consult backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
