// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"go_5_flashcard_quiz/internal/config"
	"go_5_flashcard_quiz/internal/handlers"
	"go_5_flashcard_quiz/internal/middleware"
	"go_5_flashcard_quiz/internal/repository"
	"go_5_flashcard_quiz/internal/service"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	// 設定ファイル読み込み用の一時的なロガー
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)

	// .envがあれば環境変数に読み込む (ローカル開発用)
	if err := godotenv.Load(); err == nil {
		log.Println(".env loaded")
	}

	if err := config.LoadConfig("configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		// 開発環境では色つきのtintハンドラを使う
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...", slog.String("app_env", appEnv))

	// データベース接続 (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// Redis (アドレス未設定ならキャッシュなしで動作)
	var rdb *redis.Client
	if config.Cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Cfg.Redis.Addr,
			Password: config.Cfg.Redis.Password,
			DB:       config.Cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Warn("Redis unavailable, word info cache disabled", slog.Any("error", err))
			rdb = nil
		}
		cancel()
	}

	// メール送信プロバイダ
	var mailer service.Mailer
	switch config.Cfg.Mailer.Provider {
	case "smtp":
		mailer = service.NewSmtpMailer(&config.Cfg.SMTP)
	case "ses":
		mailer = service.NewSESMailer(config.Cfg)
	default:
		mailer = &service.LogMailer{}
	}

	// 音声合成プロバイダ
	var synth service.Synthesizer
	if config.Cfg.Speech.Provider == "google" {
		gs, err := service.NewGoogleSynthesizer(context.Background())
		if err != nil {
			slog.Error("Error initializing Google TTS client", slog.Any("error", err))
			os.Exit(1)
		}
		defer gs.Close()
		synth = gs
	} else {
		synth = &service.LogSynthesizer{}
	}

	// Dependency Injection
	userRepo := repository.NewGormUserRepository()
	tokenRepo := repository.NewGormTokenRepository()
	cardRepo := repository.NewGormFlashcardRepository()
	progressRepo := repository.NewGormProgressRepository()
	bookRepo := repository.NewGormBookRepository()

	authService := service.NewAuthService(db, userRepo, tokenRepo, mailer, config.Cfg)
	flashcardService := service.NewFlashcardService(db, cardRepo)
	bookService := service.NewBookService(db, bookRepo, cardRepo)
	quizService := service.NewQuizService(db, cardRepo, progressRepo, config.Cfg)
	reviewService := service.NewReviewService(db, cardRepo, synth, config.Cfg)
	wordInfoService := service.NewWordInfoService(rdb, config.Cfg)

	authHandler := handlers.NewAuthHandler(authService, logger)
	flashcardHandler := handlers.NewFlashcardHandler(flashcardService, logger)
	bookHandler := handlers.NewBookHandler(bookService, logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)
	wordInfoHandler := handlers.NewWordInfoHandler(wordInfoService, logger)

	// 学習リマインダー
	reminder := service.NewReminderService(db, userRepo, progressRepo, mailer, config.Cfg, logger)
	if err := reminder.Start(); err != nil {
		slog.Error("Error starting reminder scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	defer reminder.Stop()

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/auth/register", authHandler.Register)
		r.Get("/auth/verify", authHandler.Verify)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/password/forgot", authHandler.ForgotPassword)
		r.Post("/auth/password/reset", authHandler.ResetPassword)

		// --- Protected routes ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(config.Cfg))

			r.Get("/users/me", authHandler.Me)

			r.Route("/flashcards", func(r chi.Router) {
				r.Post("/", flashcardHandler.PostFlashcard)
				r.Get("/", flashcardHandler.GetFlashcards)
				r.Post("/import", flashcardHandler.ImportFlashcards)
				r.Get("/{flashcard_id}", flashcardHandler.GetFlashcard)
				r.Put("/{flashcard_id}", flashcardHandler.PutFlashcard)
				r.Patch("/{flashcard_id}", flashcardHandler.PatchFlashcard)
				r.Delete("/{flashcard_id}", flashcardHandler.DeleteFlashcard)
			})

			r.Route("/books", func(r chi.Router) {
				r.Post("/", bookHandler.PostBook)
				r.Get("/", bookHandler.GetBooks)
				r.Get("/{book_id}", bookHandler.GetBook)
				r.Patch("/{book_id}", bookHandler.PatchBook)
				r.Delete("/{book_id}", bookHandler.DeleteBook)
				r.Post("/{book_id}/cards", bookHandler.PostBookCards)
				r.Delete("/{book_id}/cards/{flashcard_id}", bookHandler.DeleteBookCard)
			})

			r.Route("/quiz", func(r chi.Router) {
				r.Get("/session", quizHandler.GetQuizSession)
				r.Post("/{flashcard_id}/answer", quizHandler.PostQuizAnswer)
			})
			r.Get("/progress", quizHandler.GetProgress)

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/playlist", reviewHandler.GetPlaylist)
				r.Post("/play", reviewHandler.PostPlay)
			})
			r.Post("/speech", reviewHandler.PostSpeech)

			r.Post("/word-info", wordInfoHandler.PostWordInfo)
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.PingContext(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // 音声ストリーミングがあるため長め
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
