package cmd

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ytquiz/config"
	"ytquiz/services"
)

// app is the wired object graph shared by serve and generate.
type app struct {
	db          *gorm.DB
	rdb         *redis.Client
	quizService *services.QuizService
	authService *services.AuthService
}

func newApp(cfg *config.Config) (*app, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := config.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	rdb := config.InitRedis(cfg)

	return &app{
		db:          db,
		rdb:         rdb,
		quizService: services.NewQuizService(db),
		authService: services.NewAuthService(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, services.NewTokenBlacklist(rdb)),
	}, nil
}

// pipeline wires the real yt-dlp, Whisper and Gemini adapters.
func (a *app) pipeline(cfg *config.Config, opts ...services.PipelineOption) *services.Pipeline {
	var llm services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		llm = services.NewGeminiGenerator(cfg.GeminiAPIKey)
	}

	opts = append([]services.PipelineOption{
		services.WithTranscriptCache(services.NewTranscriptCache(a.rdb, cfg.WhisperModel, cfg.TranscriptCacheTTL)),
	}, opts...)

	return services.NewPipeline(
		services.PipelineConfig{
			ScratchDir:     cfg.ScratchDir,
			MaxDurationSec: cfg.MaxDurationSec,
			NumQuestions:   cfg.NumQuestions,
		},
		services.NewYTDLP(),
		services.NewTranscriber(services.NewWhisperCLI(), cfg.WhisperModel, cfg.FFmpegDir),
		services.NewQuizGenerator(llm, cfg.GeminiAPIKey, cfg.GeminiModel),
		a.quizService,
		opts...,
	)
}

func (a *app) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			slog.Warn("closing redis", slog.Any("error", err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
