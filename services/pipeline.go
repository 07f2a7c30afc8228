package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"ytquiz/models"
)

// PipelineConfig is everything the pipeline would otherwise read from the
// process environment.
type PipelineConfig struct {
	ScratchDir     string
	MaxDurationSec int
	NumQuestions   int
}

// QuizStore persists a validated quiz together with its questions.
type QuizStore interface {
	SaveGeneratedQuiz(ctx context.Context, ownerID uint, videoURL string, payload *GeneratedQuiz) (*models.Quiz, error)
}

// QuizGenerating produces a validated quiz from a transcript.
type QuizGenerating interface {
	Generate(ctx context.Context, transcript string, numQuestions int) (*GeneratedQuiz, error)
}

// Pipeline turns a YouTube URL into a stored quiz:
// normalize, check, download, transcribe, generate, persist.
type Pipeline struct {
	cfg         PipelineConfig
	provider    VideoProvider
	transcriber AudioTranscriber
	generator   QuizGenerating
	store       QuizStore
	cache       TranscriptCache
	progress    ProgressNotifier
}

type PipelineOption func(*Pipeline)

func WithTranscriptCache(c TranscriptCache) PipelineOption {
	return func(p *Pipeline) { p.cache = c }
}

func WithProgress(n ProgressNotifier) PipelineOption {
	return func(p *Pipeline) { p.progress = n }
}

func NewPipeline(cfg PipelineConfig, provider VideoProvider, transcriber AudioTranscriber, generator QuizGenerating, store QuizStore, opts ...PipelineOption) *Pipeline {
	if cfg.NumQuestions < 1 {
		cfg.NumQuestions = 10
	}
	p := &Pipeline{
		cfg:         cfg,
		provider:    provider,
		transcriber: transcriber,
		generator:   generator,
		store:       store,
		cache:       noopTranscriptCache{},
		progress:    noopNotifier{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultQuestions is the question count used when a caller passes 0.
func (p *Pipeline) DefaultQuestions() int {
	return p.cfg.NumQuestions
}

// CreateQuizFromYouTube runs the whole pipeline for one request. Expected
// failures come back as *PipelineError; nothing is stored unless every step
// succeeds.
func (p *Pipeline) CreateQuizFromYouTube(ctx context.Context, rawURL string, ownerID uint, numQuestions int) (*models.Quiz, error) {
	if numQuestions < 1 {
		numQuestions = p.cfg.NumQuestions
	}
	start := time.Now()

	quiz, err := p.run(ctx, rawURL, ownerID, numQuestions)
	if err != nil {
		p.notify(ownerID, StageFailed, "", 0, err.Error())
		slog.Warn("quiz pipeline failed",
			slog.String("url", rawURL),
			slog.Uint64("owner_id", uint64(ownerID)),
			slog.Bool("expected", IsPipelineError(err)),
			slog.Any("error", err),
		)
		return nil, err
	}

	slog.Info("quiz created",
		slog.Uint64("quiz_id", uint64(quiz.ID)),
		slog.String("url", quiz.VideoURL),
		slog.Int("questions", len(quiz.Questions)),
		slog.Duration("took", time.Since(start)),
	)
	return quiz, nil
}

func (p *Pipeline) run(ctx context.Context, rawURL string, ownerID uint, numQuestions int) (*models.Quiz, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	canonicalURL := CanonicalVideoURL(videoID)
	p.notify(ownerID, StageNormalized, canonicalURL, 0, "")

	if _, err := CheckAvailability(ctx, p.provider, canonicalURL, p.cfg.MaxDurationSec); err != nil {
		return nil, err
	}
	p.notify(ownerID, StageChecked, canonicalURL, 0, "")

	transcript, cached := p.cache.Get(ctx, videoID)
	if !cached {
		if transcript, err = p.transcribe(ctx, ownerID, canonicalURL); err != nil {
			return nil, err
		}
		if transcript != "" {
			p.cache.Set(ctx, videoID, transcript)
		}
	}
	p.notify(ownerID, StageTranscribed, canonicalURL, 0, "")

	payload, err := p.generator.Generate(ctx, transcript, numQuestions)
	if err != nil {
		return nil, err
	}
	p.notify(ownerID, StageGenerated, canonicalURL, 0, "")

	quiz, err := p.store.SaveGeneratedQuiz(ctx, ownerID, canonicalURL, payload)
	if err != nil {
		return nil, err
	}
	p.notify(ownerID, StagePersisted, canonicalURL, quiz.ID, "")
	return quiz, nil
}

// transcribe downloads the audio and transcribes it. The scratch file is
// removed on every path once download succeeded; removal errors are ignored.
func (p *Pipeline) transcribe(ctx context.Context, ownerID uint, canonicalURL string) (string, error) {
	audioPath, err := DownloadAudio(ctx, p.provider, canonicalURL, p.cfg.ScratchDir)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Debug("scratch cleanup failed", slog.String("path", audioPath), slog.Any("error", err))
		}
	}()
	p.notify(ownerID, StageDownloaded, canonicalURL, 0, "")

	return p.transcriber.Transcribe(ctx, audioPath)
}

func (p *Pipeline) notify(ownerID uint, stage, videoURL string, quizID uint, detail string) {
	p.progress.Notify(ownerID, ProgressEvent{
		Stage:    stage,
		VideoURL: videoURL,
		QuizID:   quizID,
		Detail:   detail,
		At:       time.Now().UTC(),
	})
}
