package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const decoderBinary = "ffmpeg"

// ErrDecoderNotFound is returned by speech models that could not start the
// media decoder.
var ErrDecoderNotFound = errors.New("media decoder not found")

const decoderMissingMsg = "FFmpeg not found. Please install FFmpeg and add it to PATH."

// LookPathFunc resolves an executable name or path. exec.LookPath in production.
type LookPathFunc func(file string) (string, error)

// SpeechModel is a loaded speech-recognition model.
type SpeechModel interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// SpeechEngine loads models by name ("tiny", "small", ...).
type SpeechEngine interface {
	LoadModel(ctx context.Context, name string, decoderPath string) (SpeechModel, error)
}

// AudioTranscriber turns an audio file into plain text.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ResolveDecoder finds ffmpeg on the search path, retrying inside fallbackDir
// when the first lookup fails.
func ResolveDecoder(lookPath LookPathFunc, fallbackDir string) (string, error) {
	if path, err := lookPath(decoderBinary); err == nil {
		return path, nil
	}
	if fallbackDir != "" {
		if path, err := lookPath(filepath.Join(fallbackDir, decoderBinary)); err == nil {
			return path, nil
		}
	}
	return "", newPipelineError(KindMediaDecoderMissing, decoderMissingMsg, nil)
}

// Transcriber checks for the media decoder, loads the configured model and
// transcribes one file per call.
type Transcriber struct {
	engine     SpeechEngine
	modelName  string
	decoderDir string
	lookPath   LookPathFunc
}

func NewTranscriber(engine SpeechEngine, modelName, decoderDir string) *Transcriber {
	if modelName == "" {
		modelName = "small"
	}
	return &Transcriber{
		engine:     engine,
		modelName:  modelName,
		decoderDir: decoderDir,
		lookPath:   exec.LookPath,
	}
}

// WithLookPath swaps the executable resolver.
func (t *Transcriber) WithLookPath(fn LookPathFunc) *Transcriber {
	t.lookPath = fn
	return t
}

func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	decoder, err := ResolveDecoder(t.lookPath, t.decoderDir)
	if err != nil {
		return "", err
	}

	start := time.Now()
	model, err := t.engine.LoadModel(ctx, t.modelName, decoder)
	if err != nil {
		return "", transcriptionError(ctx, err)
	}

	text, err := model.Transcribe(ctx, audioPath)
	if err != nil {
		return "", transcriptionError(ctx, err)
	}

	text = strings.TrimSpace(text)
	slog.Info("transcription finished",
		slog.String("model", t.modelName),
		slog.Int("words", len(strings.Fields(text))),
		slog.Duration("took", time.Since(start)),
	)
	return text, nil
}

// transcriptionError classifies an engine failure. Cancellation is not a
// transcription problem and is returned as is.
func transcriptionError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var execErr *exec.Error
	if errors.Is(err, ErrDecoderNotFound) ||
		(errors.As(err, &execErr) && filepath.Base(execErr.Name) == decoderBinary) {
		return newPipelineError(KindMediaDecoderMissing, decoderMissingMsg, err)
	}
	return newPipelineError(KindTranscriptionFailed, fmt.Sprintf("Transcription failed: %v", err), err)
}

// WhisperCLI drives the openai-whisper command line tool.
type WhisperCLI struct {
	Binary string
}

func NewWhisperCLI() *WhisperCLI {
	return &WhisperCLI{Binary: "whisper"}
}

func (w *WhisperCLI) LoadModel(ctx context.Context, name string, decoderPath string) (SpeechModel, error) {
	bin, err := exec.LookPath(w.Binary)
	if err != nil {
		return nil, fmt.Errorf("whisper not installed: %w", err)
	}
	return &whisperModel{binary: bin, name: name, decoderDir: filepath.Dir(decoderPath)}, nil
}

type whisperModel struct {
	binary     string
	name       string
	decoderDir string
}

func (m *whisperModel) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir, err := os.MkdirTemp("", "ytquiz-whisper-*")
	if err != nil {
		return "", fmt.Errorf("creating whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, m.binary,
		audioPath,
		"--model", m.name,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--fp16", "False",
		"--verbose", "False",
	)
	// whisper shells out to ffmpeg by name, so the resolved decoder's
	// directory has to be on the child's PATH.
	cmd.Env = append(os.Environ(), "PATH="+m.decoderDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if decoderMissing(string(output)) {
				return "", fmt.Errorf("%w: %s", ErrDecoderNotFound, tail(string(output), 500))
			}
			return "", fmt.Errorf("whisper exited with %d: %s", exitErr.ExitCode(), tail(string(output), 500))
		}
		return "", fmt.Errorf("running whisper: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	text, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("reading whisper output: %w", err)
	}
	return string(text), nil
}

// decoderMissing spots whisper's traceback when it cannot exec ffmpeg.
func decoderMissing(output string) bool {
	return strings.Contains(output, "No such file or directory: 'ffmpeg'")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
