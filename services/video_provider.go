package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Provider error kinds. Adapters wrap their failures in one of these so the
// availability check and the extractor can tell them apart.
var (
	ErrExtraction = errors.New("video info extraction failed")
	ErrDownload   = errors.New("video download failed")
)

// VideoInfo is the subset of provider metadata the pipeline uses.
type VideoInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// VideoProvider fetches metadata and audio for a video URL.
type VideoProvider interface {
	// ExtractInfo queries metadata without downloading media.
	ExtractInfo(ctx context.Context, url string) (*VideoInfo, error)
	// DownloadAudio writes the best audio-only stream to outputBase plus a
	// provider-chosen extension and returns the resulting path.
	DownloadAudio(ctx context.Context, url, outputBase string) (string, error)
}

// YTDLP runs the yt-dlp executable.
type YTDLP struct {
	Binary string
}

func NewYTDLP() *YTDLP {
	return &YTDLP{Binary: "yt-dlp"}
}

func (y *YTDLP) ExtractInfo(ctx context.Context, url string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, y.Binary,
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Debug("yt-dlp info failed", slog.String("url", url), slog.String("stderr", stderr.String()))
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	var info VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: decoding info: %w", ErrExtraction, err)
	}
	return &info, nil
}

func (y *YTDLP) DownloadAudio(ctx context.Context, url, outputBase string) (string, error) {
	cmd := exec.CommandContext(ctx, y.Binary,
		"--format", "bestaudio/best",
		"--output", outputBase+".%(ext)s",
		"--print", "after_move:filepath",
		"--no-playlist",
		"--no-warnings",
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		removeOutputs(outputBase, false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		slog.Debug("yt-dlp download failed", slog.String("url", url), slog.String("stderr", stderr.String()))
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}

	if path := lastLine(string(out)); path != "" {
		removeOutputs(outputBase, true)
		return path, nil
	}

	// Older yt-dlp builds ignore after_move printing; fall back to the template.
	matches, _ := filepath.Glob(outputBase + ".*")
	for _, m := range matches {
		if !isPartial(m) {
			removeOutputs(outputBase, true)
			return m, nil
		}
	}
	removeOutputs(outputBase, false)
	return "", fmt.Errorf("%w: no output file for %s", ErrDownload, outputBase)
}

// isPartial reports yt-dlp's in-progress files (.part, .ytdl, .part-Frag1).
func isPartial(path string) bool {
	return strings.HasSuffix(path, ".part") ||
		strings.HasSuffix(path, ".ytdl") ||
		strings.Contains(filepath.Base(path), ".part-Frag")
}

// removeOutputs deletes files yt-dlp left under outputBase, only the
// in-progress ones when partialOnly is set. The base is unique per call, so
// every match belongs to this download.
func removeOutputs(outputBase string, partialOnly bool) {
	matches, _ := filepath.Glob(outputBase + ".*")
	for _, m := range matches {
		if partialOnly && !isPartial(m) {
			continue
		}
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Debug("removing download leftover", slog.String("path", m), slog.Any("error", err))
		}
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// CheckAvailability queries the provider and enforces the optional duration
// policy. maxDurationSec <= 0 means no policy.
func CheckAvailability(ctx context.Context, provider VideoProvider, canonicalURL string, maxDurationSec int) (*VideoInfo, error) {
	info, err := provider.ExtractInfo(ctx, canonicalURL)
	if err != nil {
		if errors.Is(err, ErrExtraction) || errors.Is(err, ErrDownload) {
			return nil, newPipelineError(KindVideoUnavailable, "YouTube video unavailable or invalid.", err)
		}
		return nil, err
	}
	if maxDurationSec > 0 && info.Duration > float64(maxDurationSec) {
		return nil, newPipelineError(KindDurationExceeded,
			fmt.Sprintf("Video too long (%.0fs, limit %ds).", info.Duration, maxDurationSec), nil)
	}
	return info, nil
}

// DownloadAudio fetches the audio for canonicalURL into scratchDir and returns
// the absolute path. The file name is the video id plus a per-call uuid so
// concurrent requests for the same video never share a scratch file. The
// caller owns the returned file.
func DownloadAudio(ctx context.Context, provider VideoProvider, canonicalURL, scratchDir string) (string, error) {
	videoID, err := ExtractVideoID(canonicalURL)
	if err != nil {
		return "", err
	}

	absDir, err := filepath.Abs(scratchDir)
	if err != nil {
		return "", newPipelineError(KindDownloadFailed, "Audio download failed.", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", newPipelineError(KindDownloadFailed, "Audio download failed.", err)
	}

	outputBase := filepath.Join(absDir, videoID+"-"+uuid.NewString())
	path, err := provider.DownloadAudio(ctx, CanonicalVideoURL(videoID), outputBase)
	if err != nil {
		if errors.Is(err, ErrExtraction) || errors.Is(err, ErrDownload) {
			return "", newPipelineError(KindDownloadFailed, "Failed to download audio from YouTube.", err)
		}
		return "", err
	}

	if path == "" {
		return "", newPipelineError(KindDownloadFailed, "Audio download failed.", nil)
	}
	if path, err = filepath.Abs(path); err != nil {
		return "", newPipelineError(KindDownloadFailed, "Audio download failed.", err)
	}
	if _, err := os.Stat(path); err != nil {
		return "", newPipelineError(KindDownloadFailed, "Audio download failed.", err)
	}
	return path, nil
}
