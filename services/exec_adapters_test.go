package services

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script into a temp dir and returns
// its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a POSIX sh")
	}
	path := filepath.Join(t.TempDir(), "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const ytdlpScript = `
echo "$@" >> "$(dirname "$0")/args.log"
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --output) shift; out="$1" ;;
  esac
  shift
done
if [ -z "$out" ]; then
  printf '{"id":"AAAAAAAAAAA","title":"Talk","duration":312.5}'
  exit 0
fi
file=$(printf '%s' "$out" | sed 's/%(ext)s/m4a/')
printf 'audio' > "$file"
echo "$file"
`

func TestYTDLPExtractInfo(t *testing.T) {
	script := writeScript(t, ytdlpScript)
	y := &YTDLP{Binary: script}

	info, err := y.ExtractInfo(context.Background(), testVideoURL)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAAAAA", info.ID)
	assert.Equal(t, "Talk", info.Title)
	assert.Equal(t, 312.5, info.Duration)

	args, err := os.ReadFile(filepath.Join(filepath.Dir(script), "args.log"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "--dump-single-json --skip-download")
	assert.Contains(t, string(args), testVideoURL)
}

func TestYTDLPExtractInfoFailures(t *testing.T) {
	t.Run("exit status", func(t *testing.T) {
		y := &YTDLP{Binary: writeScript(t, "echo 'ERROR: Private video' >&2\nexit 1\n")}

		_, err := y.ExtractInfo(context.Background(), testVideoURL)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrExtraction))
		var exitErr *exec.ExitError
		assert.True(t, errors.As(err, &exitErr), "cause stays in the chain")
	})

	t.Run("bad json", func(t *testing.T) {
		y := &YTDLP{Binary: writeScript(t, "echo 'not json'\n")}

		_, err := y.ExtractInfo(context.Background(), testVideoURL)
		assert.True(t, errors.Is(err, ErrExtraction))
	})
}

func TestYTDLPDownloadPrintsPath(t *testing.T) {
	y := &YTDLP{Binary: writeScript(t, ytdlpScript)}
	dir := t.TempDir()

	path, err := DownloadAudio(context.Background(), y, testVideoURL, dir)
	require.NoError(t, err)
	assert.Equal(t, ".m4a", filepath.Ext(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "AAAAAAAAAAA-"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}

func TestYTDLPDownloadFallbackSkipsPartials(t *testing.T) {
	// prints nothing and leaves an in-progress file that sorts first
	y := &YTDLP{Binary: writeScript(t, `
while [ $# -gt 0 ]; do
  case "$1" in
    --output) shift; out="$1" ;;
  esac
  shift
done
base=$(printf '%s' "$out" | sed 's/\.%(ext)s$//')
printf 'x' > "$base.part"
printf 'audio' > "$base.webm"
`)}
	dir := t.TempDir()

	path, err := y.DownloadAudio(context.Background(), testVideoURL, filepath.Join(dir, "AAAAAAAAAAA-1"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAAAAAAAAAA-1.webm"), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "partial file removed")
	assert.Equal(t, "AAAAAAAAAAA-1.webm", entries[0].Name())
}

func TestYTDLPDownloadFailureRemovesLeftovers(t *testing.T) {
	y := &YTDLP{Binary: writeScript(t, `
while [ $# -gt 0 ]; do
  case "$1" in
    --output) shift; out="$1" ;;
  esac
  shift
done
base=$(printf '%s' "$out" | sed 's/\.%(ext)s$//')
printf 'x' > "$base.m4a.part"
printf 'x' > "$base.m4a.ytdl"
echo 'ERROR: HTTP Error 403' >&2
exit 1
`)}
	dir := t.TempDir()

	_, err := DownloadAudio(context.Background(), y, testVideoURL, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownloadFailed))
	assert.Empty(t, scratchEntries(t, dir))
}

func TestYTDLPCancelledContextIsNotAPipelineError(t *testing.T) {
	y := &YTDLP{Binary: writeScript(t, ytdlpScript)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CheckAvailability(ctx, y, testVideoURL, 0)
	require.Error(t, err)
	assert.False(t, IsPipelineError(err))
	assert.True(t, errors.Is(err, context.Canceled))

	dir := t.TempDir()
	_, err = DownloadAudio(ctx, y, testVideoURL, dir)
	require.Error(t, err)
	assert.False(t, IsPipelineError(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, scratchEntries(t, dir))
}

const whisperScript = `
audio="$1"; shift
while [ $# -gt 0 ]; do
  case "$1" in
    --output_dir) shift; dir="$1" ;;
    --model) shift; model="$1" ;;
  esac
  shift
done
base=$(basename "$audio")
base="${base%.*}"
printf '  %s|%s  \n' "$model" "$PATH" > "$dir/$base.txt"
`

func TestWhisperCLITranscribe(t *testing.T) {
	w := &WhisperCLI{Binary: writeScript(t, whisperScript)}

	model, err := w.LoadModel(context.Background(), "tiny", "/opt/ffmpeg/bin/ffmpeg")
	require.NoError(t, err)

	text, err := model.Transcribe(context.Background(), "/tmp/AAAAAAAAAAA-1.m4a")
	require.NoError(t, err)
	// output is read from <audio base>.txt and the decoder dir leads PATH
	assert.True(t, strings.HasPrefix(strings.TrimSpace(text), "tiny|/opt/ffmpeg/bin"+string(os.PathListSeparator)), text)
}

func TestWhisperCLINotInstalled(t *testing.T) {
	w := &WhisperCLI{Binary: filepath.Join(t.TempDir(), "missing-whisper")}

	_, err := w.LoadModel(context.Background(), "tiny", "/usr/bin/ffmpeg")
	assert.Error(t, err)
}

func TestWhisperCLIDecoderMissing(t *testing.T) {
	script := writeScript(t, "echo \"FileNotFoundError: [Errno 2] No such file or directory: 'ffmpeg'\" >&2\nexit 1\n")
	tr := NewTranscriber(&WhisperCLI{Binary: script}, "tiny", "").WithLookPath(lookPathIn("ffmpeg"))

	_, err := tr.Transcribe(context.Background(), "/tmp/a.m4a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMediaDecoderMissing))
	assert.Equal(t, "FFmpeg not found. Please install FFmpeg and add it to PATH.", err.Error())
}

func TestWhisperCLIFailure(t *testing.T) {
	script := writeScript(t, "echo 'RuntimeError: bad audio' >&2\nexit 2\n")
	tr := NewTranscriber(&WhisperCLI{Binary: script}, "tiny", "").WithLookPath(lookPathIn("ffmpeg"))

	_, err := tr.Transcribe(context.Background(), "/tmp/a.m4a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTranscriptionFailed))
	assert.Contains(t, err.Error(), "bad audio")
}

func TestWhisperCLICancelled(t *testing.T) {
	tr := NewTranscriber(&WhisperCLI{Binary: writeScript(t, whisperScript)}, "tiny", "").WithLookPath(lookPathIn("ffmpeg"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Transcribe(ctx, "/tmp/a.m4a")
	require.Error(t, err)
	assert.False(t, IsPipelineError(err))
	assert.True(t, errors.Is(err, context.Canceled))
}
