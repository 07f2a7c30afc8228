package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoURL = "https://www.youtube.com/watch?v=AAAAAAAAAAA"

func TestCheckAvailabilityDurationExceeded(t *testing.T) {
	provider := &fakeProvider{info: &VideoInfo{ID: "AAAAAAAAAAA", Duration: 9000}}

	_, err := CheckAvailability(context.Background(), provider, testVideoURL, 1800)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDurationExceeded))
}

func TestCheckAvailabilityNoPolicy(t *testing.T) {
	provider := &fakeProvider{info: &VideoInfo{ID: "AAAAAAAAAAA", Duration: 9000}}

	info, err := CheckAvailability(context.Background(), provider, testVideoURL, 0)
	require.NoError(t, err)
	assert.Equal(t, float64(9000), info.Duration)
}

func TestCheckAvailabilityAtLimit(t *testing.T) {
	provider := &fakeProvider{info: &VideoInfo{ID: "AAAAAAAAAAA", Duration: 1800}}

	_, err := CheckAvailability(context.Background(), provider, testVideoURL, 1800)
	assert.NoError(t, err)
}

func TestCheckAvailabilityUnavailable(t *testing.T) {
	for _, providerErr := range []error{ErrExtraction, ErrDownload} {
		provider := &fakeProvider{infoErr: fmt.Errorf("%w: private video", providerErr)}

		_, err := CheckAvailability(context.Background(), provider, testVideoURL, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrVideoUnavailable))
		assert.Equal(t, "YouTube video unavailable or invalid.", err.Error())
	}
}

func TestCheckAvailabilityUnexpectedError(t *testing.T) {
	provider := &fakeProvider{infoErr: errors.New("network exploded")}

	_, err := CheckAvailability(context.Background(), provider, testVideoURL, 0)
	require.Error(t, err)
	assert.False(t, IsPipelineError(err))
}

func TestDownloadAudio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	provider := &fakeProvider{ext: ".webm"}

	path, err := DownloadAudio(context.Background(), provider, testVideoURL, dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "AAAAAAAAAAA-"))
	assert.Equal(t, ".webm", filepath.Ext(path))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDownloadAudioUniqueNames(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{}

	first, err := DownloadAudio(context.Background(), provider, testVideoURL, dir)
	require.NoError(t, err)
	second, err := DownloadAudio(context.Background(), provider, testVideoURL, dir)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDownloadAudioFailure(t *testing.T) {
	provider := &fakeProvider{downloadErr: fmt.Errorf("%w: 403", ErrDownload)}

	_, err := DownloadAudio(context.Background(), provider, testVideoURL, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownloadFailed))
	assert.Equal(t, "Failed to download audio from YouTube.", err.Error())
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "/tmp/b.m4a", lastLine("[info] x\n/tmp/b.m4a\n"))
	assert.Equal(t, "", lastLine(""))
}
