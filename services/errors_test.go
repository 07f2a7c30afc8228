package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorMatchesByKind(t *testing.T) {
	cause := errors.New("exit status 1")
	err := newPipelineError(KindTranscriptionFailed, "Transcription failed: exit status 1", cause)

	assert.True(t, errors.Is(err, ErrTranscriptionFailed))
	assert.False(t, errors.Is(err, ErrDownloadFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Transcription failed: exit status 1", err.Error())

	wrapped := fmt.Errorf("pipeline: %w", err)
	assert.True(t, IsPipelineError(wrapped))
	assert.True(t, errors.Is(wrapped, ErrTranscriptionFailed))

	assert.False(t, IsPipelineError(errors.New("boom")))
}
