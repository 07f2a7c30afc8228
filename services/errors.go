package services

import "errors"

// ErrorKind classifies an expected, user-actionable pipeline failure.
type ErrorKind string

const (
	KindInvalidURL          ErrorKind = "invalid_url"
	KindVideoUnavailable    ErrorKind = "video_unavailable"
	KindDurationExceeded    ErrorKind = "duration_exceeded"
	KindDownloadFailed      ErrorKind = "download_failed"
	KindMediaDecoderMissing ErrorKind = "media_decoder_missing"
	KindTranscriptionFailed ErrorKind = "transcription_failed"
	KindLLMNotConfigured    ErrorKind = "llm_not_configured"
	KindLLMRequestFailed    ErrorKind = "llm_request_failed"
	KindInvalidLLMOutput    ErrorKind = "invalid_llm_output"
	KindSchemaViolation     ErrorKind = "schema_violation"
)

// PipelineError is the single error type for expected pipeline failures.
// The REST layer maps it to a 400; any other error is a 500.
type PipelineError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *PipelineError) Error() string {
	return e.Msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches any PipelineError of the same kind, so the sentinels below work
// with errors.Is regardless of message.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidURL          = &PipelineError{Kind: KindInvalidURL, Msg: "invalid youtube url"}
	ErrVideoUnavailable    = &PipelineError{Kind: KindVideoUnavailable, Msg: "video unavailable"}
	ErrDurationExceeded    = &PipelineError{Kind: KindDurationExceeded, Msg: "video too long"}
	ErrDownloadFailed      = &PipelineError{Kind: KindDownloadFailed, Msg: "audio download failed"}
	ErrMediaDecoderMissing = &PipelineError{Kind: KindMediaDecoderMissing, Msg: "media decoder missing"}
	ErrTranscriptionFailed = &PipelineError{Kind: KindTranscriptionFailed, Msg: "transcription failed"}
	ErrLLMNotConfigured    = &PipelineError{Kind: KindLLMNotConfigured, Msg: "llm not configured"}
	ErrLLMRequestFailed    = &PipelineError{Kind: KindLLMRequestFailed, Msg: "llm request failed"}
	ErrInvalidLLMOutput    = &PipelineError{Kind: KindInvalidLLMOutput, Msg: "invalid llm output"}
	ErrSchemaViolation     = &PipelineError{Kind: KindSchemaViolation, Msg: "schema violation"}
)

func newPipelineError(kind ErrorKind, msg string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Msg: msg, Err: cause}
}

// IsPipelineError reports whether err carries an expected pipeline failure.
func IsPipelineError(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe)
}
