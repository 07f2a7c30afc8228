package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVideoURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short link", "https://youtu.be/AAAAAAAAAAA", "https://www.youtube.com/watch?v=AAAAAAAAAAA"},
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch with extra params", "https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ&t=42", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=a_b-c_d-e_f", "https://www.youtube.com/watch?v=a_b-c_d-e_f"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"short link with query", "youtu.be/dQw4w9WgXcQ?si=abc", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeVideoURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeVideoURL(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "normalizing twice must be a no-op")
		})
	}
}

func TestNormalizeVideoURLRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"empty", "", "Unsupported URL."},
		{"other host", "https://vimeo.com/123456", "Unsupported URL."},
		{"no id", "https://www.youtube.com/feed/trending", "Could not extract YouTube video id."},
		{"short id", "https://youtu.be/abc", "Could not extract YouTube video id."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeVideoURL(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidURL))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	id, err := ExtractVideoID("https://youtu.be/AAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAAAAA", id)
	assert.Equal(t, "https://www.youtube.com/watch?v=AAAAAAAAAAA", CanonicalVideoURL(id))
}
