package services

import (
	"fmt"
	"regexp"
	"strings"
)

const canonicalWatchURL = "https://www.youtube.com/watch?v=%s"

var (
	watchIDRE = regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`)
	pathIDRE  = regexp.MustCompile(`(?:youtu\.be/|embed/)([A-Za-z0-9_-]{11})`)
)

// ExtractVideoID pulls the 11-char video id out of watch, youtu.be and embed
// URLs. Strings without a youtube host token are rejected up front.
func ExtractVideoID(rawURL string) (string, error) {
	if rawURL == "" || (!strings.Contains(rawURL, "youtube") && !strings.Contains(rawURL, "youtu.be")) {
		return "", newPipelineError(KindInvalidURL, "Unsupported URL.", nil)
	}
	if m := watchIDRE.FindStringSubmatch(rawURL); m != nil {
		return m[1], nil
	}
	if m := pathIDRE.FindStringSubmatch(rawURL); m != nil {
		return m[1], nil
	}
	return "", newPipelineError(KindInvalidURL, "Could not extract YouTube video id.", nil)
}

// CanonicalVideoURL formats the watch URL every downstream step uses.
func CanonicalVideoURL(videoID string) string {
	return fmt.Sprintf(canonicalWatchURL, videoID)
}

// NormalizeVideoURL is idempotent: normalizing a canonical URL returns it unchanged.
func NormalizeVideoURL(rawURL string) (string, error) {
	id, err := ExtractVideoID(rawURL)
	if err != nil {
		return "", err
	}
	return CanonicalVideoURL(id), nil
}
