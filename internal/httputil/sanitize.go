package httputil

import (
	"fmt"
	"net/url"
	"regexp"
)

// roomURLPatterns match the platform's live room URL shapes: the canonical
// live page, the short-link redirector, and profile-style links.
var roomURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://live\.douyin\.com/\S+`),
	regexp.MustCompile(`https?://v\.douyin\.com/\S+`),
	regexp.MustCompile(`https?://(?:www\.)?douyin\.com/\S+`),
}

// roomIDRe extracts the numeric room ID from a canonical live URL.
var roomIDRe = regexp.MustCompile(`live\.douyin\.com/(\d+)`)

// ValidateURL checks that a URL is well-formed, HTTP(S), and has a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// DetectRoomURL scans free-form text for the first live room URL, returning
// it and whether one was found.
func DetectRoomURL(text string) (string, bool) {
	for _, re := range roomURLPatterns {
		if m := re.FindString(text); m != "" {
			return m, true
		}
	}
	return "", false
}

// RoomID extracts the numeric room ID from a canonical live URL, or ""
// when the URL carries none (e.g. short links that still need a redirect).
func RoomID(roomURL string) string {
	if m := roomIDRe.FindStringSubmatch(roomURL); m != nil {
		return m[1]
	}
	return ""
}
