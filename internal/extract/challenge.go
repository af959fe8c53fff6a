package extract

import "strings"

const (
	// challengeMarker appears in the platform's slide-puzzle CAPTCHA
	// interstitial. Real room pages can mention it inside bundled scripts,
	// so the marker alone is not enough.
	challengeMarker = "TTGCaptcha"

	// minPlausibleSize is the byte threshold below which a page cannot be
	// real room content. The platform serves ~6KB stubs to unauthenticated
	// or challenged clients; real pages exceed 100KB.
	minPlausibleSize = 10000
)

// IsChallenge reports whether the HTML is a CAPTCHA/anti-bot challenge page
// rather than room content. Both conditions must hold: the challenge marker
// is present and the document is implausibly small.
func IsChallenge(html string) bool {
	return len(html) < minPlausibleSize && strings.Contains(html, challengeMarker)
}

// MinPlausibleSize exposes the size gate threshold so the fetch wrapper can
// apply the same bound when classifying undersized non-challenge pages.
func MinPlausibleSize() int { return minPlausibleSize }
