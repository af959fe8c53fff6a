// Package live orchestrates the authenticated fetch, challenge detection,
// and adaptive extraction for a room, and exposes the error taxonomy callers
// branch on.
package live

import (
	"errors"
	"fmt"
)

// ErrNoStreamData means every extraction strategy was exhausted without a
// match, most likely an upstream format change. Distinct from "offline"
// and from a CAPTCHA.
var ErrNoStreamData = errors.New("no stream data found")

// ErrStreamOffline means the room exists but is not currently broadcasting.
var ErrStreamOffline = errors.New("stream is offline")

// NetworkError wraps a failed page fetch (timeout, DNS, refused connection).
// Recoverable by caller-level retry policy.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// CaptchaError means a challenge page was served instead of room content.
// Recoverable only via an out-of-band resolution flow; it carries the room
// URL so a caller can drive that flow and retry.
type CaptchaError struct {
	URL string
}

func (e *CaptchaError) Error() string {
	return fmt.Sprintf("challenge page served for %s, resolve it in a browser", e.URL)
}

// AuthError means the page was implausibly small without being flagged as a
// challenge, likely expired or missing cookies. Surfaced distinctly so a
// caller re-authenticates instead of retrying endlessly.
type AuthError struct {
	URL  string
	Size int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("page for %s is too small (%d bytes), cookies likely expired", e.URL, e.Size)
}

// UserMessage maps each error kind to the actionable message a UI layer
// should show.
func UserMessage(err error) string {
	var captcha *CaptchaError
	var auth *AuthError
	var network *NetworkError
	switch {
	case errors.As(err, &captcha):
		return "CAPTCHA detected: open the room in a browser, solve it, then retry"
	case errors.As(err, &auth):
		return "Cookies expired or missing: refresh authentication and retry"
	case errors.As(err, &network):
		return "Network error: check connectivity and retry"
	case errors.Is(err, ErrNoStreamData):
		return "No stream data found: the platform format may have changed, check for an update"
	case errors.Is(err, ErrStreamOffline):
		return "Stream is offline"
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
