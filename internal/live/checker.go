package live

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JairFC/douyinstream-pro/internal/extract"
	"github.com/JairFC/douyinstream-pro/internal/history"
	"github.com/JairFC/douyinstream-pro/internal/httputil"
	"github.com/JairFC/douyinstream-pro/internal/stream"
)

// CookieProvider supplies the authentication cookies for page fetches and
// absorbs refreshed cookies after a resolved challenge.
type CookieProvider interface {
	Cookies() map[string]string
	HasValidCookies() bool
	Update(cookies map[string]string) error
}

// CaptchaResolver drives an out-of-band, human-interactive challenge
// resolution (typically a real browser) and returns the fresh cookie set.
// Implementations must honor ctx: resolution involves a person and is
// bounded by a much longer timeout than a fetch.
type CaptchaResolver interface {
	Resolve(ctx context.Context, roomURL string) (map[string]string, error)
}

// Options tunes a Checker.
type Options struct {
	FetchTimeout   time.Duration // bound on a single page fetch
	CaptchaTimeout time.Duration // bound on interactive challenge resolution
	Resolver       CaptchaResolver
	History        *history.Store // optional check history
}

// Checker is the synchronous extraction path: fetch, classify, dispatch.
// Safe for concurrent use; concurrent checks share the dispatcher and its
// adaptive cache.
type Checker struct {
	client     *http.Client
	cookies    CookieProvider
	dispatcher *extract.Dispatcher
	opts       Options
}

// NewChecker wires a checker from its collaborators.
func NewChecker(cookies CookieProvider, dispatcher *extract.Dispatcher, opts Options) *Checker {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.CaptchaTimeout <= 0 {
		opts.CaptchaTimeout = 5 * time.Minute
	}
	return &Checker{
		client:     httputil.NewClient(opts.FetchTimeout),
		cookies:    cookies,
		dispatcher: dispatcher,
		opts:       opts,
	}
}

// Check fetches a room page and extracts its stream record. Offline rooms
// are a successful result with IsLive false; the error taxonomy covers
// network failures, challenges, expired auth, and format changes.
func (c *Checker) Check(ctx context.Context, roomURL string) (*stream.Record, error) {
	html, err := c.fetch(ctx, roomURL)
	if err != nil {
		return nil, &NetworkError{URL: roomURL, Err: err}
	}

	if extract.IsChallenge(html) {
		html, err = c.resolveChallenge(ctx, roomURL)
		if err != nil {
			return nil, err
		}
	}

	if len(html) < extract.MinPlausibleSize() {
		return nil, &AuthError{URL: roomURL, Size: len(html)}
	}

	rec := c.dispatcher.Extract(html, c.cookies.Cookies())
	if rec == nil {
		logrus.WithFields(logrus.Fields{
			"url":       roomURL,
			"html_size": len(html),
		}).Warn("no strategy matched")
		return nil, ErrNoStreamData
	}

	c.record(roomURL, rec)
	return rec, nil
}

// StreamURL returns the best playable URL for a room, failing with
// ErrStreamOffline when the room is not broadcasting.
func (c *Checker) StreamURL(ctx context.Context, roomURL string) (string, error) {
	rec, err := c.Check(ctx, roomURL)
	if err != nil {
		return "", err
	}
	if !rec.IsLive || rec.URL == "" {
		return "", ErrStreamOffline
	}
	return rec.URL, nil
}

// Stats exposes the dispatcher's per-strategy telemetry.
func (c *Checker) Stats() []extract.StrategyStats {
	return c.dispatcher.Stats()
}

// resolveChallenge runs the out-of-band resolution flow once: resolve,
// absorb the fresh cookies, refetch. A second challenge (or no resolver)
// surfaces as CaptchaError.
func (c *Checker) resolveChallenge(ctx context.Context, roomURL string) (string, error) {
	if c.opts.Resolver == nil {
		return "", &CaptchaError{URL: roomURL}
	}

	logrus.WithField("url", roomURL).Warn("challenge page detected, starting resolution")

	resolveCtx, cancel := context.WithTimeout(ctx, c.opts.CaptchaTimeout)
	defer cancel()

	cookies, err := c.opts.Resolver.Resolve(resolveCtx, roomURL)
	if err != nil {
		return "", &CaptchaError{URL: roomURL}
	}
	if err := c.cookies.Update(cookies); err != nil {
		logrus.WithError(err).Debug("persisting refreshed cookies failed")
	}

	html, err := c.fetch(ctx, roomURL)
	if err != nil {
		return "", &NetworkError{URL: roomURL, Err: err}
	}
	if extract.IsChallenge(html) {
		return "", &CaptchaError{URL: roomURL}
	}
	return html, nil
}

func (c *Checker) fetch(ctx context.Context, roomURL string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()
	return httputil.FetchPage(fetchCtx, c.client, roomURL, c.cookies.Cookies())
}

// record appends a row to the check history when one is attached.
func (c *Checker) record(roomURL string, rec *stream.Record) {
	if c.opts.History == nil {
		return
	}
	err := c.opts.History.Record(history.Check{
		RoomURL:   roomURL,
		Title:     rec.Title,
		Author:    rec.Author,
		Live:      rec.IsLive,
		Strategy:  c.dispatcher.LastWorking(),
		CheckedAt: time.Now(),
	})
	if err != nil {
		logrus.WithError(err).Debug("recording check history failed")
	}
}
