package live

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the cached result of the most recent check of one room.
type Status struct {
	URL       string
	Known     bool // false until the first check completes
	Live      bool
	Title     string
	Author    string
	Err       error
	CheckedAt time.Time
}

// Monitor periodically re-checks a set of rooms through a shared Checker.
// This is the asynchronous adapter over the same strategy/dispatcher core
// the synchronous path uses; each room check is independent, and checks are
// staggered to avoid rate limiting.
type Monitor struct {
	checker  *Checker
	interval time.Duration
	stagger  time.Duration

	mu       sync.RWMutex
	urls     []string
	statuses map[string]Status
	onChange func(Status)
}

// NewMonitor creates a monitor over the given rooms. interval is the pause
// between full sweeps; stagger the pause between individual room checks.
func NewMonitor(checker *Checker, urls []string, interval, stagger time.Duration) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if stagger <= 0 {
		stagger = 2 * time.Second
	}
	m := &Monitor{
		checker:  checker,
		interval: interval,
		stagger:  stagger,
		statuses: make(map[string]Status),
	}
	for _, u := range urls {
		m.Add(u)
	}
	return m
}

// OnChange registers a callback invoked whenever a room's live state flips.
func (m *Monitor) OnChange(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Add starts monitoring a room.
func (m *Monitor) Add(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.urls {
		if u == url {
			return
		}
	}
	m.urls = append(m.urls, url)
	m.statuses[url] = Status{URL: url}
}

// Remove stops monitoring a room.
func (m *Monitor) Remove(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.urls {
		if u == url {
			m.urls = append(m.urls[:i], m.urls[i+1:]...)
			break
		}
	}
	delete(m.statuses, url)
}

// Run sweeps all rooms, sleeps, and repeats until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		m.Sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.interval):
		}
	}
}

// Sweep checks every monitored room once, staggered.
func (m *Monitor) Sweep(ctx context.Context) {
	for i, url := range m.roomURLs() {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.stagger):
			}
		}
		m.CheckNow(ctx, url)
	}
}

// roomURLs returns a snapshot of the monitored URLs.
func (m *Monitor) roomURLs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.urls))
	copy(out, m.urls)
	return out
}

// CheckNow checks one room immediately and updates its cached status.
func (m *Monitor) CheckNow(ctx context.Context, url string) Status {
	status := Status{URL: url, Known: true, CheckedAt: time.Now()}

	rec, err := m.checker.Check(ctx, url)
	switch {
	case err != nil:
		status.Err = err
		logrus.WithField("url", url).WithError(err).Debug("room check failed")
	default:
		status.Live = rec.IsLive
		status.Title = rec.Title
		status.Author = rec.Author
	}

	m.mu.Lock()
	old, tracked := m.statuses[url]
	if tracked {
		m.statuses[url] = status
	}
	changed := tracked && old.Known && old.Live != status.Live && status.Err == nil
	fn := m.onChange
	m.mu.Unlock()

	if changed && fn != nil {
		fn(status)
	}
	return status
}

// Statuses returns a snapshot of all cached statuses, ordered by URL.
func (m *Monitor) Statuses() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Status, 0, len(m.statuses))
	for _, s := range m.statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// LiveURLs returns the rooms currently known to be live.
func (m *Monitor) LiveURLs() []string {
	var out []string
	for _, s := range m.Statuses() {
		if s.Known && s.Live && s.Err == nil {
			out = append(out, s.URL)
		}
	}
	return out
}
