package extract

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JairFC/douyinstream-pro/internal/stream"
)

// strategyRecord pairs a strategy with its process-lifetime telemetry.
// Counters are atomics: concurrent room checks share one dispatcher.
type strategyRecord struct {
	Strategy
	successes atomic.Int64
	failures  atomic.Int64
}

// StrategyStats is a telemetry snapshot for one strategy.
type StrategyStats struct {
	Name      string
	Priority  int
	Successes int64
	Failures  int64
}

// Dispatcher orchestrates the strategy set: it tries the last strategy that
// worked first, then the rest in ascending priority order, and persists the
// winner so the common case (format unchanged) costs a single attempt.
type Dispatcher struct {
	records []*strategyRecord
	store   CacheStore

	mu          sync.Mutex // serializes lastWorking and cache writes
	lastWorking string
}

// NewDispatcher registers the given strategies (the full set from
// Strategies() when nil) and loads the adaptive cache from store. A missing
// or corrupt cache is never fatal; it just means a cold start.
func NewDispatcher(store CacheStore, strategies ...Strategy) *Dispatcher {
	if len(strategies) == 0 {
		strategies = Strategies()
	}

	records := make([]*strategyRecord, len(strategies))
	for i, s := range strategies {
		records[i] = &strategyRecord{Strategy: s}
	}
	// Ascending priority; ties keep declaration order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Priority() < records[j].Priority()
	})

	d := &Dispatcher{records: records, store: store}

	cache, err := store.Load()
	if err != nil {
		logrus.WithError(err).Debug("strategy cache unreadable, starting cold")
	}
	d.lastWorking = cache.LastWorkingStrategy
	if d.lastWorking != "" {
		logrus.WithField("strategy", d.lastWorking).Debug("loaded strategy cache")
	}
	return d
}

// Extract tries strategies in adaptive order and returns the first record
// produced, or nil when every strategy fails or declines. Callers must
// treat nil as "no stream data found", distinct from offline and from a
// CAPTCHA, both of which are detected elsewhere.
func (d *Dispatcher) Extract(html string, cookies map[string]string) *stream.Record {
	cached := d.LastWorking()

	if cached != "" {
		if r := d.find(cached); r != nil && r.CanAttempt(html) {
			if rec := d.attempt(r, html, cookies); rec != nil {
				// Already the cached winner; no rewrite needed.
				return rec
			}
		}
	}

	for _, r := range d.records {
		if r.Name() == cached {
			continue
		}
		if !r.CanAttempt(html) {
			logrus.WithField("strategy", r.Name()).Debug("pre-check declined")
			continue
		}
		if rec := d.attempt(r, html, cookies); rec != nil {
			d.recordWin(r.Name())
			return rec
		}
	}

	logrus.WithField("html_size", len(html)).Debug("all strategies exhausted")
	return nil
}

// attempt runs one strategy and updates its counters.
func (d *Dispatcher) attempt(r *strategyRecord, html string, cookies map[string]string) *stream.Record {
	rec, err := r.Extract(html, cookies)
	if err != nil || rec == nil {
		r.failures.Add(1)
		logrus.WithFields(logrus.Fields{
			"strategy": r.Name(),
			"failures": r.failures.Load(),
		}).WithError(err).Debug("strategy failed")
		return nil
	}
	r.successes.Add(1)
	return rec
}

// recordWin remembers the winning strategy and persists the cache.
// Persistence is best-effort: a write failure is logged, never surfaced.
func (d *Dispatcher) recordWin(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastWorking = name
	err := d.store.Save(Cache{
		LastWorkingStrategy: name,
		LastSuccess:         time.Now().UTC(),
	})
	if err != nil {
		logrus.WithError(err).WithField("strategy", name).Debug("strategy cache save failed")
	}
}

// LastWorking returns the name of the strategy that last produced a record,
// or "" on a cold cache.
func (d *Dispatcher) LastWorking() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastWorking
}

// Stats returns per-strategy telemetry in priority order.
func (d *Dispatcher) Stats() []StrategyStats {
	stats := make([]StrategyStats, len(d.records))
	for i, r := range d.records {
		stats[i] = StrategyStats{
			Name:      r.Name(),
			Priority:  r.Priority(),
			Successes: r.successes.Load(),
			Failures:  r.failures.Load(),
		}
	}
	return stats
}

func (d *Dispatcher) find(name string) *strategyRecord {
	for _, r := range d.records {
		if r.Name() == name {
			return r
		}
	}
	return nil
}
