package extract

import (
	"errors"
	"testing"

	"github.com/JairFC/douyinstream-pro/internal/stream"
)

// fakeStrategy records its invocations and answers from canned results.
type fakeStrategy struct {
	name     string
	priority int
	attempt  bool
	rec      *stream.Record
	err      error

	calls *[]string
}

func (f *fakeStrategy) Name() string           { return f.name }
func (f *fakeStrategy) Priority() int          { return f.priority }
func (f *fakeStrategy) CanAttempt(string) bool { return f.attempt }
func (f *fakeStrategy) Extract(string, map[string]string) (*stream.Record, error) {
	if f.calls != nil {
		*f.calls = append(*f.calls, f.name)
	}
	return f.rec, f.err
}

func liveRecord(url string) *stream.Record {
	return &stream.Record{
		URL:       url,
		Title:     stream.DefaultTitle,
		Author:    stream.DefaultAuthor,
		IsLive:    true,
		Qualities: map[string]string{"best": url},
	}
}

func TestDispatcherPriorityOrder(t *testing.T) {
	var calls []string
	first := &fakeStrategy{name: "first", priority: 1, attempt: true, err: errors.New("miss"), calls: &calls}
	second := &fakeStrategy{name: "second", priority: 2, attempt: true, rec: liveRecord("https://x/a.flv"), calls: &calls}
	third := &fakeStrategy{name: "third", priority: 3, attempt: true, rec: liveRecord("https://x/b.flv"), calls: &calls}

	// Registration order should not matter, priority does.
	d := NewDispatcher(NewMemStore(Cache{}), third, first, second)

	rec := d.Extract("page", nil)
	if rec == nil || rec.URL != "https://x/a.flv" {
		t.Fatalf("Extract() = %+v, want the second strategy's record", rec)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v, want [first second]", calls)
	}
}

func TestDispatcherCachedWinnerFirst(t *testing.T) {
	var calls []string
	first := &fakeStrategy{name: "first", priority: 1, attempt: true, rec: liveRecord("https://x/a.flv"), calls: &calls}
	second := &fakeStrategy{name: "second", priority: 2, attempt: true, rec: liveRecord("https://x/b.flv"), calls: &calls}

	store := NewMemStore(Cache{LastWorkingStrategy: "second"})
	d := NewDispatcher(store, first, second)

	rec := d.Extract("page", nil)
	if rec == nil || rec.URL != "https://x/b.flv" {
		t.Fatalf("Extract() = %+v, want the cached strategy's record", rec)
	}
	if len(calls) != 1 || calls[0] != "second" {
		t.Errorf("calls = %v, want only the cached winner", calls)
	}
}

func TestDispatcherAdaptsAfterWin(t *testing.T) {
	var calls []string
	first := &fakeStrategy{name: "first", priority: 1, attempt: true, err: errors.New("miss"), calls: &calls}
	second := &fakeStrategy{name: "second", priority: 2, attempt: true, rec: liveRecord("https://x/a.flv"), calls: &calls}

	store := NewMemStore(Cache{})
	d := NewDispatcher(store, first, second)

	if rec := d.Extract("page", nil); rec == nil {
		t.Fatal("first Extract() should succeed via the fallback strategy")
	}
	if d.LastWorking() != "second" {
		t.Fatalf("LastWorking() = %q, want second", d.LastWorking())
	}

	// The win must hit the store so a new process starts warm.
	c, _ := store.Load()
	if c.LastWorkingStrategy != "second" {
		t.Errorf("persisted strategy = %q, want second", c.LastWorkingStrategy)
	}
	if c.LastSuccess.IsZero() {
		t.Error("persisted cache should carry a success timestamp")
	}

	// Next dispatch goes straight to the winner: no flapping.
	calls = nil
	if rec := d.Extract("page", nil); rec == nil {
		t.Fatal("second Extract() should succeed")
	}
	if len(calls) != 1 || calls[0] != "second" {
		t.Errorf("calls = %v, want only the remembered winner", calls)
	}
}

func TestDispatcherCachedWinnerSuccessSkipsRewrite(t *testing.T) {
	first := &fakeStrategy{name: "first", priority: 1, attempt: true, rec: liveRecord("https://x/a.flv")}

	store := NewMemStore(Cache{LastWorkingStrategy: "first"})
	d := NewDispatcher(store, first)

	if rec := d.Extract("page", nil); rec == nil {
		t.Fatal("Extract() should succeed")
	}
	c, _ := store.Load()
	if !c.LastSuccess.IsZero() {
		t.Error("a cached winner's success should not rewrite the store")
	}
}

func TestDispatcherFallsBackWhenCachedFails(t *testing.T) {
	var calls []string
	first := &fakeStrategy{name: "first", priority: 1, attempt: true, rec: liveRecord("https://x/a.flv"), calls: &calls}
	second := &fakeStrategy{name: "second", priority: 2, attempt: true, err: errors.New("format changed"), calls: &calls}

	store := NewMemStore(Cache{LastWorkingStrategy: "second"})
	d := NewDispatcher(store, first, second)

	rec := d.Extract("page", nil)
	if rec == nil || rec.URL != "https://x/a.flv" {
		t.Fatalf("Extract() = %+v, want fallback record", rec)
	}
	if len(calls) != 2 || calls[0] != "second" || calls[1] != "first" {
		t.Errorf("calls = %v, want cached winner attempted before fallback", calls)
	}
	if d.LastWorking() != "first" {
		t.Errorf("LastWorking() = %q, want the new winner", d.LastWorking())
	}
}

func TestDispatcherPreCheckSkipsCounters(t *testing.T) {
	declined := &fakeStrategy{name: "declined", priority: 1, attempt: false}
	winner := &fakeStrategy{name: "winner", priority: 2, attempt: true, rec: liveRecord("https://x/a.flv")}

	d := NewDispatcher(NewMemStore(Cache{}), declined, winner)
	if rec := d.Extract("page", nil); rec == nil {
		t.Fatal("Extract() should succeed")
	}

	for _, s := range d.Stats() {
		switch s.Name {
		case "declined":
			if s.Successes != 0 || s.Failures != 0 {
				t.Errorf("declined pre-check must not touch counters: %+v", s)
			}
		case "winner":
			if s.Successes != 1 || s.Failures != 0 {
				t.Errorf("winner counters = %+v", s)
			}
		}
	}
}

func TestDispatcherAllFail(t *testing.T) {
	first := &fakeStrategy{name: "first", priority: 1, attempt: true, err: errors.New("a")}
	second := &fakeStrategy{name: "second", priority: 2, attempt: false}

	d := NewDispatcher(NewMemStore(Cache{}), first, second)
	if rec := d.Extract("page", nil); rec != nil {
		t.Errorf("Extract() = %+v, want nil when everything fails", rec)
	}
	if d.LastWorking() != "" {
		t.Errorf("LastWorking() = %q, want empty on total failure", d.LastWorking())
	}
}

// failStore always errors; the dispatcher must keep working without it.
type failStore struct{}

func (failStore) Load() (Cache, error) { return Cache{}, errors.New("disk gone") }
func (failStore) Save(Cache) error     { return errors.New("disk gone") }

func TestDispatcherToleratesBrokenStore(t *testing.T) {
	winner := &fakeStrategy{name: "winner", priority: 1, attempt: true, rec: liveRecord("https://x/a.flv")}

	d := NewDispatcher(failStore{}, winner)
	if rec := d.Extract("page", nil); rec == nil {
		t.Fatal("Extract() should succeed despite a broken cache store")
	}
	if d.LastWorking() != "winner" {
		t.Errorf("LastWorking() = %q, in-memory adaptivity must survive store failure", d.LastWorking())
	}
}

func TestDispatcherDefaultStrategySet(t *testing.T) {
	d := NewDispatcher(NewMemStore(Cache{}))
	stats := d.Stats()
	if len(stats) != 3 {
		t.Fatalf("default set has %d strategies, want 3", len(stats))
	}
	want := []string{"direct_url", "wrapped_state", "legacy_state"}
	for i, name := range want {
		if stats[i].Name != name {
			t.Errorf("stats[%d].Name = %q, want %q", i, stats[i].Name, name)
		}
		if stats[i].Priority != i+1 {
			t.Errorf("stats[%d].Priority = %d, want %d", i, stats[i].Priority, i+1)
		}
	}
}
