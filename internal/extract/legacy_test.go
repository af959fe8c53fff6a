package extract

import (
	"reflect"
	"testing"
)

func TestLegacyStateCanAttempt(t *testing.T) {
	s := &LegacyStateStrategy{}

	if !s.CanAttempt("__pace_f without store marker") {
		t.Error("legacy pre-check needs only the pace marker")
	}
	if s.CanAttempt("<html>plain page</html>") {
		t.Error("legacy pre-check should decline pages without pushes")
	}
}

func TestLegacyStateExtract(t *testing.T) {
	s := &LegacyStateStrategy{}

	t.Run("first element with stream data wins", func(t *testing.T) {
		empty := stateJSON("No Streams", 2, "a", nil)
		full := stateJSON("First Full", 2, "b", map[string]string{
			"hd": "https://pull.example.com/h.flv",
		})
		later := stateJSON("Second Full", 2, "c", map[string]string{
			"sd": "https://pull.example.com/s.flv",
		})
		html := paceFixture(t, `[{"other":1},{"state":`+empty+`},{"state":`+full+`},{"state":`+later+`}]`)

		rec, err := s.Extract(html, nil)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if rec.Title != "First Full" {
			t.Errorf("Title = %q, want the first element with streams", rec.Title)
		}
	})

	t.Run("status decides liveness", func(t *testing.T) {
		state := stateJSON("Over", 4, "host", map[string]string{
			"sd": "https://pull.example.com/s.flv",
		})
		html := paceFixture(t, `[{"state":`+state+`}]`)

		rec, err := s.Extract(html, nil)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if rec.IsLive {
			t.Error("status 4 should report offline")
		}
	})

	t.Run("no usable element is an error", func(t *testing.T) {
		empty := stateJSON("No Streams", 2, "a", nil)
		html := paceFixture(t, `[{"state":`+empty+`}]`)
		if _, err := s.Extract(html, nil); err == nil {
			t.Error("Extract() should fail when no element carries streams")
		}
	})
}

// Both state strategies normalize the same state object to the same record,
// field for field, so a format rollback is invisible to consumers.
func TestStateStrategiesAgree(t *testing.T) {
	state := stateJSON("Agreement", 2, "host", map[string]string{
		"origin": "https://pull.example.com/o.flv",
		"hd":     "https://pull.example.com/h.flv",
		"sd":     "https://pull.example.com/s.flv",
	})

	wrappedHTML := paceFixture(t, `["$",null,{"state":`+state+`}]`)
	legacyHTML := paceFixture(t, `[{"state":`+state+`}]`)

	wrapped, err := (&WrappedStateStrategy{}).Extract(wrappedHTML, nil)
	if err != nil {
		t.Fatalf("wrapped Extract() error = %v", err)
	}
	legacy, err := (&LegacyStateStrategy{}).Extract(legacyHTML, nil)
	if err != nil {
		t.Fatalf("legacy Extract() error = %v", err)
	}

	if !reflect.DeepEqual(wrapped, legacy) {
		t.Errorf("records differ:\nwrapped = %+v\nlegacy  = %+v", wrapped, legacy)
	}
}
