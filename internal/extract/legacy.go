package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JairFC/douyinstream-pro/internal/stream"
)

// LegacyStateStrategy parses the older embedded-state format: a plain array
// of objects with no wrapper, scanned in forward order for the first element
// that carries both a state key and a non-empty stream map. Retained as a
// defensive fallback against an upstream format rollback.
type LegacyStateStrategy struct{}

func (s *LegacyStateStrategy) Name() string  { return "legacy_state" }
func (s *LegacyStateStrategy) Priority() int { return 3 }

func (s *LegacyStateStrategy) CanAttempt(html string) bool {
	return strings.Contains(html, paceMarker)
}

func (s *LegacyStateStrategy) Extract(html string, cookies map[string]string) (*stream.Record, error) {
	payloads, err := statePayloads(html)
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(payloads[0]), &elems); err != nil {
		return nil, fmt.Errorf("parsing legacy payload: %w", err)
	}

	for _, raw := range elems {
		st := parseStateElement(raw)
		if st == nil || len(st.StreamStore.StreamData.H264.Stream) == 0 {
			continue
		}
		rec, err := recordFromState(st)
		if err != nil {
			continue
		}
		logrus.WithFields(logrus.Fields{
			"strategy":  s.Name(),
			"live":      rec.IsLive,
			"qualities": len(rec.Qualities),
		}).Debug("legacy state payload matched")
		return rec, nil
	}

	return nil, fmt.Errorf("no element with state and stream data")
}
