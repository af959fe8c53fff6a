package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JairFC/douyinstream-pro/internal/stream"
)

// WrappedStateStrategy parses the current embedded-state format, where the
// pushed payload is an array wrapper (e.g. ["$","$L12",null,{...}]) nesting
// the real state object at an unpredictable position near the end. The
// array is scanned in reverse for the last object element carrying a
// "state" key.
type WrappedStateStrategy struct{}

func (s *WrappedStateStrategy) Name() string  { return "wrapped_state" }
func (s *WrappedStateStrategy) Priority() int { return 2 }

func (s *WrappedStateStrategy) CanAttempt(html string) bool {
	return strings.Contains(html, paceMarker) && strings.Contains(html, storeMarker)
}

func (s *WrappedStateStrategy) Extract(html string, cookies map[string]string) (*stream.Record, error) {
	payloads, err := statePayloads(html)
	if err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(payloads[0]), &elems); err != nil {
		return nil, fmt.Errorf("parsing wrapper payload: %w", err)
	}

	for i := len(elems) - 1; i >= 0; i-- {
		st := parseStateElement(elems[i])
		if st == nil {
			continue
		}
		rec, err := recordFromState(st)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"strategy":  s.Name(),
			"live":      rec.IsLive,
			"qualities": len(rec.Qualities),
		}).Debug("wrapped state payload matched")
		return rec, nil
	}

	return nil, fmt.Errorf("no state element in wrapper array")
}
