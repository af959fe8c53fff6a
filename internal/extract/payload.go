package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JairFC/douyinstream-pro/internal/stream"
)

const (
	// paceMarker is the embedded-script marker the state strategies key on.
	paceMarker = "__pace_f"

	// storeMarker identifies the push payload that carries stream data.
	storeMarker = "streamStore"

	// liveStatus is the room status sentinel for an active broadcast.
	liveStatus = 2
)

var (
	// pacePushRe matches the scripted push-call wrapping the state JSON:
	// self.__pace_f.push([N,"word:<escaped JSON>"]).
	pacePushRe = regexp.MustCompile(`self\.__pace_f\.push\(\[\d+,"(\w+:.+?)"\]\)`)

	// payloadPrefixRe strips the short alphanumeric prefix ("d:" etc.)
	// preceding the JSON literal.
	payloadPrefixRe = regexp.MustCompile(`^\w+:`)
)

// statePayloads collects the decoded push payloads that mention the stream
// store, in document order. Script tags are located with goquery rather
// than regexing the whole page, so markup quirks outside scripts cannot
// break the match.
func statePayloads(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	var payloads []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !strings.Contains(text, paceMarker) {
			return
		}
		for _, m := range pacePushRe.FindAllStringSubmatch(text, -1) {
			if strings.Contains(m[1], storeMarker) {
				payloads = append(payloads, decodePayload(m[1]))
			}
		}
	})

	if len(payloads) == 0 {
		return nil, fmt.Errorf("no %s payload found", storeMarker)
	}
	return payloads, nil
}

// decodePayload strips the "word:" prefix and un-escapes the doubled
// quotation marks that wrap the embedded JSON literal.
func decodePayload(raw string) string {
	raw = payloadPrefixRe.ReplaceAllString(raw, "")
	return strings.ReplaceAll(raw, `\"`, `"`)
}

// statePayload mirrors the fixed nested-key path the platform embeds room
// and stream data under. Unknown siblings are ignored by encoding/json.
type statePayload struct {
	RoomStore struct {
		RoomInfo struct {
			Room struct {
				Title  string `json:"title"`
				Status int    `json:"status"`
			} `json:"room"`
			Anchor struct {
				Nickname string `json:"nickname"`
			} `json:"anchor"`
		} `json:"roomInfo"`
	} `json:"roomStore"`
	StreamStore struct {
		StreamData struct {
			H264 struct {
				Stream map[string]qualityStream `json:"stream"`
			} `json:"H264_streamData"`
		} `json:"streamData"`
	} `json:"streamStore"`
}

type qualityStream struct {
	Main struct {
		FLV string `json:"flv"`
	} `json:"main"`
}

// stateElement is one element of the pushed array; only object elements
// carrying a "state" key are of interest.
type stateElement struct {
	State *statePayload `json:"state"`
}

// parseStateElement decodes one array element, returning its state payload
// or nil when the element is not an object with a state key.
func parseStateElement(raw json.RawMessage) *statePayload {
	var elem stateElement
	if err := json.Unmarshal(raw, &elem); err != nil {
		return nil
	}
	return elem.State
}

// recordFromState navigates a state payload into a normalized record.
// A missing or empty stream map is an error, never a partial record.
func recordFromState(st *statePayload) (*stream.Record, error) {
	streams := st.StreamStore.StreamData.H264.Stream
	if len(streams) == 0 {
		return nil, fmt.Errorf("state carries no stream data")
	}

	qualities := make(map[string]string, len(streams))
	for label, qs := range streams {
		if qs.Main.FLV != "" {
			qualities[label] = qs.Main.FLV
		}
	}
	if len(qualities) == 0 {
		return nil, fmt.Errorf("stream map has no playable URLs")
	}

	title := st.RoomStore.RoomInfo.Room.Title
	if title == "" {
		title = stream.DefaultTitle
	}
	author := st.RoomStore.RoomInfo.Anchor.Nickname
	if author == "" {
		author = stream.DefaultAuthor
	}

	best := stream.BestQuality(qualities, "")
	return &stream.Record{
		URL:       qualities[best],
		Title:     title,
		Author:    author,
		IsLive:    st.RoomStore.RoomInfo.Room.Status == liveStatus,
		Qualities: qualities,
	}, nil
}
