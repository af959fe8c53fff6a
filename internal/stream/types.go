// Package stream defines the normalized stream record shared by all
// extraction strategies and their consumers.
package stream

import (
	"fmt"
	"sort"
)

// DefaultTitle is used when no room title can be recovered from the page.
const DefaultTitle = "Douyin Live"

// DefaultAuthor is used when no broadcaster name can be recovered.
const DefaultAuthor = "Unknown"

// Record is the normalized output of an extraction. It is a value type:
// created fresh per extraction and never mutated after return.
type Record struct {
	URL       string            // best playable URL, non-empty when IsLive
	Title     string            // room title
	Author    string            // broadcaster display name
	IsLive    bool              // whether the room is currently broadcasting
	Qualities map[string]string // quality label -> playable URL
}

// Validate checks the record invariant: a live record must carry at least
// one quality, and its URL must appear among the quality values. Offline
// records may be empty.
func (r *Record) Validate() error {
	if !r.IsLive {
		return nil
	}
	if r.URL == "" {
		return fmt.Errorf("live record has no URL")
	}
	if len(r.Qualities) == 0 {
		return fmt.Errorf("live record has no qualities")
	}
	for _, u := range r.Qualities {
		if u == r.URL {
			return nil
		}
	}
	return fmt.Errorf("live record URL %q missing from quality map", r.URL)
}

// qualityRank orders the platform's known quality labels from best to worst.
// Labels not listed rank below all known ones and fall back to lexical order.
var qualityRank = map[string]int{
	"origin": 0,
	"uhd":    1,
	"hd":     2,
	"ld":     3,
	"sd":     4,
	"best":   5,
}

// BestQuality picks a deterministic "best" label from a quality map.
// The preferred label wins when present; otherwise known labels rank
// origin > uhd > hd > ld > sd > best, and unknown labels sort lexically
// after them. Returns "" for an empty map.
func BestQuality(qualities map[string]string, preferred string) string {
	if len(qualities) == 0 {
		return ""
	}
	if preferred != "" {
		if _, ok := qualities[preferred]; ok {
			return preferred
		}
	}

	labels := make([]string, 0, len(qualities))
	for label := range qualities {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, iok := qualityRank[labels[i]]
		rj, jok := qualityRank[labels[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return labels[i] < labels[j]
		}
	})
	return labels[0]
}

// SortedLabels returns the quality labels of a record best-first.
func (r *Record) SortedLabels() []string {
	labels := make([]string, 0, len(r.Qualities))
	remaining := make(map[string]string, len(r.Qualities))
	for k, v := range r.Qualities {
		remaining[k] = v
	}
	for len(remaining) > 0 {
		best := BestQuality(remaining, "")
		labels = append(labels, best)
		delete(remaining, best)
	}
	return labels
}
