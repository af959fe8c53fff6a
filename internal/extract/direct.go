package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JairFC/douyinstream-pro/internal/stream"
)

var (
	flvMarkerRe  = regexp.MustCompile(`\.flv["']`)
	m3u8MarkerRe = regexp.MustCompile(`\.m3u8["']`)

	flvURLRe  = regexp.MustCompile(`"(https?://[^"]+\.flv[^"]*)"`)
	m3u8URLRe = regexp.MustCompile(`"(https?://[^"]+\.m3u8[^"]*)"`)

	qualityTokenRe = regexp.MustCompile(`_(sd|hd|uhd|origin|ld)\.`)

	titleRe    = regexp.MustCompile(`"title":"([^"]+)"`)
	nicknameRe = regexp.MustCompile(`"nickname":"([^"]+)"`)
)

// maxQualityCandidates bounds how many candidate URLs are grouped by
// quality token; pages embed the same URLs many times.
const maxQualityCandidates = 10

// DirectURLStrategy scans the raw HTML for quoted FLV/M3U8 URLs without
// depending on any JSON structure parsing correctly. Most robust against
// upstream format churn, but it cannot observe an explicit offline signal:
// it reports IsLive whenever any URL is present.
type DirectURLStrategy struct{}

func (s *DirectURLStrategy) Name() string  { return "direct_url" }
func (s *DirectURLStrategy) Priority() int { return 1 }

func (s *DirectURLStrategy) CanAttempt(html string) bool {
	return flvMarkerRe.MatchString(html) || m3u8MarkerRe.MatchString(html)
}

func (s *DirectURLStrategy) Extract(html string, cookies map[string]string) (*stream.Record, error) {
	flvURLs := dedupe(decodeURLs(matchGroups(flvURLRe, html)))
	m3u8URLs := dedupe(decodeURLs(matchGroups(m3u8URLRe, html)))

	if len(flvURLs) == 0 && len(m3u8URLs) == 0 {
		return nil, fmt.Errorf("no stream URLs found")
	}

	// FLV is preferred over M3U8; within a format, document order wins.
	var bestURL string
	if len(flvURLs) > 0 {
		bestURL = flvURLs[0]
	} else {
		bestURL = m3u8URLs[0]
	}

	// Group candidates by quality token, first occurrence wins.
	qualities := make(map[string]string)
	candidates := append(append([]string{}, flvURLs...), m3u8URLs...)
	if len(candidates) > maxQualityCandidates {
		candidates = candidates[:maxQualityCandidates]
	}
	for _, u := range candidates {
		if m := qualityTokenRe.FindStringSubmatch(u); m != nil {
			if _, seen := qualities[m[1]]; !seen {
				qualities[m[1]] = u
			}
		}
	}
	if len(qualities) == 0 {
		qualities["best"] = bestURL
	} else if !containsValue(qualities, bestURL) {
		// The best URL may carry no quality token even when others do;
		// the record invariant requires it among the quality values.
		qualities["best"] = bestURL
	}

	title := stream.DefaultTitle
	if m := titleRe.FindStringSubmatch(html); m != nil {
		title = m[1]
	}
	author := stream.DefaultAuthor
	if m := nicknameRe.FindStringSubmatch(html); m != nil {
		author = m[1]
	}

	logrus.WithFields(logrus.Fields{
		"strategy":  s.Name(),
		"flv":       len(flvURLs),
		"m3u8":      len(m3u8URLs),
		"qualities": len(qualities),
	}).Debug("direct URL scan matched")

	return &stream.Record{
		URL:       bestURL,
		Title:     title,
		Author:    author,
		IsLive:    true, // no offline signal is visible to this strategy
		Qualities: qualities,
	}, nil
}

// urlEscapeReplacer undoes the JSON escapes pages apply to URLs embedded in
// raw HTML. The state strategies never see these: encoding/json decodes them
// natively, so decoding here keeps all three strategies returning the same
// URL for the same stream.
var urlEscapeReplacer = strings.NewReplacer(
	`&`, "&",
	`=`, "=",
	`?`, "?",
	`/`, "/",
	`\/`, "/",
)

// decodeURL unescapes one candidate URL. Percent-decoding is best-effort;
// a malformed escape keeps the candidate as matched.
func decodeURL(raw string) string {
	s := urlEscapeReplacer.Replace(raw)
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	return s
}

func decodeURLs(urls []string) []string {
	for i, u := range urls {
		urls[i] = decodeURL(u)
	}
	return urls
}

// matchGroups returns the first capture group of every match, in document
// order.
func matchGroups(re *regexp.Regexp, html string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(html, -1) {
		out = append(out, m[1])
	}
	return out
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var out []string
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func containsValue(m map[string]string, v string) bool {
	for _, u := range m {
		if u == v {
			return true
		}
	}
	return false
}
