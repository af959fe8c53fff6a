// Package cookie manages the persisted authentication cookies used to fetch
// room pages. The jar is shared by every fetch, so a CAPTCHA resolved once
// refreshes authentication everywhere.
package cookie

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// maxAge is how long persisted cookies are trusted before a refresh is
// expected.
const maxAge = 24 * time.Hour

// sessionCookies are the names whose presence suggests a usable session.
var sessionCookies = []string{"ttwid", "__ac_nonce", "sessionid", "sid_guard"}

// jarFile is the on-disk schema. saved_at is a unix timestamp.
type jarFile struct {
	Cookies map[string]string `json:"cookies"`
	SavedAt int64             `json:"saved_at"`
}

// Jar is a mutex-guarded cookie set persisted as JSON.
type Jar struct {
	mu      sync.RWMutex
	path    string
	cookies map[string]string
	savedAt time.Time
}

// Load reads a jar from path. A missing or corrupt file yields an empty
// jar, never an error: callers fall back to an unauthenticated fetch and
// the CAPTCHA flow.
func Load(path string) *Jar {
	j := &Jar{path: path, cookies: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		return j
	}
	var f jarFile
	if err := json.Unmarshal(data, &f); err != nil || f.Cookies == nil {
		return j
	}
	j.cookies = f.Cookies
	j.savedAt = time.Unix(f.SavedAt, 0)
	return j
}

// Cookies returns a copy of the current cookie set.
func (j *Jar) Cookies() map[string]string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make(map[string]string, len(j.cookies))
	for k, v := range j.cookies {
		out[k] = v
	}
	return out
}

// HasValidCookies reports whether the jar holds a session cookie young
// enough to be trusted.
func (j *Jar) HasValidCookies() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.cookies) == 0 {
		return false
	}
	if !j.savedAt.IsZero() && time.Since(j.savedAt) > maxAge {
		return false
	}
	for _, name := range sessionCookies {
		if _, ok := j.cookies[name]; ok {
			return true
		}
	}
	return false
}

// Update merges new cookies (e.g. from a resolved CAPTCHA) into the jar and
// persists it.
func (j *Jar) Update(cookies map[string]string) error {
	j.mu.Lock()
	for k, v := range cookies {
		j.cookies[k] = v
	}
	j.savedAt = time.Now()
	j.mu.Unlock()
	return j.save()
}

// Clear empties the jar and removes the backing file.
func (j *Jar) Clear() error {
	j.mu.Lock()
	j.cookies = map[string]string{}
	j.savedAt = time.Time{}
	j.mu.Unlock()

	if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cookie file: %w", err)
	}
	return nil
}

// Age returns how long ago the jar was last saved, or zero when unknown.
func (j *Jar) Age() time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.savedAt.IsZero() {
		return 0
	}
	return time.Since(j.savedAt)
}

// save writes the jar atomically (temp file + rename).
func (j *Jar) save() error {
	j.mu.RLock()
	f := jarFile{Cookies: j.cookies, SavedAt: j.savedAt.Unix()}
	data, err := json.Marshal(f)
	j.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cookie dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "cookies-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing cookies: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, j.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cookie file: %w", err)
	}
	return nil
}

// ParseHeader parses a raw "name=value; name2=value2" cookie string, as
// copied from browser developer tools, into a cookie map.
func ParseHeader(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		cookies[name] = value
	}
	return cookies
}
