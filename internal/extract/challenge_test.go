package extract

import (
	"strings"
	"testing"
)

func TestIsChallenge(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"marker in small page", "<html>TTGCaptcha verify</html>", true},
		{"marker in large page", "TTGCaptcha" + strings.Repeat("x", minPlausibleSize), false},
		{"small page without marker", "<html>loading</html>", false},
		{"empty page", "", false},
		{"large page without marker", strings.Repeat("x", minPlausibleSize+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsChallenge(tt.html); got != tt.want {
				t.Errorf("IsChallenge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMinPlausibleSize(t *testing.T) {
	if MinPlausibleSize() != minPlausibleSize {
		t.Errorf("MinPlausibleSize() = %d, want %d", MinPlausibleSize(), minPlausibleSize)
	}
}
