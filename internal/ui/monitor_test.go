package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/JairFC/douyinstream-pro/internal/live"
)

func TestNewMonitorModelStartsChecking(t *testing.T) {
	m := NewMonitorModel(nil, time.Minute)
	if !m.checking {
		t.Error("the first sweep starts in Init, the spinner should show from the start")
	}

	updated, _ := m.Update(sweepDoneMsg{})
	if updated.(MonitorModel).checking {
		t.Error("a finished sweep should stop the spinner")
	}
}

func TestRenderStatusTruncation(t *testing.T) {
	s := live.Status{
		URL:    "https://live.douyin.com/123456789",
		Known:  true,
		Live:   true,
		Title:  strings.Repeat("很长的直播标题 ", 10),
		Author: "broadcaster_with_a_long_name",
	}

	for _, width := range []int{20, 33, 50, 80} {
		line := renderStatus(s, width)
		if got := lipgloss.Width(line); got > width {
			t.Errorf("width %d: rendered %d cells", width, got)
		}
		if strings.HasSuffix(line, "\x1b") || strings.HasSuffix(line, "\x1b[") {
			t.Errorf("width %d: line ends mid escape sequence", width)
		}
	}
}

func TestRenderStatusBadges(t *testing.T) {
	tests := []struct {
		name   string
		status live.Status
		want   string
	}{
		{"pending", live.Status{URL: "u"}, "PENDING"},
		{"live", live.Status{URL: "u", Known: true, Live: true, Title: "T", Author: "A"}, "LIVE"},
		{"offline", live.Status{URL: "u", Known: true}, "OFFLINE"},
		{"error", live.Status{URL: "u", Known: true, Err: errors.New("boom")}, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if line := renderStatus(tt.status, 0); !strings.Contains(line, tt.want) {
				t.Errorf("renderStatus() = %q, want badge %q", line, tt.want)
			}
		})
	}
}
