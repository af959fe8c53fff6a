// Package ui implements the terminal monitor view: a periodically
// refreshing list of monitored rooms and their live status.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/JairFC/douyinstream-pro/internal/live"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	liveStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type sweepDoneMsg struct{}

type tickMsg time.Time

// MonitorModel is the bubbletea model driving the monitor view.
type MonitorModel struct {
	monitor  *live.Monitor
	interval time.Duration
	spinner  spinner.Model
	width    int
	checking bool
	lastRun  time.Time
	quitting bool
}

// NewMonitorModel creates the monitor view over an existing room monitor.
func NewMonitorModel(monitor *live.Monitor, interval time.Duration) MonitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	return MonitorModel{
		monitor:  monitor,
		interval: interval,
		spinner:  sp,
		width:    width,
		checking: true, // Init starts the first sweep immediately
	}
}

func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sweep())
}

// sweep runs one full check pass in the background.
func (m MonitorModel) sweep() tea.Cmd {
	return func() tea.Msg {
		m.monitor.Sweep(context.Background())
		return sweepDoneMsg{}
	}
}

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.checking {
				m.checking = true
				return m, m.sweep()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case sweepDoneMsg:
		m.checking = false
		m.lastRun = time.Now()
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tickMsg:
		if !m.checking {
			m.checking = true
			return m, m.sweep()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m MonitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	header := titleStyle.Render("Room Monitor")
	if m.checking {
		header += "  " + m.spinner.View() + offlineStyle.Render("checking…")
	} else if !m.lastRun.IsZero() {
		header += "  " + offlineStyle.Render("last sweep "+m.lastRun.Format("15:04:05"))
	}
	b.WriteString(header + "\n\n")

	statuses := m.monitor.Statuses()
	if len(statuses) == 0 {
		b.WriteString(offlineStyle.Render("no rooms configured") + "\n")
	}
	for _, s := range statuses {
		b.WriteString(renderStatus(s, m.width) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("r refresh • q quit"))
	return b.String()
}

func renderStatus(s live.Status, width int) string {
	var badge, detail string
	switch {
	case !s.Known:
		badge = offlineStyle.Render("○ PENDING")
	case s.Err != nil:
		badge = errorStyle.Render("! ERROR")
		detail = live.UserMessage(s.Err)
	case s.Live:
		badge = liveStyle.Render("● LIVE")
		detail = fmt.Sprintf("%s (%s)", s.Title, s.Author)
	default:
		badge = offlineStyle.Render("○ OFFLINE")
	}

	line := fmt.Sprintf("%-22s %s", badge, urlStyle.Render(s.URL))
	if detail != "" {
		line += "  " + detail
	}
	if width > 0 && lipgloss.Width(line) > width {
		// Cell-aware truncation: a byte slice could split an escape
		// sequence or a multibyte rune.
		line = ansi.Truncate(line, width, "")
	}
	return line
}
