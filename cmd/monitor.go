package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/JairFC/douyinstream-pro/internal/live"
	"github.com/JairFC/douyinstream-pro/internal/ui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [room-url...]",
	Short: "Watch rooms and re-check them periodically",
	RunE:  monitorRun,
}

func monitorRun(cmd *cobra.Command, args []string) error {
	urls := args
	if len(urls) == 0 {
		urls = cfg.Rooms
	}
	if len(urls) == 0 {
		return fmt.Errorf("no rooms given and none configured")
	}

	checker, closer, err := newChecker()
	if err != nil {
		return err
	}
	defer closer()

	interval := secondsToDuration(cfg.CheckInterval)
	monitor := live.NewMonitor(checker, urls, interval, checkStagger)

	model := ui.NewMonitorModel(monitor, interval)
	_, err = tea.NewProgram(model).Run()
	return err
}
