package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JairFC/douyinstream-pro/internal/config"
	"github.com/JairFC/douyinstream-pro/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent room checks",
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of checks to show")
}

func historyRun(cmd *cobra.Command, args []string) error {
	path, err := config.HistoryPath()
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	checks, err := store.Recent(flagHistoryLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(checks)
	}

	if len(checks) == 0 {
		fmt.Println("no checks recorded yet")
		return nil
	}
	for _, c := range checks {
		badge := offBadge
		if c.Live {
			badge = liveBadge
		}
		fmt.Printf("%s  %s  %s  %s (%s)  [%s]\n",
			c.CheckedAt.Local().Format("2006-01-02 15:04"),
			badge, c.RoomURL, c.Title, c.Author, c.Strategy)
	}
	return nil
}
