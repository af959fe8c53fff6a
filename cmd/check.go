package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JairFC/douyinstream-pro/internal/live"
)

// checkStagger spaces batch checks to avoid rate limiting.
const checkStagger = 2 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check [room-url...]",
	Short: "Check live status of rooms (configured rooms by default)",
	RunE:  checkRun,
}

func checkRun(cmd *cobra.Command, args []string) error {
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

	type result struct {
		URL    string `json:"url"`
		Live   bool   `json:"is_live"`
		Title  string `json:"title,omitempty"`
		Author string `json:"author,omitempty"`
		Error  string `json:"error,omitempty"`
	}

	ctx := context.Background()
	results := make([]result, 0, len(urls))
	for i, url := range urls {
		if i > 0 {
			time.Sleep(checkStagger)
		}

		rec, err := checker.Check(ctx, url)
		res := result{URL: url}
		switch {
		case err != nil:
			res.Error = live.UserMessage(err)
		default:
			res.Live = rec.IsLive
			res.Title = rec.Title
			res.Author = rec.Author
		}
		results = append(results, res)

		if !flagJSON {
			switch {
			case res.Error != "":
				fmt.Printf("?  %s  %s\n", url, res.Error)
			case res.Live:
				fmt.Printf("%s  %s  %s (%s)\n", liveBadge, url, res.Title, res.Author)
			default:
				fmt.Printf("%s  %s\n", offBadge, url)
			}
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return nil
}
