package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/JairFC/douyinstream-pro/internal/httputil"
	"github.com/JairFC/douyinstream-pro/internal/live"
	"github.com/JairFC/douyinstream-pro/internal/stream"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	liveBadge  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).Render("LIVE")
	offBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("OFFLINE")
)

var getCmd = &cobra.Command{
	Use:   "get <room-url>",
	Short: "Extract the playable stream URLs for one room",
	Args:  cobra.ExactArgs(1),
	RunE:  getRun,
}

func getRun(cmd *cobra.Command, args []string) error {
	roomURL, ok := httputil.DetectRoomURL(args[0])
	if !ok {
		return fmt.Errorf("%q does not look like a live room URL", args[0])
	}

	checker, closer, err := newChecker()
	if err != nil {
		return err
	}
	defer closer()

	rec, err := checker.Check(context.Background(), roomURL)
	if err != nil {
		return fmt.Errorf("%s", live.UserMessage(err))
	}

	if flagJSON {
		return printJSON(rec, roomURL)
	}
	printRecord(rec, roomURL)
	return nil
}

func printJSON(rec *stream.Record, roomURL string) error {
	out := map[string]interface{}{
		"url":       rec.URL,
		"title":     rec.Title,
		"author":    rec.Author,
		"is_live":   rec.IsLive,
		"qualities": rec.Qualities,
	}
	if id := httputil.RoomID(roomURL); id != "" {
		out["room_id"] = id
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printRecord(rec *stream.Record, roomURL string) {
	badge := offBadge
	if rec.IsLive {
		badge = liveBadge
	}
	if id := httputil.RoomID(roomURL); id != "" {
		fmt.Printf("%s  %s (%s)  room %s\n", badge, rec.Title, rec.Author, id)
	} else {
		fmt.Printf("%s  %s (%s)\n", badge, rec.Title, rec.Author)
	}

	if !rec.IsLive {
		return
	}

	preferred := stream.BestQuality(rec.Qualities, cfg.Quality)
	for _, label := range rec.SortedLabels() {
		marker := " "
		if label == preferred {
			marker = "*"
		}
		fmt.Printf("%s %s %s\n", marker, labelStyle.Render(fmt.Sprintf("%-8s", label)), rec.Qualities[label])
	}
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
