package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JairFC/douyinstream-pro/internal/config"
	"github.com/JairFC/douyinstream-pro/internal/extract"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show extraction strategies and the adaptive cache",
	RunE:  statsRun,
}

func statsRun(cmd *cobra.Command, args []string) error {
	cachePath, err := config.CachePath()
	if err != nil {
		return err
	}

	cache, err := extract.NewFileStore(cachePath).Load()
	if err != nil {
		// A corrupt cache file means a cold start, not a broken command.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	jar, err := cookieJar()
	if err != nil {
		return err
	}

	if flagJSON {
		out := map[string]interface{}{
			"strategies":            strategyInfo(),
			"last_working_strategy": cache.LastWorkingStrategy,
			"last_success":          cache.LastSuccess,
			"cookies_valid":         jar.HasValidCookies(),
			"cookie_age_seconds":    int(jar.Age().Seconds()),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println("registered strategies (attempt order on a cold cache):")
	for _, s := range extract.Strategies() {
		fmt.Printf("  %d. %s\n", s.Priority(), s.Name())
	}
	if cache.LastWorkingStrategy == "" {
		fmt.Println("adaptive cache: cold (no strategy has succeeded yet)")
	} else {
		fmt.Printf("adaptive cache: %s (last success %s)\n",
			cache.LastWorkingStrategy, cache.LastSuccess.Local().Format("2006-01-02 15:04:05"))
	}
	if jar.HasValidCookies() {
		fmt.Printf("cookie jar: valid session, saved %s ago\n", jar.Age().Round(time.Minute))
	} else {
		fmt.Println("cookie jar: no usable session, fetches may hit a challenge")
	}
	return nil
}

func strategyInfo() []map[string]interface{} {
	var out []map[string]interface{}
	for _, s := range extract.Strategies() {
		out = append(out, map[string]interface{}{
			"name":     s.Name(),
			"priority": s.Priority(),
		})
	}
	return out
}
