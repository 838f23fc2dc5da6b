package main

import (
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"os"
	"sort"
	"strings"
	"sync"
)

// replayCmd posts one webhook payload many times concurrently, the way a
// gateway retrying an unacknowledged delivery would. Every status the
// endpoint answered with is tallied.
func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [gateway] [payload.json]",
		Short: "Redeliver a webhook payload concurrently",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			workers, _ := cmd.Flags().GetInt("workers")
			if count < 1 || workers < 1 {
				return fmt.Errorf("--count and --workers must be positive")
			}

			payload, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			baseURL, _ := cmd.Flags().GetString("url")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			client := resty.New().
				SetBaseURL(strings.TrimRight(baseURL, "/")).
				SetTimeout(timeout).
				SetHeader("Content-Type", "application/json")

			tally := replay(client, args[0], payload, count, workers)

			codes := make([]string, 0, len(tally))
			for code := range tally {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			for _, code := range codes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", code, tally[code])
			}
			return nil
		},
	}

	cmd.Flags().IntP("count", "n", 10, "Number of deliveries")
	cmd.Flags().IntP("workers", "w", 4, "Concurrent senders")

	return cmd
}

func replay(client *resty.Client, gateway string, payload []byte, count, workers int) map[string]int {
	jobs := make(chan struct{})
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		tally = make(map[string]int)
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for range jobs {
				key := "error"
				resp, err := client.R().
					SetPathParam("gateway", gateway).
					SetBody(payload).
					Post("/api/v1/webhooks/{gateway}")
				if err == nil {
					key = fmt.Sprintf("%d", resp.StatusCode())
				}
				mu.Lock()
				tally[key]++
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < count; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	return tally
}
