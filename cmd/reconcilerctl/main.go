package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"os"
	"strings"
	"time"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reconcilerctl",
		Short:         "Operate the contribution reconciler",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("url", envOr("RECONCILER_URL", "http://localhost:8080"), "Reconciler base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (defaults to CRON_SECRET for poll, ADMIN_TOKEN for resync)")
	rootCmd.PersistentFlags().Duration("timeout", 60*time.Second, "Request timeout")

	rootCmd.AddCommand(pollCmd())
	rootCmd.AddCommand(resyncCmd())
	rootCmd.AddCommand(replayCmd())

	return rootCmd
}

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll [gateway]",
		Short: "Run one poll cycle for a gateway (bank, checkout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, "CRON_SECRET")
			if err != nil {
				return err
			}
			resp, err := client.R().
				SetPathParam("gateway", args[0]).
				Post("/api/v1/cron/reconcile/{gateway}")
			return printResponse(cmd, resp, err)
		},
	}
}

func resyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resync [transactionID]",
		Short: "Force a single transaction to be reconciled now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd, "ADMIN_TOKEN")
			if err != nil {
				return err
			}
			resp, err := client.R().
				SetPathParam("transactionID", args[0]).
				Post("/api/v1/admin/transactions/{transactionID}/resync")
			return printResponse(cmd, resp, err)
		},
	}
}

func newClient(cmd *cobra.Command, tokenEnv string) (*resty.Client, error) {
	baseURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return nil, err
	}
	token, err := cmd.Flags().GetString("token")
	if err != nil {
		return nil, err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	if token == "" {
		token = os.Getenv(tokenEnv)
	}
	if token == "" {
		return nil, fmt.Errorf("no token: pass --token or set %s", tokenEnv)
	}

	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(token).
		SetHeader("Accept", "application/json"), nil
}

func printResponse(cmd *cobra.Command, resp *resty.Response, err error) error {
	if err != nil {
		return err
	}

	body := resp.Body()
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))

	if resp.IsError() {
		return fmt.Errorf("request failed: %s", resp.Status())
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
