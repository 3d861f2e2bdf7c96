package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotafence/quotafence/internal/core/fetch"
	"github.com/quotafence/quotafence/internal/core/throttle"
	"github.com/quotafence/quotafence/internal/output"
)

var (
	fetchOutput  string
	fetchMethod  string
	fetchHeaders []string
	fetchBody    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL",
	Short: "Perform a rate-limited fetch against a third-party endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(fetchOutput)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		headers := make(map[string]string, len(fetchHeaders))
		for _, header := range fetchHeaders {
			key, value, found := strings.Cut(header, ":")
			if !found {
				return fmt.Errorf("invalid header %q, expected KEY:VALUE", header)
			}
			headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}

		client := buildFetcher(cfg, throttle.New(cfg.Throttle.CoreConfigs()))

		var body []byte
		if fetchBody != "" {
			body = []byte(fetchBody)
		}

		result := client.Fetch(cmd.Context(), args[0], fetch.Options{
			Method:  fetchMethod,
			Headers: headers,
			Body:    body,
		})

		rendered, err := output.FormatFetchResult(format, result)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "json", "output format: table, json, yaml")
	fetchCmd.Flags().StringVarP(&fetchMethod, "method", "X", "", "HTTP method (default GET)")
	fetchCmd.Flags().StringArrayVarP(&fetchHeaders, "header", "H", nil, "request header as KEY:VALUE (repeatable)")
	fetchCmd.Flags().StringVarP(&fetchBody, "data", "d", "", "request body")
	rootCmd.AddCommand(fetchCmd)
}
