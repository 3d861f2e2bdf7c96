package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotafence/quotafence/internal/core/store"
	"github.com/quotafence/quotafence/internal/output"
)

var (
	quotaListOutput string
	quotaListAll    bool
	quotaListPrefix string
)

var quotaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored quota counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(quotaListOutput)
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		query := store.QuotaQuery{
			All:    quotaListAll,
			Prefix: strings.TrimSpace(quotaListPrefix),
		}
		if !query.All && query.Prefix == "" {
			query.All = true
		}

		records, err := db.ListQuotas(cmd.Context(), query)
		if err != nil {
			return err
		}

		rendered, err := output.FormatQuotaRecords(format, records)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	quotaListCmd.Flags().StringVarP(&quotaListOutput, "output", "o", "table", "output format: table, json, yaml")
	quotaListCmd.Flags().BoolVar(&quotaListAll, "all", false, "list all stored counters")
	quotaListCmd.Flags().StringVar(&quotaListPrefix, "prefix", "", "list counters with this key prefix")
}
