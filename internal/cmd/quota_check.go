package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quotafence/quotafence/internal/output"
)

var quotaCheckOutput string

var quotaCheckCmd = &cobra.Command{
	Use:   "check POLICY SUBJECT",
	Short: "Check whether a subject may act under a policy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(quotaCheckOutput)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		kvStore, closeStore, err := openKV(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore() // nolint:errcheck // best-effort cleanup

		tracker := buildTracker(cfg, kvStore)
		status, err := tracker.Check(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		rendered, err := output.FormatQuotaStatus(format, output.QuotaStatusView{
			Policy:    args[0],
			Subject:   args[1],
			Allowed:   status.Allowed,
			Remaining: status.Remaining,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	quotaCheckCmd.Flags().StringVarP(&quotaCheckOutput, "output", "o", "table", "output format: table, json, yaml")
}
