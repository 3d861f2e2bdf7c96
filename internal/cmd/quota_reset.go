package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotafence/quotafence/internal/core/store"
)

var (
	quotaResetAll    bool
	quotaResetKey    string
	quotaResetPrefix string
	quotaResetYes    bool
	quotaResetDryRun bool
)

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored quota counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := store.QuotaQuery{
			All:    quotaResetAll,
			Key:    strings.TrimSpace(quotaResetKey),
			Prefix: strings.TrimSpace(quotaResetPrefix),
		}
		if err := query.Validate(); err != nil {
			return err
		}

		if query.All && !quotaResetYes && !quotaResetDryRun {
			return errors.New("--all requires --yes (or use --dry-run)")
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		matched, err := db.CountQuotas(cmd.Context(), query)
		if err != nil {
			return err
		}

		if quotaResetDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "would reset %d quota counter(s)\n", matched)
			return nil
		}

		removed, err := db.ResetQuotas(cmd.Context(), query)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "reset %d quota counter(s)\n", removed)
		return nil
	},
}

func init() {
	quotaResetCmd.Flags().BoolVar(&quotaResetAll, "all", false, "reset all stored counters")
	quotaResetCmd.Flags().StringVar(&quotaResetKey, "key", "", "reset one counter by exact key")
	quotaResetCmd.Flags().StringVar(&quotaResetPrefix, "prefix", "", "reset counters with this key prefix")
	quotaResetCmd.Flags().BoolVar(&quotaResetYes, "yes", false, "confirm destructive reset")
	quotaResetCmd.Flags().BoolVar(&quotaResetDryRun, "dry-run", false, "report what would be reset without deleting")
}
