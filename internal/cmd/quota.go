package cmd

import "github.com/spf13/cobra"

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Check, consume, and manage persisted quota state",
}

func init() {
	quotaCmd.AddCommand(quotaCheckCmd)
	quotaCmd.AddCommand(quotaConsumeCmd)
	quotaCmd.AddCommand(quotaListCmd)
	quotaCmd.AddCommand(quotaResetCmd)
	rootCmd.AddCommand(quotaCmd)
}
