package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"rewardledger/logx"
)

var rootCmd = &cobra.Command{
	Use:   "rewardledger",
	Short: "Staking reward ledger CLI",
	Long:  "Command line interface for running and managing the staking reward ledger node.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
