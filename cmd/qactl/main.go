package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"academy/internal/config"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "qactl",
		Short:         "qactl - operator tool for the academy Q&A service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(listCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
