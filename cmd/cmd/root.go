package cmd

import (
	"github.com/ostafen/gidefdisk/internal/env"
	"github.com/spf13/cobra"
)

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - partition table editor for P112 GIDE hard disks",
	}

	rootCmd.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(DefineShowCommand())
	rootCmd.AddCommand(DefineVerifyCommand())
	rootCmd.AddCommand(DefineEditCommand())
	rootCmd.AddCommand(DefineTypesCommand())
	rootCmd.AddCommand(DefineBackupCommand())
	rootCmd.AddCommand(DefineRestoreCommand())

	return rootCmd.Execute()
}
