package cmd

import (
	"os"

	"github.com/ostafen/gidefdisk/internal/shell"
	"github.com/spf13/cobra"
)

func DefineTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "types",
		Short:        "List known partition types",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			shell.PrintTypes(os.Stdout)
		},
	}
}
