package cmd

import (
	"os"

	"github.com/ostafen/gidefdisk/internal/shell"
	"github.com/spf13/cobra"
)

func DefineShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "show <device|image>",
		Short:        "Print the disk geometry, boot method and partition table",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunShow,
	}
	addSessionFlags(cmd)
	return cmd
}

func RunShow(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	d, s, err := openSession(args[0], false, opts)
	if err != nil {
		return err
	}
	defer d.Close()

	shell.PrintGeometry(os.Stdout, s)
	shell.PrintMethod(os.Stdout, s.Method)
	return shell.PrintPartitions(os.Stdout, s)
}
