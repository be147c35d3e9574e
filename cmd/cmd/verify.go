package cmd

import (
	"fmt"
	"os"

	"github.com/ostafen/gidefdisk/internal/shell"
	"github.com/spf13/cobra"
)

func DefineVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <device|image>",
		Short: "Check the partition table for overlaps and allocation problems",
		Long: `The 'verify' command reports overlapping partitions and the number of sectors left
unallocated or allocated past the end of the disk. With --strict it exits with an error
when the table overlaps or overallocates the disk.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunVerify,
	}
	addSessionFlags(cmd)
	cmd.Flags().Bool("strict", false, "fail when problems are found")
	return cmd
}

func RunVerify(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")

	d, s, err := openSession(args[0], false, opts)
	if err != nil {
		return err
	}
	defer d.Close()

	report := s.Verify()
	shell.PrintReport(os.Stdout, report)

	if strict && !report.OK() {
		return fmt.Errorf("partition table of %s has problems", args[0])
	}
	return nil
}
