package cmd

import (
	"os"
	"path/filepath"

	"github.com/ostafen/gidefdisk/internal/bootcode"
	"github.com/ostafen/gidefdisk/internal/env"
	"github.com/ostafen/gidefdisk/internal/shell"
	"github.com/spf13/cobra"
)

func DefineEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <device|image>",
		Short: "Edit the partition table interactively",
		Long: `The 'edit' command starts the interactive partition table editor. Changes are kept in
memory until the 'w' command writes the boot record back together with the boot loader
selected by --loader or --bp-loader. When no loader is given, the boot code already on
disk is reused if it is valid.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunEdit,
	}
	addSessionFlags(cmd)
	cmd.Flags().String("loader", "", "boot loader image for the standard boot record")
	cmd.Flags().String("bp-loader", "", "boot loader image for the B/P BIOS boot record")
	cmd.Flags().String("history", defaultHistoryFile(), "command history file")
	return cmd
}

func defaultHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, env.AppName, "history")
}

func RunEdit(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	stdLoader, _ := cmd.Flags().GetString("loader")
	bpLoader, _ := cmd.Flags().GetString("bp-loader")
	loaders, err := bootcode.Load(stdLoader, bpLoader)
	if err != nil {
		return err
	}

	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0755); err != nil {
			opts.Logger.Warnf("History disabled: %v", err)
			historyFile = ""
		}
	}

	d, s, err := openSession(args[0], true, opts)
	if err != nil {
		return err
	}
	defer d.Close()

	shell.PrintGeometry(os.Stdout, s)
	shell.PrintMethod(os.Stdout, s.Method)

	prompter, err := shell.NewReadlinePrompter(historyFile)
	if err != nil {
		return err
	}
	defer prompter.Close()

	return shell.New(s, prompter, os.Stdout, opts.Logger, loaders, d.WriteBootArea).Run()
}
