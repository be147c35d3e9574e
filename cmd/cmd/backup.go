package cmd

import (
	"fmt"

	"github.com/ostafen/gidefdisk/internal/backup"
	"github.com/ostafen/gidefdisk/internal/device"
	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/ostafen/gidefdisk/internal/logger"
	"github.com/spf13/cobra"
)

func DefineBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <device|image> <file>",
		Short: "Save the boot record to a file",
		Long: `The 'backup' command copies the boot record (one sector for the standard layout, two for
the B/P BIOS layout or when the record is not recognized) to a file. The file is compressed
according to its extension: .gz, .zst, .s2 or .bz2.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunBackup,
	}
}

func RunBackup(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	d, err := device.Open(args[0], false)
	if err != nil {
		return err
	}
	defer d.Close()

	buf, err := d.ReadBootArea()
	if err != nil {
		return err
	}

	det := disk.Detect(buf)
	if det.Valid && det.Method == disk.MethodStandard {
		buf = buf[:disk.SectorSize]
	}
	log.Infof("Boot record: %s", det)

	if err := backup.Save(args[1], buf); err != nil {
		return err
	}
	log.Infof("Saved %d bytes to %s (%s)", len(buf), args[1], backup.CompressionFor(args[1]))
	return nil
}

func DefineRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "restore <file> <device|image>",
		Short:        "Write a boot record saved with 'backup' back to disk",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunRestore,
	}
	cmd.Flags().Bool("force", false, "restore even if the backup is not a valid boot record")
	return cmd
}

func RunRestore(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)
	force, _ := cmd.Flags().GetBool("force")

	buf, err := backup.Load(args[0])
	if err != nil {
		return err
	}

	area := make([]byte, disk.BootAreaSize)
	copy(area, buf)
	if det := disk.Detect(area); !det.Valid {
		if !force {
			return fmt.Errorf("backup %s: %w (use --force to restore anyway)", args[0], det.Reason)
		}
		log.Warnf("Restoring %s", det)
	}

	d, err := device.Open(args[1], true)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.WriteBootArea(buf); err != nil {
		return err
	}
	log.Infof("Restored %d bytes to %s", len(buf), args[1])
	return nil
}

func newLogger(cmd *cobra.Command) *logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(cmd.ErrOrStderr(), logger.ParseLevel(level))
}
