package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ostafen/gidefdisk/internal/device"
	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/ostafen/gidefdisk/internal/logger"
	"github.com/ostafen/gidefdisk/internal/session"
	"github.com/spf13/cobra"
)

type Options struct {
	Geometry *disk.Geometry
	Session  session.Options
	Logger   *logger.Logger
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("geometry", "", "drive geometry as cylinders/heads/sectors, overrides the probed one")
	cmd.Flags().String("units", "tracks", "display/entry units (sectors, tracks, cylinders)")
	cmd.Flags().String("default-type", "52", "hex system id given to new partitions")
}

func parseOptions(cmd *cobra.Command) (Options, error) {
	opts := Options{
		Session: session.DefaultOptions(),
		Logger:  newLogger(cmd),
	}

	if s, _ := cmd.Flags().GetString("geometry"); s != "" {
		g, err := device.ParseGeometry(s)
		if err != nil {
			return Options{}, err
		}
		opts.Geometry = g
	}

	if s, _ := cmd.Flags().GetString("units"); s != "" {
		u, err := disk.ParseUnit(s)
		if err != nil {
			return Options{}, err
		}
		opts.Session.Units = u
	}

	if s, _ := cmd.Flags().GetString("default-type"); s != "" {
		code, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 8)
		if err != nil {
			return Options{}, fmt.Errorf("invalid partition type %q: %w", s, err)
		}
		opts.Session.DefaultType = disk.PartitionType(code)
	}
	return opts, nil
}

// openSession opens path, reads its boot area and starts an edit session.
// The caller owns the returned disk.
func openSession(path string, writable bool, opts Options) (*device.Disk, *session.Session, error) {
	d, err := device.Open(path, writable)
	if err != nil {
		return nil, nil, err
	}

	buf, err := d.ReadBootArea()
	if err != nil {
		d.Close()
		return nil, nil, err
	}

	log := opts.Logger
	log.Debugf("Opened %s (device=%t, writable=%t)", d.Path, d.IsDevice, d.Writable)

	reported := opts.Geometry
	source := "--geometry"
	if reported == nil {
		source = "drive"
		reported, err = d.Geometry()
		if err != nil {
			log.Warnf("Could not read drive geometry: %v", err)
		}
	}
	if reported != nil {
		log.Debugf("Reported geometry %s from %s", reported, source)
	}

	s := session.New(buf, reported, opts.Session)

	det := s.Detection()
	log.Debugf("Detected %s", det)
	if tableOff, geomOff, err := disk.ResolvePointers(buf, det.Method); err == nil {
		log.Debugf("Partition table at 0x%03X, geometry at 0x%03X", tableOff, geomOff)
	}
	if det.Valid {
		log.Debugf("Stored geometry %s", s.Stored)
	}
	log.Debugf("Using geometry %s (%d table units)", s.Effective, s.Effective.TableUnits())

	if !det.Valid {
		log.Warnf("This disk does not have a valid P112 partition or boot record (%v).", det.Reason)
		if det.Method == disk.MethodExtendedBios {
			log.Warn("This disk seems to have a B/P BIOS boot record. It will be overwritten by this program, proceed at your own risk.")
		}
	}
	if s.GeometryMismatch() {
		log.Warnf("The disk geometry stored in the partition table (%s) does not match the one reported by the disk (%s).", s.Stored, s.Effective)
	}
	if s.Effective.IsZero() {
		log.Warn("Disk geometry unknown, use --geometry to set it.")
	}
	return d, s, nil
}
