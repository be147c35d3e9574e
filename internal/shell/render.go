package shell

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/ostafen/gidefdisk/internal/session"
	"github.com/ostafen/gidefdisk/pkg/util/format"
)

// PrintPartitions writes the occupied slots of the table, in the session's
// display units.
func PrintPartitions(w io.Writer, s *session.Session) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Partition\tStart\tEnd\tSize\tBytes\tBootable\tType\t")
	fmt.Fprintln(tw, "---------\t-----\t-----\t-----\t--------\t--------\t------\t")

	for i, e := range s.Table {
		if e.IsEmpty() {
			continue
		}

		start := disk.FromTableUnits(uint64(e.Start), s.Units)
		size := disk.FromTableUnits(uint64(e.Size), s.Units)
		bootable := " "
		if e.Bootable {
			bootable = "Y"
		}

		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%s\t\n",
			i+1,
			start,
			start+size-1,
			size,
			format.FormatBytes(int64(e.Size)*disk.UnitSize),
			bootable,
			e.Type)
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

func printCapacity(w io.Writer, label string, g disk.Geometry) {
	fmt.Fprintf(w, "  %s: %s\n", label, g)
	fmt.Fprintf(w, "  Capacity: %d sectors (%d bytes, %s)\n", g.Sectors(), g.Bytes(), format.FormatBytes(int64(g.Bytes())))
}

// PrintGeometry writes the reported and stored geometries.
func PrintGeometry(w io.Writer, s *session.Session) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Hard disk geometry:")
	fmt.Fprintln(w)

	if s.Reported != nil {
		printCapacity(w, "As reported by the drive", *s.Reported)
	}
	if s.Valid() {
		printCapacity(w, "As stored in the partition table", s.Stored)
	}
	if s.Reported == nil && !s.Valid() {
		fmt.Fprintln(w, "  Unknown")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Display/entry units are in %s\n\n", s.Units)
}

func PrintMethod(w io.Writer, m disk.Method) {
	if m == disk.MethodExtendedBios {
		fmt.Fprintln(w, "Using new-style (B/P BIOS) boot sector code")
		return
	}
	fmt.Fprintln(w, "Using standard boot sector code")
}

func PrintTypes(w io.Writer) {
	fmt.Fprintln(w)
	for _, t := range disk.KnownTypes() {
		fmt.Fprintf(w, " %02x  %s\n", uint8(t), t)
	}
	fmt.Fprintln(w)
}

// PrintReport writes the outcome of a table verification.
func PrintReport(w io.Writer, r disk.Report) {
	for _, o := range r.Overlaps {
		fmt.Fprintf(w, "Partition %d overlaps partition %d\n", o.J+1, o.I+1)
	}

	a := r.Allocation
	if a.Unallocated > 0 {
		fmt.Fprintf(w, "%d unallocated sectors.\n", a.Unallocated)
	}
	if a.Overallocated > 0 {
		fmt.Fprintf(w, "%d overallocated sectors.\n", a.Overallocated)
	}
	if a.Overlapped > 0 {
		fmt.Fprintf(w, "%d overlapped sectors.\n", a.Overlapped)
	}
	fmt.Fprintln(w)
}

func PrintMenu(w io.Writer) {
	fmt.Fprint(w, `
Command action
   b    toggle a bootable flag
   d    delete a partition
   h    print this menu
   l    list known partition types
   m    toggle boot code method
   n    add a new partition
   p    print the partition table
   q    quit without saving
   t    change a partition's system id
   u    change display/entry units
   v    verify the partition table
   w    write table to disk and exit

`)
}
