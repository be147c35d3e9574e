package disk

import "fmt"

// Geometry describes the CHS layout of the drive.
type Geometry struct {
	Cylinders       uint32
	Heads           uint32
	SectorsPerTrack uint32
}

// Sectors returns the capacity of the drive in sectors.
func (g Geometry) Sectors() uint64 {
	return uint64(g.Cylinders) * uint64(g.Heads) * uint64(g.SectorsPerTrack)
}

// Bytes returns the capacity of the drive in bytes.
func (g Geometry) Bytes() uint64 {
	return g.Sectors() * SectorSize
}

// TableUnits returns the capacity of the drive in partition table units.
func (g Geometry) TableUnits() uint64 {
	return g.Sectors() / SectorsPerUnit
}

func (g Geometry) IsZero() bool {
	return g == Geometry{}
}

func (g Geometry) Equal(o Geometry) bool {
	return g == o
}

func (g Geometry) String() string {
	return fmt.Sprintf("%d cylinders, %d heads, %d sectors", g.Cylinders, g.Heads, g.SectorsPerTrack)
}

// Reconcile picks the geometry used for display and writing.
//
// The geometry reported by the drive wins whenever it is available; the
// stored one is only used when the drive could not be probed (e.g. when
// editing an image file). mismatch is set when both are present and differ,
// which callers surface as a warning.
func Reconcile(reported *Geometry, stored Geometry, storedValid bool) (effective Geometry, mismatch bool) {
	switch {
	case reported == nil && storedValid:
		return stored, false
	case reported == nil:
		return Geometry{}, false
	case !storedValid:
		return *reported, false
	}
	return *reported, !reported.Equal(stored)
}
