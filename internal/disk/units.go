package disk

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// SectorSize is the size in bytes of a physical sector.
	SectorSize = 512
	// SectorsPerUnit is the number of sectors covered by a partition table unit.
	SectorsPerUnit = 16
	// UnitSize is the size in bytes of a partition table unit.
	UnitSize = SectorsPerUnit * SectorSize

	unitsPerMiB = (1 << 20) / UnitSize
	kibPerUnit  = UnitSize / 1024
)

// Unit is a display/entry granularity for partition sizes.
type Unit uint8

const (
	UnitSectors Unit = iota
	// UnitTracks are UZI180 tracks of 16 sectors.
	UnitTracks
	// UnitCylinders are 8192-byte blocks. They match UnitTracks numerically
	// and only differ in how they are labelled.
	UnitCylinders
)

func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(s) {
	case "sectors", "sector", "s":
		return UnitSectors, nil
	case "tracks", "track", "t":
		return UnitTracks, nil
	case "cylinders", "cylinder", "c":
		return UnitCylinders, nil
	}
	return UnitTracks, fmt.Errorf("unknown unit %q", s)
}

func (u Unit) String() string {
	switch u {
	case UnitSectors:
		return "sectors"
	case UnitTracks:
		return "UZI180 tracks (16 sectors)"
	case UnitCylinders:
		return "cylinders"
	}
	return "unknown"
}

// Next cycles sectors -> tracks -> cylinders -> sectors.
func (u Unit) Next() Unit {
	if u >= UnitCylinders {
		return UnitSectors
	}
	return u + 1
}

func (u Unit) sectors() uint64 {
	if u == UnitSectors {
		return 1
	}
	return SectorsPerUnit
}

// ToSectors converts n units of u to sectors.
func ToSectors(n uint64, u Unit) uint64 {
	return n * u.sectors()
}

// FromSectors converts n sectors to units of u, truncating a partial unit.
func FromSectors(n uint64, u Unit) uint64 {
	return n / u.sectors()
}

// ToTableUnits converts a value entered in unit u to partition table units.
func ToTableUnits(n uint64, u Unit) uint64 {
	return FromSectors(ToSectors(n, u), UnitTracks)
}

// FromTableUnits converts a partition table value to unit u for display.
func FromTableUnits(n uint64, u Unit) uint64 {
	return FromSectors(ToSectors(n, UnitTracks), u)
}

// ParseSize parses the "last unit or +size" answer of the new partition
// dialog and returns the size in table units. start is in table units.
//
// Accepted forms are "+N" (N units of u), "+NK" (kibibytes, rounded up to a
// whole table unit), "+NM" (mebibytes) and a plain "N", the unit of u where
// the partition ends, which must be past start.
func ParseSize(s string, start uint32, u Unit) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty size", ErrRangeOutOfBounds)
	}

	if !strings.HasPrefix(s, "+") {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q: %w", s, err)
		}
		last := ToTableUnits(v, u)
		if last <= uint64(start) {
			return 0, fmt.Errorf("%w: last unit must be larger than first unit", ErrRangeOutOfBounds)
		}
		return checkSize(last - uint64(start))
	}

	s = s[1:]
	var suffix byte
	if n := len(s); n > 0 {
		switch c := s[n-1]; c {
		case 'k', 'K', 'm', 'M':
			suffix = c | 0x20
			s = s[:n-1]
		}
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	switch suffix {
	case 'm':
		v *= unitsPerMiB
	case 'k':
		v = (v + kibPerUnit - 1) / kibPerUnit
	default:
		v = ToTableUnits(v, u)
	}
	return checkSize(v)
}

func checkSize(v uint64) (uint32, error) {
	if v == 0 || v > 0xFFFF {
		return 0, fmt.Errorf("%w: size %d", ErrRangeOutOfBounds, v)
	}
	return uint32(v), nil
}
