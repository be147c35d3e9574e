package session

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ostafen/gidefdisk/internal/disk"
)

// Options configures a new edit session.
type Options struct {
	Units       disk.Unit
	DefaultType disk.PartitionType
}

func DefaultOptions() Options {
	return Options{
		Units:       disk.UnitTracks,
		DefaultType: disk.PartitionTypeCPM,
	}
}

// Session holds the state of one editing session of a boot record: the
// original buffer, the decoded table and the geometries involved.
type Session struct {
	original  []byte
	detection disk.Detection

	Method disk.Method
	Table  disk.Table
	Units  disk.Unit

	Stored    disk.Geometry
	Reported  *disk.Geometry
	Effective disk.Geometry
	mismatch  bool

	defaultType disk.PartitionType
}

// New decodes buf and reconciles its geometry with the one reported by the
// drive, which may be nil. An invalid boot record yields an empty table.
func New(buf []byte, reported *disk.Geometry, opts Options) *Session {
	s := &Session{
		original:    bytes.Clone(buf),
		Reported:    reported,
		Units:       opts.Units,
		defaultType: opts.DefaultType,
	}

	s.detection = disk.Detect(buf)
	s.Method = s.detection.Method

	if s.detection.Valid {
		table, geom, err := disk.Decode(buf, s.Method)
		if err != nil {
			s.detection.Valid = false
			s.detection.Reason = err
		} else {
			s.Table = table
			s.Stored = geom
		}
	}

	s.Effective, s.mismatch = disk.Reconcile(reported, s.Stored, s.detection.Valid)
	return s
}

// Valid reports whether the loaded buffer held a valid boot record.
func (s *Session) Valid() bool {
	return s.detection.Valid
}

// Detection returns the outcome of boot record detection.
func (s *Session) Detection() disk.Detection {
	return s.detection
}

// GeometryMismatch reports whether the stored geometry differs from the one
// reported by the drive.
func (s *Session) GeometryMismatch() bool {
	return s.mismatch
}

// MaxUnit returns the highest unit a partition may occupy.
func (s *Session) MaxUnit() uint32 {
	units := s.Effective.TableUnits()
	if units == 0 {
		return 0
	}
	return uint32(min(units-1, disk.MaxFieldUnits))
}

// DefaultStart returns the start unit proposed for a new partition.
func (s *Session) DefaultStart() uint32 {
	return s.Table.FirstFreeUnit()
}

// FirstFreeSlot returns the 1-based number of the first unused slot, or
// ErrTableFull.
func (s *Session) FirstFreeSlot() (int, error) {
	i := s.Table.FirstFreeSlot()
	if i < 0 {
		return 0, disk.ErrTableFull
	}
	return i + 1, nil
}

func slot(n int) (int, error) {
	if n < 1 || n > disk.MaxEntries {
		return 0, fmt.Errorf("%w: %d (1-%d)", disk.ErrIndexOutOfRange, n, disk.MaxEntries)
	}
	return n - 1, nil
}

func (s *Session) occupied(n int) (int, error) {
	i, err := slot(n)
	if err != nil {
		return 0, err
	}
	if s.Table[i].IsEmpty() {
		return 0, fmt.Errorf("%w: partition %d", disk.ErrSlotAlreadyEmpty, n)
	}
	return i, nil
}

// Add defines partition n (1-based) with the given start and size in table
// units. The new partition gets the session default type and is not
// bootable.
func (s *Session) Add(n int, start, size uint32) error {
	i, err := slot(n)
	if err != nil {
		return err
	}
	if !s.Table[i].IsEmpty() {
		return fmt.Errorf("%w: partition %d", disk.ErrSlotAlreadyOccupied, n)
	}

	if s.Effective.TableUnits() == 0 || start > s.MaxUnit() {
		return fmt.Errorf("%w: first unit %d (0-%d)", disk.ErrRangeOutOfBounds, start, s.MaxUnit())
	}
	if size == 0 || uint64(start)+uint64(size) > uint64(s.MaxUnit())+1 {
		return fmt.Errorf("%w: size %d past the end of the disk", disk.ErrRangeOutOfBounds, size)
	}
	if size > disk.MaxFieldUnits {
		return fmt.Errorf("%w: size %d (max %d)", disk.ErrRangeOutOfBounds, size, disk.MaxFieldUnits)
	}

	s.Table[i] = disk.Entry{
		Start: start,
		Size:  size,
		Type:  s.defaultType,
	}
	return nil
}

// Delete frees partition n.
func (s *Session) Delete(n int) error {
	i, err := slot(n)
	if err != nil {
		return err
	}
	if s.Table[i].IsEmpty() {
		return fmt.Errorf("%w: partition %d already deleted", disk.ErrSlotAlreadyEmpty, n)
	}
	s.Table[i] = disk.Entry{}
	return nil
}

// SetType changes the system id of partition n.
func (s *Session) SetType(n int, t disk.PartitionType) error {
	i, err := s.occupied(n)
	if err != nil {
		return err
	}
	s.Table[i].Type = t
	return nil
}

// ToggleBootable flips the bootable flag of partition n and returns its new
// value.
func (s *Session) ToggleBootable(n int) (bool, error) {
	i, err := s.occupied(n)
	if err != nil {
		return false, err
	}
	s.Table[i].Bootable = !s.Table[i].Bootable
	return s.Table[i].Bootable, nil
}

// ToggleMethod switches between the standard and the B/P BIOS layout.
func (s *Session) ToggleMethod() disk.Method {
	s.Method = s.Method.Toggle()
	return s.Method
}

// CycleUnits moves to the next display unit.
func (s *Session) CycleUnits() disk.Unit {
	s.Units = s.Units.Next()
	return s.Units
}

// Verify checks the current table against the effective geometry.
func (s *Session) Verify() disk.Report {
	return disk.Verify(s.Table, s.Effective)
}

// Encode produces the boot record to persist, built from bootCode.
//
// When bootCode is missing or does not fit the selected method, the boot
// code of the original buffer is reused if that buffer held a valid record
// of the same method; reused reports whether that happened. Otherwise the
// error is returned and nothing should be written.
func (s *Session) Encode(bootCode []byte) (buf []byte, reused bool, err error) {
	s.Table.Normalize()

	buf, err = disk.Encode(s.Table, s.Effective, s.Method, bootCode)
	if err == nil {
		return buf, false, nil
	}
	if !errors.Is(err, disk.ErrBootCodeTooLarge) && !errors.Is(err, disk.ErrBootCodeMissing) {
		return nil, false, err
	}
	if !s.detection.Valid || s.detection.Method != s.Method {
		return nil, false, fmt.Errorf("unable to write new partition table: %w", err)
	}

	buf = bytes.Clone(s.original[:s.Method.Size()])
	if err := disk.EncodeInto(buf, s.Table, s.Effective, s.Method); err != nil {
		return nil, false, err
	}
	return buf, true, nil
}
