package disk

import "fmt"

// MaxEntries is the fixed capacity of the partition table.
const MaxEntries = 8

// MaxFieldUnits is the largest start or size an entry can hold on disk.
const MaxFieldUnits = 0xFFFF

type PartitionType uint8

const (
	PartitionTypeEmpty   PartitionType = 0x00
	PartitionTypeCPM     PartitionType = 0x52
	PartitionTypeCPM3    PartitionType = 0xB2
	PartitionTypeUZI     PartitionType = 0xD1
	PartitionTypeUZISwap PartitionType = 0xD2
)

var knownTypes = []PartitionType{
	PartitionTypeEmpty,
	PartitionTypeCPM,
	PartitionTypeCPM3,
	PartitionTypeUZI,
	PartitionTypeUZISwap,
}

// KnownTypes returns the registry of partition types in display order.
func KnownTypes() []PartitionType {
	types := make([]PartitionType, len(knownTypes))
	copy(types, knownTypes)
	return types
}

func (p PartitionType) String() string {
	switch p {
	case PartitionTypeEmpty:
		return "Empty"
	case PartitionTypeCPM:
		return "CP/M"
	case PartitionTypeCPM3:
		return "CP/M 3.0"
	case PartitionTypeUZI:
		return "UZI"
	case PartitionTypeUZISwap:
		return "UZI swap"
	}
	return "Unknown"
}

// Entry is a single slot of the partition table. Start and Size are
// expressed in table units (16 sectors, 8192 bytes). A zero Size marks an
// unused slot.
type Entry struct {
	Start    uint32
	Size     uint32
	Type     PartitionType
	Bootable bool
}

func (e Entry) IsEmpty() bool {
	return e.Size == 0
}

// End returns the first unit past the partition.
func (e Entry) End() uint64 {
	return uint64(e.Start) + uint64(e.Size)
}

// Last returns the last unit occupied by the partition.
func (e Entry) Last() uint64 {
	return e.End() - 1
}

func (e Entry) String() string {
	if e.IsEmpty() {
		return "empty"
	}
	bootable := "No"
	if e.Bootable {
		bootable = "Yes"
	}
	return fmt.Sprintf("start=%d size=%d type=0x%02X (%s) bootable=%s",
		e.Start, e.Size, uint8(e.Type), e.Type, bootable)
}

// Table is the fixed-capacity partition table. Slots are indexed 0..7 and
// shown to the operator as 1..8.
type Table [MaxEntries]Entry

// Occupied returns the indexes of all slots in use.
func (t *Table) Occupied() []int {
	var idx []int
	for i := range t {
		if !t[i].IsEmpty() {
			idx = append(idx, i)
		}
	}
	return idx
}

// FirstFreeSlot returns the index of the first empty slot, or -1 when the
// table is full.
func (t *Table) FirstFreeSlot() int {
	for i := range t {
		if t[i].IsEmpty() {
			return i
		}
	}
	return -1
}

// FirstFreeUnit returns the unit following the run of occupied slots at the
// start of the table. Unit 0 is never proposed since it holds the boot record.
func (t *Table) FirstFreeUnit() uint32 {
	var free uint32 = 1
	for i := range t {
		if t[i].IsEmpty() {
			break
		}
		free = uint32(t[i].End())
	}
	return free
}

// Normalize zeroes the fields of empty slots.
func (t *Table) Normalize() {
	for i := range t {
		if t[i].IsEmpty() {
			t[i] = Entry{}
		}
	}
}
