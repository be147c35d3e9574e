package disk

// Overlap is a pair of occupied slots whose ranges intersect. I < J.
type Overlap struct {
	I, J int
}

// FindOverlaps returns every pair of occupied entries whose half-open unit
// ranges intersect, ordered by I then J.
func FindOverlaps(t Table) []Overlap {
	var overlaps []Overlap
	for i := 0; i < MaxEntries; i++ {
		if t[i].IsEmpty() {
			continue
		}
		for j := i + 1; j < MaxEntries; j++ {
			if t[j].IsEmpty() {
				continue
			}
			if uint64(t[j].Start) < t[i].End() && t[j].End() > uint64(t[i].Start) {
				overlaps = append(overlaps, Overlap{I: i, J: j})
			}
		}
	}
	return overlaps
}

// Allocation summarizes how much of the disk the table claims. All values
// are in sectors. At most one of Unallocated and Overallocated is non-zero.
//
// Overlapped counts sectors claimed by more than one pair of partitions.
// It is informational only and is not subtracted from Allocated.
type Allocation struct {
	Capacity      uint64
	Allocated     uint64
	Unallocated   uint64
	Overallocated uint64
	Overlapped    uint64
}

// Summarize computes the allocation accounting of t against g.
func Summarize(t Table, g Geometry) Allocation {
	a := Allocation{Capacity: g.Sectors()}

	for _, e := range t {
		if e.IsEmpty() {
			continue
		}
		a.Allocated += ToSectors(uint64(e.Size), UnitTracks)
	}

	for _, o := range FindOverlaps(t) {
		lo := max(t[o.I].Start, t[o.J].Start)
		hi := min(t[o.I].End(), t[o.J].End())
		a.Overlapped += ToSectors(hi-uint64(lo), UnitTracks)
	}

	switch {
	case a.Capacity > a.Allocated:
		a.Unallocated = a.Capacity - a.Allocated
	case a.Allocated > a.Capacity:
		a.Overallocated = a.Allocated - a.Capacity
	}
	return a
}

// Report is the result of verifying a table. Problems are advisory and
// never prevent writing the table.
type Report struct {
	Overlaps   []Overlap
	Allocation Allocation
}

func Verify(t Table, g Geometry) Report {
	return Report{
		Overlaps:   FindOverlaps(t),
		Allocation: Summarize(t, g),
	}
}

// OK reports whether the table neither overlaps nor overallocates the disk.
func (r Report) OK() bool {
	return len(r.Overlaps) == 0 && r.Allocation.Overallocated == 0
}
