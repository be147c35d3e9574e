package disk_test

import (
	"testing"

	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/stretchr/testify/require"
)

func TestFindOverlaps(t *testing.T) {
	var table disk.Table
	table[0] = disk.Entry{Start: 0, Size: 10, Type: disk.PartitionTypeCPM}
	table[1] = disk.Entry{Start: 5, Size: 10, Type: disk.PartitionTypeCPM}
	table[2] = disk.Entry{Start: 15, Size: 10, Type: disk.PartitionTypeCPM}

	require.Equal(t, []disk.Overlap{{I: 0, J: 1}}, disk.FindOverlaps(table))

	// index order does not matter
	table[0], table[1] = table[1], table[0]
	require.Equal(t, []disk.Overlap{{I: 0, J: 1}}, disk.FindOverlaps(table))
}

func TestFindOverlapsAllPairs(t *testing.T) {
	var table disk.Table
	table[0] = disk.Entry{Start: 0, Size: 100}
	table[3] = disk.Entry{Start: 10, Size: 5}
	table[7] = disk.Entry{Start: 50, Size: 60}
	table[5] = disk.Entry{Start: 200, Size: 1}

	require.Equal(t, []disk.Overlap{{I: 0, J: 3}, {I: 0, J: 7}}, disk.FindOverlaps(table))
}

func TestFindOverlapsSkipsEmpty(t *testing.T) {
	var table disk.Table
	table[0] = disk.Entry{Start: 5, Size: 0}
	table[1] = disk.Entry{Start: 0, Size: 10}
	require.Empty(t, disk.FindOverlaps(table))
}

func TestSummarize(t *testing.T) {
	g := disk.Geometry{Cylinders: 10, Heads: 2, SectorsPerTrack: 32}

	var table disk.Table
	table[0] = disk.Entry{Start: 0, Size: 40, Type: disk.PartitionTypeCPM}

	a := disk.Summarize(table, g)
	require.Equal(t, uint64(640), a.Capacity)
	require.Equal(t, uint64(640), a.Allocated)
	require.Zero(t, a.Unallocated)
	require.Zero(t, a.Overallocated)

	table[0].Size = 30
	a = disk.Summarize(table, g)
	require.Equal(t, uint64(160), a.Unallocated)
	require.Zero(t, a.Overallocated)

	table[1] = disk.Entry{Start: 20, Size: 20}
	a = disk.Summarize(table, g)
	require.Equal(t, uint64(800), a.Allocated)
	require.Zero(t, a.Unallocated)
	require.Equal(t, uint64(160), a.Overallocated)
	require.Equal(t, uint64(160), a.Overlapped)
}

func TestVerify(t *testing.T) {
	g := disk.Geometry{Cylinders: 10, Heads: 2, SectorsPerTrack: 32}

	var table disk.Table
	table[0] = disk.Entry{Start: 1, Size: 20}
	require.True(t, disk.Verify(table, g).OK())

	table[1] = disk.Entry{Start: 10, Size: 5}
	r := disk.Verify(table, g)
	require.False(t, r.OK())
	require.Len(t, r.Overlaps, 1)
}
