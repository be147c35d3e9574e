package disk_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/stretchr/testify/require"
)

const (
	testTablePtr    = 0x40
	testGeometryPtr = 0x30
)

// loader returns a minimal boot loader image for m carrying the opcode,
// the pointers and the signature at the offsets of its layout.
func loader(m disk.Method, size int) []byte {
	code := make([]byte, size)
	l := disk.LayoutFor(m)

	if m == disk.MethodExtendedBios {
		code[0], code[1] = 0x76, 0x21
	} else {
		code[0] = 0xC3
	}
	binary.LittleEndian.PutUint16(code[l.TablePtrOffset:], testTablePtr)
	binary.LittleEndian.PutUint16(code[l.GeometryPtrOffset:], testGeometryPtr)
	copy(code[l.SignatureOffset:], disk.Signature)

	for i := testTablePtr + 48; i < size; i++ {
		code[i] = byte(i * 7)
	}
	return code
}

func sampleTable() disk.Table {
	var t disk.Table
	t[0] = disk.Entry{Start: 1, Size: 128, Type: disk.PartitionTypeCPM, Bootable: true}
	t[1] = disk.Entry{Start: 129, Size: 64, Type: disk.PartitionTypeUZI}
	t[4] = disk.Entry{Start: 193, Size: 32, Type: 0x99}
	return t
}

func padBootArea(buf []byte) []byte {
	area := make([]byte, disk.BootAreaSize)
	copy(area, buf)
	return area
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	geom := disk.Geometry{Cylinders: 980, Heads: 5, SectorsPerTrack: 17}

	for _, m := range []disk.Method{disk.MethodStandard, disk.MethodExtendedBios} {
		t.Run(m.String(), func(t *testing.T) {
			table := sampleTable()

			buf, err := disk.Encode(table, geom, m, loader(m, 300))
			require.NoError(t, err)
			require.Len(t, buf, m.Size())

			det := disk.Detect(padBootArea(buf))
			require.True(t, det.Valid, det.String())
			require.Equal(t, m, det.Method)

			gotTable, gotGeom, err := disk.Decode(buf, m)
			require.NoError(t, err)
			require.Equal(t, table, gotTable)
			require.Equal(t, geom, gotGeom)
		})
	}
}

func TestEncodeKeepsBootCode(t *testing.T) {
	code := loader(disk.MethodExtendedBios, 900)

	buf, err := disk.Encode(sampleTable(), disk.Geometry{Cylinders: 1, Heads: 1, SectorsPerTrack: 1}, disk.MethodExtendedBios, code)
	require.NoError(t, err)

	require.Equal(t, code[:testGeometryPtr], buf[:testGeometryPtr])
	require.Equal(t, code[testTablePtr+48:], buf[testTablePtr+48:900])
	require.Equal(t, make([]byte, 1024-900), buf[900:])
}

func TestEncodeChecksum(t *testing.T) {
	geoms := []disk.Geometry{
		{Cylinders: 10, Heads: 2, SectorsPerTrack: 32},
		{Cylinders: 0xFFFF, Heads: 0xFF, SectorsPerTrack: 0xFF},
		{},
	}
	for _, g := range geoms {
		buf, err := disk.Encode(sampleTable(), g, disk.MethodStandard, loader(disk.MethodStandard, 512))
		require.NoError(t, err)

		var sum byte
		for _, b := range buf {
			sum += b
		}
		require.Zero(t, sum)
		require.True(t, disk.VerifyChecksum(buf))
	}
}

func TestChecksumShortSector(t *testing.T) {
	require.Equal(t, byte(0), disk.Checksum(nil))
	require.Equal(t, byte(0xFA), disk.Checksum([]byte{1, 2, 3}))

	full := make([]byte, disk.SectorSize)
	copy(full, []byte{1, 2, 3})
	require.Equal(t, disk.Checksum(full), disk.Checksum(full[:3]))
}

func TestEncodeZeroesEmptySlots(t *testing.T) {
	var table disk.Table
	table[2] = disk.Entry{Start: 0, Size: 0, Type: disk.PartitionTypeCPM, Bootable: true}

	code := loader(disk.MethodStandard, 512)
	for i := testTablePtr; i < testTablePtr+48; i++ {
		code[i] = 0xEE
	}

	buf, err := disk.Encode(table, disk.Geometry{}, disk.MethodStandard, code)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 48), buf[testTablePtr:testTablePtr+48])
}

func TestEncodeBootCodeSize(t *testing.T) {
	_, err := disk.Encode(sampleTable(), disk.Geometry{}, disk.MethodStandard, loader(disk.MethodStandard, 513))
	require.ErrorIs(t, err, disk.ErrBootCodeTooLarge)

	_, err = disk.Encode(sampleTable(), disk.Geometry{}, disk.MethodExtendedBios, loader(disk.MethodExtendedBios, 1025))
	require.ErrorIs(t, err, disk.ErrBootCodeTooLarge)

	_, err = disk.Encode(sampleTable(), disk.Geometry{}, disk.MethodStandard, nil)
	require.ErrorIs(t, err, disk.ErrBootCodeMissing)

	_, err = disk.Encode(sampleTable(), disk.Geometry{}, disk.MethodExtendedBios, loader(disk.MethodExtendedBios, 1024))
	require.NoError(t, err)
}

func TestEncodeFieldOverflow(t *testing.T) {
	code := loader(disk.MethodStandard, 512)

	_, err := disk.Encode(disk.Table{}, disk.Geometry{Cylinders: 70000, Heads: 1, SectorsPerTrack: 1}, disk.MethodStandard, code)
	require.ErrorIs(t, err, disk.ErrRangeOutOfBounds)

	var table disk.Table
	table[0] = disk.Entry{Start: 1, Size: 0x10000}
	_, err = disk.Encode(table, disk.Geometry{}, disk.MethodStandard, code)
	require.ErrorIs(t, err, disk.ErrRangeOutOfBounds)
}

func TestEncodeIntoBadPointer(t *testing.T) {
	code := loader(disk.MethodStandard, 512)
	binary.LittleEndian.PutUint16(code[3:], 500)
	orig := bytes.Clone(code)

	err := disk.EncodeInto(code, sampleTable(), disk.Geometry{}, disk.MethodStandard)
	require.ErrorIs(t, err, disk.ErrPointerOutOfRange)
	require.Equal(t, orig, code)
}

func TestDetectInvalid(t *testing.T) {
	allFF := bytes.Repeat([]byte{0xFF}, disk.BootAreaSize)

	cases := []struct {
		name   string
		buf    []byte
		reason error
	}{
		{"zero", make([]byte, disk.BootAreaSize), disk.ErrUnrecognizedBootRecord},
		{"ff", allFF, disk.ErrUnrecognizedBootRecord},
		{"short", []byte{0xC3}, disk.ErrShortBuffer},
		{"nil", nil, disk.ErrShortBuffer},
		{"half opcode", padBootArea([]byte{0x76, 0x00}), disk.ErrUnrecognizedBootRecord},
		{"no signature", padBootArea([]byte{0xC3}), disk.ErrSignatureMismatch},
		{"bp no signature", padBootArea([]byte{0x76, 0x21}), disk.ErrSignatureMismatch},
		{"bp short", loader(disk.MethodExtendedBios, 512), disk.ErrShortBuffer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			det := disk.Detect(tc.buf)
			require.False(t, det.Valid)
			require.ErrorIs(t, det.Reason, tc.reason)
		})
	}
}

func TestDetectStandardPointers(t *testing.T) {
	build := func(tablePtr, geomPtr uint16) []byte {
		code := loader(disk.MethodStandard, 512)
		binary.LittleEndian.PutUint16(code[3:], tablePtr)
		binary.LittleEndian.PutUint16(code[5:], geomPtr)
		code[511] = disk.Checksum(code)
		return padBootArea(code)
	}

	require.True(t, disk.Detect(build(testTablePtr, testGeometryPtr)).Valid)
	require.True(t, disk.Detect(build(512-48, 512-4)).Valid)

	for _, ptrs := range [][2]uint16{{6, testGeometryPtr}, {testTablePtr, 0}, {512 - 47, testGeometryPtr}, {testTablePtr, 509}, {0xFFFF, 0xFFFF}} {
		det := disk.Detect(build(ptrs[0], ptrs[1]))
		require.False(t, det.Valid)
		require.ErrorIs(t, det.Reason, disk.ErrPointerOutOfRange)
	}
}

func TestDetectChecksum(t *testing.T) {
	buf, err := disk.Encode(sampleTable(), disk.Geometry{Cylinders: 10, Heads: 2, SectorsPerTrack: 32}, disk.MethodStandard, loader(disk.MethodStandard, 400))
	require.NoError(t, err)

	area := padBootArea(buf)
	require.True(t, disk.Detect(area).Valid)

	area[200]++
	det := disk.Detect(area)
	require.False(t, det.Valid)
	require.ErrorIs(t, det.Reason, disk.ErrChecksumMismatch)

	// the second sector is not covered by the standard checksum
	area[200]--
	area[700] = 0x5A
	require.True(t, disk.Detect(area).Valid)
}

func TestDetectExtendedIgnoresChecksum(t *testing.T) {
	buf, err := disk.Encode(sampleTable(), disk.Geometry{Cylinders: 10, Heads: 2, SectorsPerTrack: 32}, disk.MethodExtendedBios, loader(disk.MethodExtendedBios, 1000))
	require.NoError(t, err)

	buf[300]++
	det := disk.Detect(buf)
	require.True(t, det.Valid)
	require.Equal(t, disk.MethodExtendedBios, det.Method)
}

func TestDecodeStandardRecord(t *testing.T) {
	buf := make([]byte, disk.BootAreaSize)
	buf[0] = 0xC3
	binary.LittleEndian.PutUint16(buf[3:], 0x20)
	binary.LittleEndian.PutUint16(buf[5:], 0x10)
	copy(buf[7:], "P112GIDE")

	// geometry: 10 cylinders, 2 heads, 32 sectors
	copy(buf[0x10:], []byte{10, 0, 2, 32})
	// first entry: start 0, size 40, CP/M, bootable
	copy(buf[0x20:], []byte{0, 0, 40, 0, 0x52, 1})
	buf[511] = disk.Checksum(buf[:512])

	det := disk.Detect(buf)
	require.True(t, det.Valid, det.String())
	require.Equal(t, disk.MethodStandard, det.Method)

	table, geom, err := disk.Decode(buf, det.Method)
	require.NoError(t, err)
	require.Equal(t, disk.Geometry{Cylinders: 10, Heads: 2, SectorsPerTrack: 32}, geom)

	require.False(t, table[0].IsEmpty())
	require.Equal(t, uint32(0), table[0].Start)
	require.Equal(t, uint32(40), table[0].Size)
	require.Equal(t, "CP/M", table[0].Type.String())
	require.True(t, table[0].Bootable)
	require.Equal(t, []int{0}, table.Occupied())
}

func TestDecodeNeverPanics(t *testing.T) {
	for _, m := range []disk.Method{disk.MethodStandard, disk.MethodExtendedBios} {
		_, _, err := disk.Decode(bytes.Repeat([]byte{0xFF}, disk.BootAreaSize), m)
		require.ErrorIs(t, err, disk.ErrPointerOutOfRange)

		_, _, err = disk.Decode(make([]byte, 10), m)
		require.ErrorIs(t, err, disk.ErrShortBuffer)
	}
}

func TestMethod(t *testing.T) {
	require.Equal(t, 512, disk.MethodStandard.Size())
	require.Equal(t, 1024, disk.MethodExtendedBios.Size())
	require.Equal(t, disk.MethodExtendedBios, disk.MethodStandard.Toggle())
	require.Equal(t, disk.MethodStandard, disk.MethodExtendedBios.Toggle())
}
