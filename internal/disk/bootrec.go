// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package disk

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Method identifies one of the two boot record layouts.
type Method uint8

const (
	// MethodStandard is the original single-sector GIDE boot record.
	MethodStandard Method = iota
	// MethodExtendedBios is the two-sector B/P BIOS boot record.
	MethodExtendedBios
)

// BootAreaSize is the size of the buffer exchanged with the I/O layer.
const BootAreaSize = 2 * SectorSize

// Signature is stored in both layouts at Layout.SignatureOffset.
var Signature = []byte("P112GIDE")

const (
	standardOpcode  = 0xC3 // jp
	extendedOpcode0 = 0x76
	extendedOpcode1 = 0x21

	geometryRecordSize = 4
	entrySize          = 6
	tableSize          = MaxEntries * entrySize

	// standardMinPointer is the lowest offset a Standard record may point
	// to; anything below lands in the jump and pointer fields.
	standardMinPointer = 7
)

func (m Method) String() string {
	switch m {
	case MethodStandard:
		return "standard"
	case MethodExtendedBios:
		return "B/P BIOS"
	}
	return "unknown"
}

// SectorCount returns the number of physical sectors the method occupies.
func (m Method) SectorCount() int {
	if m == MethodExtendedBios {
		return 2
	}
	return 1
}

// Size returns the size in bytes of the boot record for the method.
func (m Method) Size() int {
	return m.SectorCount() * SectorSize
}

func (m Method) Toggle() Method {
	if m == MethodExtendedBios {
		return MethodStandard
	}
	return MethodExtendedBios
}

// Layout holds the byte offsets of the fixed fields of a boot record. The
// table and geometry offsets locate 16-bit little-endian pointers to the
// actual records, not the records themselves.
type Layout struct {
	TablePtrOffset    int
	GeometryPtrOffset int
	SignatureOffset   int
}

func LayoutFor(m Method) Layout {
	if m == MethodExtendedBios {
		return Layout{TablePtrOffset: 17, GeometryPtrOffset: 19, SignatureOffset: 8}
	}
	return Layout{TablePtrOffset: 3, GeometryPtrOffset: 5, SignatureOffset: 7}
}

// Detection is the outcome of Detect. Reason is nil when Valid is true.
type Detection struct {
	Method Method
	Valid  bool
	Reason error
}

func (d Detection) String() string {
	if d.Valid {
		return fmt.Sprintf("valid %s boot record", d.Method)
	}
	return fmt.Sprintf("invalid %s boot record: %v", d.Method, d.Reason)
}

// Detect identifies the boot record layout of buf and checks its signature,
// pointers and, for the standard layout, its checksum. It never panics,
// whatever the content or length of buf.
func Detect(buf []byte) Detection {
	if len(buf) < SectorSize {
		return Detection{Method: MethodStandard, Reason: ErrShortBuffer}
	}

	var m Method
	switch {
	case buf[0] == extendedOpcode0 && buf[1] == extendedOpcode1:
		m = MethodExtendedBios
	case buf[0] == standardOpcode:
		m = MethodStandard
	default:
		return Detection{Method: MethodStandard, Reason: ErrUnrecognizedBootRecord}
	}

	if len(buf) < m.Size() {
		return Detection{Method: m, Reason: ErrShortBuffer}
	}
	buf = buf[:m.Size()]

	l := LayoutFor(m)
	sig := buf[l.SignatureOffset : l.SignatureOffset+len(Signature)]
	if !bytes.Equal(sig, Signature) {
		return Detection{Method: m, Reason: ErrSignatureMismatch}
	}

	if _, _, err := ResolvePointers(buf, m); err != nil {
		return Detection{Method: m, Reason: err}
	}

	if m == MethodStandard && !VerifyChecksum(buf) {
		return Detection{Method: m, Reason: ErrChecksumMismatch}
	}
	return Detection{Method: m, Valid: true}
}

// ResolvePointers reads the table and geometry pointers of buf and makes
// sure both records lie within the boot record.
func ResolvePointers(buf []byte, m Method) (tableOff, geomOff int, err error) {
	l := LayoutFor(m)
	size := m.Size()
	if len(buf) < size {
		return 0, 0, ErrShortBuffer
	}

	tableOff = int(binary.LittleEndian.Uint16(buf[l.TablePtrOffset:]))
	geomOff = int(binary.LittleEndian.Uint16(buf[l.GeometryPtrOffset:]))

	minPtr := 0
	if m == MethodStandard {
		minPtr = standardMinPointer
	}
	if tableOff < minPtr || tableOff+tableSize > size {
		return 0, 0, fmt.Errorf("%w: partition table at %d", ErrPointerOutOfRange, tableOff)
	}
	if geomOff < minPtr || geomOff+geometryRecordSize > size {
		return 0, 0, fmt.Errorf("%w: geometry at %d", ErrPointerOutOfRange, geomOff)
	}
	return tableOff, geomOff, nil
}

// Decode extracts the partition table and the stored geometry from buf,
// which must hold a boot record of method m.
func Decode(buf []byte, m Method) (Table, Geometry, error) {
	var (
		t Table
		g Geometry
	)

	tableOff, geomOff, err := ResolvePointers(buf, m)
	if err != nil {
		return t, g, err
	}

	rec := buf[geomOff : geomOff+geometryRecordSize]
	g.Cylinders = uint32(binary.LittleEndian.Uint16(rec[0:2]))
	g.Heads = uint32(rec[2])
	g.SectorsPerTrack = uint32(rec[3])

	for i := range t {
		off := tableOff + i*entrySize
		e := buf[off : off+entrySize]

		t[i] = Entry{
			Start:    uint32(binary.LittleEndian.Uint16(e[0:2])),
			Size:     uint32(binary.LittleEndian.Uint16(e[2:4])),
			Type:     PartitionType(e[4]),
			Bootable: e[5] != 0,
		}
	}
	return t, g, nil
}

// Encode builds a boot record of method m from the boot loader code, the
// partition table and the geometry. The returned buffer is exactly m.Size()
// bytes long. The boot loader must carry the signature and the table and
// geometry pointers of the selected layout.
func Encode(t Table, g Geometry, m Method, bootCode []byte) ([]byte, error) {
	if len(bootCode) == 0 {
		return nil, ErrBootCodeMissing
	}
	if len(bootCode) > m.Size() {
		return nil, fmt.Errorf("%w: %d bytes, at most %d allowed", ErrBootCodeTooLarge, len(bootCode), m.Size())
	}

	buf := make([]byte, m.Size())
	copy(buf, bootCode)

	if err := EncodeInto(buf, t, g, m); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeInto rewrites the partition table, the geometry and the checksum of
// an existing boot record in place, leaving every other byte untouched.
// buf is left unmodified when an error is returned.
func EncodeInto(buf []byte, t Table, g Geometry, m Method) error {
	if err := checkFields(t, g); err != nil {
		return err
	}

	tableOff, geomOff, err := ResolvePointers(buf, m)
	if err != nil {
		return err
	}

	for i := range t {
		e := buf[tableOff+i*entrySize : tableOff+(i+1)*entrySize]
		clear(e)
		if t[i].IsEmpty() {
			continue
		}

		binary.LittleEndian.PutUint16(e[0:2], uint16(t[i].Start))
		binary.LittleEndian.PutUint16(e[2:4], uint16(t[i].Size))
		e[4] = byte(t[i].Type)
		if t[i].Bootable {
			e[5] = 1
		}
	}

	rec := buf[geomOff : geomOff+geometryRecordSize]
	binary.LittleEndian.PutUint16(rec[0:2], uint16(g.Cylinders))
	rec[2] = byte(g.Heads)
	rec[3] = byte(g.SectorsPerTrack)

	if m == MethodStandard {
		buf[SectorSize-1] = Checksum(buf[:SectorSize])
	}
	return nil
}

// checkFields makes sure every value fits its on-disk field.
func checkFields(t Table, g Geometry) error {
	if g.Cylinders > 0xFFFF || g.Heads > 0xFF || g.SectorsPerTrack > 0xFF {
		return fmt.Errorf("%w: geometry %s cannot be stored", ErrRangeOutOfBounds, g)
	}
	for i, e := range t {
		if e.IsEmpty() {
			continue
		}
		if e.Start > MaxFieldUnits || e.Size > MaxFieldUnits {
			return fmt.Errorf("%w: partition %d (%s) cannot be stored", ErrRangeOutOfBounds, i+1, e)
		}
	}
	return nil
}

// Checksum returns the value of the last byte of sector that makes the sum
// of all of its bytes a multiple of 256.
// A sector shorter than SectorSize-1 bytes is summed as if zero padded.
func Checksum(sector []byte) byte {
	n := min(len(sector), SectorSize-1)
	var sum byte
	for _, b := range sector[:n] {
		sum += b
	}
	return -sum
}

// VerifyChecksum reports whether the bytes of sector add up to 0 modulo 256.
func VerifyChecksum(sector []byte) bool {
	if len(sector) < SectorSize {
		return false
	}
	var sum byte
	for _, b := range sector[:SectorSize] {
		sum += b
	}
	return sum == 0
}
