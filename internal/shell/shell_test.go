package shell_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/ostafen/gidefdisk/internal/bootcode"
	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/ostafen/gidefdisk/internal/logger"
	"github.com/ostafen/gidefdisk/internal/session"
	"github.com/ostafen/gidefdisk/internal/shell"
	"github.com/stretchr/testify/require"
)

type script struct {
	lines   []string
	prompts []string
}

func (s *script) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

var testGeometry = disk.Geometry{Cylinders: 10, Heads: 2, SectorsPerTrack: 32}

func standardLoader() []byte {
	code := make([]byte, 128)
	code[0] = 0xC3
	binary.LittleEndian.PutUint16(code[3:], 0x40)
	binary.LittleEndian.PutUint16(code[5:], 0x30)
	copy(code[7:], disk.Signature)
	return code
}

type harness struct {
	sess  *session.Session
	out   bytes.Buffer
	saved []byte
}

func run(t *testing.T, lines ...string) (*harness, error) {
	return runOn(t, testGeometry, lines...)
}

func runOn(t *testing.T, g disk.Geometry, lines ...string) (*harness, error) {
	h := &harness{sess: session.New(nil, &g, session.DefaultOptions())}

	in := &script{lines: lines}
	loaders := bootcode.Loaders{Standard: standardLoader()}
	save := func(buf []byte) error {
		h.saved = buf
		return nil
	}

	sh := shell.New(h.sess, in, &h.out, logger.Discard(), loaders, save)
	return h, sh.Run()
}

func TestAddAndWrite(t *testing.T) {
	h, err := run(t,
		"n", "1", "", "+20",
		"n", "2", "", "",
		"b", "1",
		"t", "2", "L", "zz", "d1",
		"w",
		"p", // never reached
	)
	require.NoError(t, err)

	require.Equal(t, disk.Entry{Start: 1, Size: 20, Type: disk.PartitionTypeCPM, Bootable: true}, h.sess.Table[0])
	require.Equal(t, disk.Entry{Start: 21, Size: 19, Type: disk.PartitionTypeUZI}, h.sess.Table[1])

	require.Len(t, h.saved, disk.SectorSize)
	table, geom, err := disk.Decode(h.saved, disk.MethodStandard)
	require.NoError(t, err)
	require.Equal(t, h.sess.Table, table)
	require.Equal(t, testGeometry, geom)
	require.True(t, disk.VerifyChecksum(h.saved))

	require.Contains(t, h.out.String(), "Changed system type of partition 2 to d1 (UZI)")
	require.Contains(t, h.out.String(), "Done.")
}

func TestQuitDoesNotWrite(t *testing.T) {
	h, err := run(t, "n", "1", "", "+16K", "q")
	require.NoError(t, err)
	require.Nil(t, h.saved)
	require.Equal(t, uint32(2), h.sess.Table[0].Size)
}

func TestDefaultSizeFitsEntry(t *testing.T) {
	large := disk.Geometry{Cylinders: 4096, Heads: 16, SectorsPerTrack: 63}

	h, err := runOn(t, large, "n", "1", "0", "", "w")
	require.NoError(t, err)
	require.Equal(t, disk.Entry{Start: 0, Size: disk.MaxFieldUnits, Type: disk.PartitionTypeCPM}, h.sess.Table[0])

	require.NotNil(t, h.saved)
	table, _, err := disk.Decode(h.saved, disk.MethodStandard)
	require.NoError(t, err)
	require.Equal(t, h.sess.Table, table)
}

func TestEOFQuits(t *testing.T) {
	h, err := run(t, "n", "1")
	require.NoError(t, err)
	require.Nil(t, h.saved)
	require.Empty(t, h.sess.Table.Occupied())
}

func TestOperatorErrors(t *testing.T) {
	h, err := run(t,
		"d", "3",
		"b", "9",
		"n", "0",
		"n", "1", "50",
		"t", "4",
		"q",
	)
	require.NoError(t, err)

	out := h.out.String()
	require.Contains(t, out, "partition not defined: partition 3 already deleted.")
	require.Contains(t, out, "partition number out of range: 9 (1-8).")
	require.Contains(t, out, "value out of range: first track 50")
	require.Contains(t, out, "partition 4 does not exist yet")
}

func TestUnitsAndVerify(t *testing.T) {
	h, err := run(t,
		"u", // cylinders
		"u", // sectors
		"n", "1", "16", "+160",
		"n", "2", "64", "+1K",
		"v",
		"p",
		"q",
	)
	require.NoError(t, err)

	require.Equal(t, disk.Entry{Start: 1, Size: 10, Type: disk.PartitionTypeCPM}, h.sess.Table[0])
	require.Equal(t, disk.Entry{Start: 4, Size: 1, Type: disk.PartitionTypeCPM}, h.sess.Table[1])

	out := h.out.String()
	require.Contains(t, out, "Changing display/entry units to sectors")
	require.Contains(t, out, "Partition 2 overlaps partition 1")
	require.Contains(t, out, "464 unallocated sectors.")
	require.Contains(t, out, "16 overlapped sectors.")
}

func TestToggleMethodWrite(t *testing.T) {
	h, err := run(t, "m", "w")
	require.Error(t, err)
	require.ErrorIs(t, err, disk.ErrBootCodeMissing)
	require.Nil(t, h.saved)
	require.Contains(t, h.out.String(), "B/P BIOS")
}

func TestMenu(t *testing.T) {
	h, err := run(t, "h", "?", "l", "q")
	require.NoError(t, err)
	require.Contains(t, h.out.String(), "write table to disk and exit")
	require.Contains(t, h.out.String(), " b2  CP/M 3.0")
}
