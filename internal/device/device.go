package device

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"unicode"

	"github.com/ostafen/gidefdisk/internal/disk"
)

// Disk is an opened image file or block device holding a boot record.
type Disk struct {
	Path     string
	IsDevice bool
	Writable bool
	file     *os.File
}

// Open opens the image file or device at path. Writable disks are opened
// read-write; image files are never created.
func Open(path string, writable bool) (*Disk, error) {
	path = NormalizeVolumePath(path)

	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%q is a directory", path)
	}

	return &Disk{
		Path:     path,
		IsDevice: info.Mode()&os.ModeDevice != 0,
		Writable: writable,
		file:     f,
	}, nil
}

func (d *Disk) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}

// ReadBootArea reads the first two sectors. Images shorter than that are
// padded with zeroes; an empty image is an error.
func (d *Disk) ReadBootArea() ([]byte, error) {
	if d.file == nil {
		return nil, errors.New("device: file handle is nil")
	}

	buf := make([]byte, disk.BootAreaSize)
	n, err := d.file.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read boot record from %q: %w", d.Path, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("failed to read boot record from %q: empty image", d.Path)
	}
	return buf, nil
}

// WriteBootArea writes a one or two sector boot record at the start of the
// disk and flushes it.
func (d *Disk) WriteBootArea(buf []byte) error {
	if d.file == nil {
		return errors.New("device: file handle is nil")
	}
	if !d.Writable {
		return fmt.Errorf("device: %q not opened in read-write mode", d.Path)
	}
	if len(buf) != disk.SectorSize && len(buf) != disk.BootAreaSize {
		return fmt.Errorf("device: invalid boot record size %d", len(buf))
	}

	if _, err := d.file.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("failed to write boot record to %q: %w", d.Path, err)
	}
	return d.file.Sync()
}

// Geometry returns the geometry reported by the drive, or nil when it can
// not be probed (image files, unsupported platforms).
func (d *Disk) Geometry() (*disk.Geometry, error) {
	if !d.IsDevice || d.file == nil {
		return nil, nil
	}
	return probeGeometry(d.file)
}

// NormalizeVolumePath checks if a given path is a Windows volume path
// and normalizes it to \\.\C: format if running on Windows.
// Otherwise, returns the path unchanged.
func NormalizeVolumePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}

	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, "/", `\`)
	upper := strings.ToUpper(path)

	if strings.HasPrefix(upper, `\\.\`) {
		return upper
	}

	// "C:" or "C:\"
	if len(upper) >= 2 && upper[1] == ':' && unicode.IsLetter(rune(upper[0])) && len(strings.TrimRight(upper, `\`)) == 2 {
		return `\\.\` + string(upper[0]) + `:`
	}
	return path
}

// ParseGeometry parses a "C/H/S" geometry override.
func ParseGeometry(s string) (*disk.Geometry, error) {
	var g disk.Geometry
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid geometry %q: expected cylinders/heads/sectors", s)
	}
	if _, err := fmt.Sscanf(s, "%d/%d/%d", &g.Cylinders, &g.Heads, &g.SectorsPerTrack); err != nil {
		return nil, fmt.Errorf("invalid geometry %q: %w", s, err)
	}
	if g.Cylinders == 0 || g.Heads == 0 || g.SectorsPerTrack == 0 {
		return nil, fmt.Errorf("invalid geometry %q: values must be positive", s)
	}
	if g.Cylinders > 0xFFFF || g.Heads > 0xFF || g.SectorsPerTrack > 0xFF {
		return nil, fmt.Errorf("invalid geometry %q: %w", s, disk.ErrRangeOutOfBounds)
	}
	return &g, nil
}
