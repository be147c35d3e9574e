//go:build linux

package device

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/ostafen/gidefdisk/internal/disk"
	"golang.org/x/sys/unix"
)

const (
	hdioGetGeo   = 0x0301
	blkGetSize64 = 0x80081272
)

// hdGeometry mirrors struct hd_geometry from linux/hdreg.h.
type hdGeometry struct {
	Heads     uint8
	Sectors   uint8
	Cylinders uint16
	Start     uintptr
}

func probeGeometry(f *os.File) (*disk.Geometry, error) {
	var geo hdGeometry
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), hdioGetGeo, uintptr(unsafe.Pointer(&geo)))
	if errno != 0 {
		return nil, fmt.Errorf("ioctl HDIO_GETGEO failed: %w", errno)
	}

	g := &disk.Geometry{
		Cylinders:       uint32(geo.Cylinders),
		Heads:           uint32(geo.Heads),
		SectorsPerTrack: uint32(geo.Sectors),
	}

	// The cylinder count in hd_geometry is truncated on large drives;
	// recompute it from the device size when possible.
	var size uint64
	_, _, errno = unix.Syscall(unix.SYS_IOCTL, f.Fd(), blkGetSize64, uintptr(unsafe.Pointer(&size)))
	if errno == 0 && g.Heads > 0 && g.SectorsPerTrack > 0 {
		cyls := size / disk.SectorSize / uint64(g.Heads*g.SectorsPerTrack)
		g.Cylinders = uint32(min(cyls, 0xFFFF))
	}
	return g, nil
}
