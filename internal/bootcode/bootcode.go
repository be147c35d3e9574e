package bootcode

import (
	"fmt"
	"os"

	"github.com/ostafen/gidefdisk/internal/disk"
)

// Loaders holds the boot loader images written in front of the partition
// table, one per boot record method. A nil image makes the writer fall back
// to the boot code already on disk.
type Loaders struct {
	Standard     []byte
	ExtendedBios []byte
}

// Load reads the boot loader images produced by the loader build. Empty
// paths are skipped.
func Load(standardPath, extendedPath string) (Loaders, error) {
	var (
		l   Loaders
		err error
	)
	if l.Standard, err = readImage(standardPath, disk.MethodStandard); err != nil {
		return Loaders{}, err
	}
	if l.ExtendedBios, err = readImage(extendedPath, disk.MethodExtendedBios); err != nil {
		return Loaders{}, err
	}
	return l, nil
}

func readImage(path string, m disk.Method) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s boot loader %q: %w", m, path, err)
	}
	return data, nil
}

// For returns the image to use for method m.
func (l Loaders) For(m disk.Method) []byte {
	if m == disk.MethodExtendedBios {
		return l.ExtendedBios
	}
	return l.Standard
}
