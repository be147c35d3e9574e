package backup

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/ostafen/gidefdisk/internal/disk"
)

// Compression is chosen from the extension of the backup file.
type Compression string

const (
	None  Compression = "none"
	Gzip  Compression = "gzip"
	Zstd  Compression = "zstd"
	S2    Compression = "s2"
	Bzip2 Compression = "bzip2"
)

func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst":
		return Zstd
	case ".s2":
		return S2
	case ".bz2":
		return Bzip2
	}
	return None
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func newWriter(c Compression, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	case S2:
		return s2.NewWriter(w), nil
	case Bzip2:
		return bzip2.NewWriter(w, &bzip2.WriterConfig{})
	}
	return nopWriteCloser{w}, nil
}

func newReader(c Compression, r io.Reader) (io.Reader, func(), error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case S2:
		return s2.NewReader(r), func() {}, nil
	case Bzip2:
		zr, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	}
	return r, func() {}, nil
}

func checkSize(n int) error {
	if n != disk.SectorSize && n != disk.BootAreaSize {
		return fmt.Errorf("invalid boot record backup size %d: expected %d or %d bytes", n, disk.SectorSize, disk.BootAreaSize)
	}
	return nil
}

// Save writes a copy of a one or two sector boot area to path.
func Save(path string, buf []byte) error {
	if err := checkSize(len(buf)); err != nil {
		return err
	}

	var out bytes.Buffer
	w, err := newWriter(CompressionFor(path), &out)
	if err != nil {
		return fmt.Errorf("failed to create compression writer: %w", err)
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write backup %q: %w", path, err)
	}
	return nil
}

// Load reads a backup written by Save.
func Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup %q: %w", path, err)
	}
	defer f.Close()

	r, closeFn, err := newReader(CompressionFor(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %q: %w", path, err)
	}
	defer closeFn()

	// one byte more than the largest valid backup, to detect oversized files
	buf, err := io.ReadAll(io.LimitReader(r, disk.BootAreaSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %q: %w", path, err)
	}
	if err := checkSize(len(buf)); err != nil {
		return nil, err
	}
	return buf, nil
}
