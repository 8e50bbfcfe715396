// Package compression wraps input and output streams with the codecs
// selected by file extension.
package compression

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Type represents the compression codec of a stream
type Type int

const (
	// None is an uncompressed stream
	None Type = iota
	// GZ is gzip
	GZ
	// BZ2 is bzip2, readable only
	BZ2
	// XZ is xz
	XZ
	// ZSTD is zstandard
	ZSTD
)

const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// ErrWriteUnsupported is returned when a codec cannot be written
var ErrWriteUnsupported = errors.New("compression: codec is not supported for writing")

// String returns the name of the compression type
func (t Type) String() string {
	switch t {
	case GZ:
		return "gz"
	case BZ2:
		return "bz2"
	case XZ:
		return "xz"
	case ZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type (e.g. ".gz")
func (t Type) Extension() string {
	switch t {
	case GZ:
		return extGZ
	case BZ2:
		return extBZ2
	case XZ:
		return extXZ
	case ZSTD:
		return extZSTD
	default:
		return ""
	}
}

// ParseType converts a configuration string to a Type
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "gz", "gzip":
		return GZ, nil
	case "bz2", "bzip2":
		return BZ2, nil
	case "xz":
		return XZ, nil
	case "zst", "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("unknown compression type %q", s)
	}
}

// Detect returns the compression type implied by the extension of path
func Detect(path string) Type {
	path = strings.ToLower(path)

	switch {
	case strings.HasSuffix(path, extGZ):
		return GZ
	case strings.HasSuffix(path, extBZ2):
		return BZ2
	case strings.HasSuffix(path, extXZ):
		return XZ
	case strings.HasSuffix(path, extZSTD):
		return ZSTD
	default:
		return None
	}
}

// StripExtension removes the compression extension from path if present
func StripExtension(path string) string {
	if ext := Detect(path).Extension(); ext != "" {
		return path[:len(path)-len(ext)]
	}
	return path
}

// NewReader wraps r with a decompressing reader. The returned cleanup
// releases the codec but does not close r.
func NewReader(r io.Reader, t Type) (io.Reader, func() error, error) {
	switch t {
	case None:
		return r, func() error { return nil }, nil

	case GZ:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case BZ2:
		return bzip2.NewReader(r), func() error { return nil }, nil

	case XZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, func() error { return nil }, nil

	case ZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type for reading: %v", t)
	}
}

// NewWriter wraps w with a compressing writer. The returned cleanup
// flushes the codec but does not close w.
func NewWriter(w io.Writer, t Type) (io.Writer, func() error, error) {
	switch t {
	case None:
		return w, func() error { return nil }, nil

	case GZ:
		gzWriter := gzip.NewWriter(w)
		return gzWriter, gzWriter.Close, nil

	case BZ2:
		return nil, nil, fmt.Errorf("%w: %v", ErrWriteUnsupported, t)

	case XZ:
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzWriter, xzWriter.Close, nil

	case ZSTD:
		zstdWriter, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zstdWriter, zstdWriter.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported compression type for writing: %v", t)
	}
}

// readCloser joins a decompressing reader with the cleanup of its codec
// and the close of the underlying stream
type readCloser struct {
	io.Reader
	cleanup func() error
	closer  io.Closer
}

// Close releases the codec and closes the underlying stream
func (rc *readCloser) Close() error {
	var err error
	if rc.cleanup != nil {
		err = rc.cleanup()
	}
	if closeErr := rc.closer.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Wrap returns a ReadCloser decompressing rc according to the extension of name.
// rc is closed when wrapping fails.
func Wrap(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	reader, cleanup, err := NewReader(rc, Detect(name))
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	return &readCloser{Reader: reader, cleanup: cleanup, closer: rc}, nil
}

// Open opens the file at path and decompresses it according to its extension
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return Wrap(file, path)
}

// OpenFS opens name in fsys and decompresses it according to its extension
func OpenFS(fsys fs.FS, name string) (io.ReadCloser, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return Wrap(file, name)
}

// writeCloser joins a compressing writer with the file it writes to
type writeCloser struct {
	io.Writer
	cleanup func() error
	file    *os.File
}

// Close flushes the codec, syncs and closes the file
func (wc *writeCloser) Close() error {
	var err error
	if wc.cleanup != nil {
		err = wc.cleanup()
	}
	if syncErr := wc.file.Sync(); syncErr != nil && err == nil {
		err = syncErr
	}
	if closeErr := wc.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Create creates the file at path and returns a writer compressing with t
func Create(path string, t Type) (io.WriteCloser, error) {
	file, err := os.Create(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer, cleanup, err := NewWriter(file, t)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &writeCloser{Writer: writer, cleanup: cleanup, file: file}, nil
}
