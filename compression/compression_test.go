package compression

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		expected  Type
		extension string
		stripped  string
	}{
		{name: "plain", path: "data.csv", expected: None, extension: "", stripped: "data.csv"},
		{name: "gzip", path: "data.csv.gz", expected: GZ, extension: ".gz", stripped: "data.csv"},
		{name: "bzip2", path: "data.txt.BZ2", expected: BZ2, extension: ".bz2", stripped: "data.txt"},
		{name: "xz", path: "report.prn.xz", expected: XZ, extension: ".xz", stripped: "report.prn"},
		{name: "zstd", path: "data.csv.zst", expected: ZSTD, extension: ".zst", stripped: "data.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Detect(tt.path)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.extension, got.Extension())
			assert.Equal(t, tt.stripped, StripExtension(tt.path))

			parsed, err := ParseType(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, parsed)
		})
	}

	_, err := ParseType("lz4")
	assert.Error(t, err)
}

func TestWriterReaderRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("id,name\n1,alice\n2,bob\n")
	for _, typ := range []Type{None, GZ, XZ, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, cleanup, err := NewWriter(&buf, typ)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, cleanup())

			r, rcleanup, err := NewReader(&buf, typ)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, rcleanup())
			assert.Equal(t, payload, got)
		})
	}
}

func TestNewWriter_BZ2(t *testing.T) {
	t.Parallel()

	_, _, err := NewWriter(&bytes.Buffer{}, BZ2)
	assert.ErrorIs(t, err, ErrWriteUnsupported)
}

func TestNewReader_Corrupt(t *testing.T) {
	t.Parallel()

	_, _, err := NewReader(bytes.NewReader([]byte("not gzip")), GZ)
	assert.Error(t, err)
}

func TestCreateOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rows.txt.gz")
	w, err := Create(path, Detect(path))
	require.NoError(t, err)
	_, err = io.WriteString(w, "a;b\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "a;b\n", string(raw), "file is compressed on disk")

	r, err := Open(path)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "a;b\n", string(got))

	_, err = Open(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestOpenFS(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, cleanup, err := NewWriter(&buf, ZSTD)
	require.NoError(t, err)
	_, err = io.WriteString(w, "x\n")
	require.NoError(t, err)
	require.NoError(t, cleanup())

	fsys := fstest.MapFS{
		"in/a.txt.zst": {Data: buf.Bytes()},
		"in/b.txt":     {Data: []byte("plain\n")},
	}

	r, err := OpenFS(fsys, "in/a.txt.zst")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "x\n", string(got))

	r, err = OpenFS(fsys, "in/b.txt")
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "plain\n", string(got))
}
