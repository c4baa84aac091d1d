package archive_test

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"github.com/codebench-edu/codebench/archive"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	files := map[string]string{
		"main.py":    "print('hello')\n",
		"helpers.py": "def add(a, b):\n    return a + b\n",
		"data.txt":   "ünïcode is fine\n",
	}
	manifest := archive.Manifest{
		"main.py":  {Display: archive.DisplayReadWrite},
		"data.txt": {Display: archive.DisplayHidden},
	}

	blob, err := archive.PackBytes(files, manifest)
	require.NoError(t, err)

	got, gotManifest, err := archive.UnpackBytes(blob)
	require.NoError(t, err)
	assert.Equal(t, files, got)
	assert.Equal(t, manifest, gotManifest)
}

func TestRoundTripNoManifest(t *testing.T) {
	files := map[string]string{"solution.c": "int main() { return 0; }\n"}

	blob, err := archive.PackBytes(files, nil)
	require.NoError(t, err)

	got, manifest, err := archive.UnpackBytes(blob)
	require.NoError(t, err)
	assert.Equal(t, files, got)
	assert.Nil(t, manifest)
}

func TestPackDeterministic(t *testing.T) {
	files := map[string]string{"b.py": "2", "a.py": "1", "c.py": "3"}
	first, err := archive.PackBytes(files, nil)
	require.NoError(t, err)
	second, err := archive.PackBytes(files, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPackRejectsReservedName(t *testing.T) {
	_, err := archive.PackBytes(map[string]string{archive.ManifestName: "{}"}, nil)
	assert.Error(t, err)
}

// rawArchive builds a tar.gz directly, bypassing Pack, to exercise inputs
// Pack would never produce.
func rawArchive(t *testing.T, members map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, data := range members {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:    name,
			Mode:    0644,
			Size:    int64(len(data)),
			ModTime: time.Unix(0, 0),
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestUnpackStripsDirectories(t *testing.T) {
	blob := rawArchive(t, map[string][]byte{
		"src/nested/main.py": []byte("pass\n"),
	})
	files, _, err := archive.UnpackBytes(blob)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"main.py": "pass\n"}, files)
}

func TestUnpackSkipsBinaryMembers(t *testing.T) {
	blob := rawArchive(t, map[string][]byte{
		"readable.txt": []byte("ok\n"),
		"blob.bin":     {0xff, 0xfe, 0x00, 0x80},
	})
	files, _, err := archive.UnpackBytes(blob)
	require.NoError(t, err)
	// The binary member is dropped with a warning; extraction continues.
	assert.Equal(t, map[string]string{"readable.txt": "ok\n"}, files)
}

func TestUnpackGarbage(t *testing.T) {
	_, _, err := archive.UnpackBytes([]byte("definitely not gzip"))
	assert.Error(t, err)
}
