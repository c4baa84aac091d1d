// Package archive packs and unpacks the platform's file archives: solution
// uploads, starting files and unit-test suites all travel as gzip-compressed
// tar blobs whose members are UTF-8 text files keyed by base filename.
package archive

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

// ManifestName is the reserved member holding per-file display metadata.
// It never shows up in the extracted file map.
const ManifestName = ".codebench.json"

const (
	DisplayReadWrite = "read_write"
	DisplayHidden    = "hidden"
)

// FileMeta controls what a student may see or edit.
type FileMeta struct {
	Display string `json:"display"`
}

// Manifest maps base filenames to their metadata.
type Manifest map[string]FileMeta

// Pack writes the files plus the manifest as a tar.gz stream. Member order
// is the sorted filename order so identical inputs produce identical blobs.
func Pack(w io.Writer, files map[string]string, manifest Manifest) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	if manifest != nil {
		raw, err := json.Marshal(manifest)
		if err != nil {
			return fmt.Errorf("couldn't encode manifest: %w", err)
		}
		if err := writeMember(tw, ManifestName, raw); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if path.Base(name) == ManifestName {
			return fmt.Errorf("%q is a reserved member name", ManifestName)
		}
		if err := writeMember(tw, path.Base(name), []byte(files[name])); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func writeMember(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: time.Unix(0, 0),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("couldn't write header for %q: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("couldn't write member %q: %w", name, err)
	}
	return nil
}

// Unpack reads a tar.gz stream into a filename -> content map plus the
// manifest, if present. Directory components are stripped, so two members
// with the same base name collide (last one wins). Members that are not
// valid UTF-8 are skipped with a warning instead of aborting the whole
// extraction.
func Unpack(r io.Reader) (map[string]string, Manifest, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("not a gzip stream: %w", err)
	}
	defer gz.Close()

	files := make(map[string]string)
	var manifest Manifest

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("corrupt tar stream: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := path.Base(strings.TrimSuffix(hdr.Name, "/"))
		if name == "." || name == "" {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't read member %q: %w", name, err)
		}

		if name == ManifestName {
			if err := json.Unmarshal(data, &manifest); err != nil {
				slog.Warn("Skipping malformed archive manifest", slog.Any("err", err))
			}
			continue
		}

		if !utf8.Valid(data) {
			slog.Warn("Skipping non-UTF-8 archive member", slog.String("name", name))
			continue
		}
		files[name] = string(data)
	}

	return files, manifest, nil
}

// PackBytes is Pack into a fresh buffer.
func PackBytes(files map[string]string, manifest Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := Pack(&buf, files, manifest); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnpackBytes is Unpack from a byte slice.
func UnpackBytes(blob []byte) (map[string]string, Manifest, error) {
	return Unpack(bytes.NewReader(blob))
}
