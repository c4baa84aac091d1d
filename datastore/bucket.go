// Package datastore is the filesystem blob store for packed archives.
// Solution uploads and unit-test suites are already gzip streams, so buckets
// store them as-is; nothing here compresses twice.
package datastore

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

type Bucket struct {
	RootPath string
	Name     string
}

func (b *Bucket) Init() error {
	return os.MkdirAll(path.Join(b.RootPath, b.Name), 0755)
}

func (b *Bucket) filePath(name string) string {
	return path.Join(b.RootPath, b.Name, path.Base(name))
}

func (b *Bucket) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(b.filePath(name))
}

func (b *Bucket) Has(name string) bool {
	_, err := b.Stat(name)
	return err == nil
}

func (b *Bucket) Writer(name string, mode fs.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(b.filePath(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
}

func (b *Bucket) WriteFile(name string, r io.Reader, mode fs.FileMode) error {
	wr, err := b.Writer(name, mode)
	if err != nil {
		return err
	}
	_, err = io.Copy(wr, r)
	if err1 := wr.Close(); err1 != nil && err == nil {
		err = err1
	}
	return err
}

func (b *Bucket) Reader(name string) (io.ReadCloser, error) {
	return os.Open(b.filePath(name))
}

func (b *Bucket) ReadBlob(name string) ([]byte, error) {
	f, err := b.Reader(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (b *Bucket) RemoveFile(name string) error {
	err := os.Remove(b.filePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Copy duplicates a blob under a new name within the same bucket. Used when
// cloning a test suite to another activity.
func (b *Bucket) Copy(src, dst string) error {
	r, err := b.Reader(src)
	if err != nil {
		return err
	}
	defer r.Close()
	return b.WriteFile(dst, r, 0644)
}

// ValidName rejects anything that could escape the bucket directory.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}
