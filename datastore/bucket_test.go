package datastore_test

import (
	"bytes"
	"testing"

	"github.com/codebench-edu/codebench/datastore"
)

func TestBucketRoundTrip(t *testing.T) {
	mgr, err := datastore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	b := mgr.Solutions()
	blob := []byte("pretend this is a tar.gz")
	if err := b.WriteFile("sub-1.tar.gz", bytes.NewReader(blob), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := b.ReadBlob("sub-1.tar.gz")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("read back %q, expected %q", got, blob)
	}

	if !b.Has("sub-1.tar.gz") {
		t.Error("Has should see the blob")
	}
	if b.Has("nope.tar.gz") {
		t.Error("Has should not see a missing blob")
	}
}

func TestBucketCopy(t *testing.T) {
	mgr, err := datastore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	b := mgr.Suites()
	if err := b.WriteFile("src", bytes.NewReader([]byte("suite")), 0644); err != nil {
		t.Fatal(err)
	}
	if err := b.Copy("src", "dst"); err != nil {
		t.Fatal(err)
	}
	got, err := b.ReadBlob("dst")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "suite" {
		t.Errorf("copy read back %q", got)
	}
}

func TestBucketRemoveMissing(t *testing.T) {
	mgr, err := datastore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.Solutions().RemoveFile("never-existed"); err != nil {
		t.Errorf("removing a missing blob should be a no-op, got %v", err)
	}
}

func TestValidName(t *testing.T) {
	for name, want := range map[string]bool{
		"sub-1.tar.gz":   true,
		"":               false,
		".":              false,
		"..":             false,
		"a/b.tar.gz":     false,
		"..\\escape.tgz": false,
	} {
		if got := datastore.ValidName(name); got != want {
			t.Errorf("ValidName(%q) = %v, expected %v", name, got, want)
		}
	}
}
