package datastore

import "fmt"

// Manager owns the bucket set rooted at the data directory.
type Manager struct {
	RootPath string

	solutions *Bucket
	suites    *Bucket
}

func New(dir string) (*Manager, error) {
	m := &Manager{
		RootPath:  dir,
		solutions: &Bucket{RootPath: dir, Name: "solutions"},
		suites:    &Bucket{RootPath: dir, Name: "suites"},
	}

	for _, b := range []*Bucket{m.solutions, m.suites} {
		if err := b.Init(); err != nil {
			return nil, fmt.Errorf("couldn't initialize bucket %q: %w", b.Name, err)
		}
	}

	return m, nil
}

// Solutions holds students' packed solution archives.
func (m *Manager) Solutions() *Bucket {
	return m.solutions
}

// Suites holds instructors' unit-test suite archives.
func (m *Manager) Suites() *Bucket {
	return m.suites
}
