package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/procon-tools/go-procon/file"
)

type fileLocalStore struct {
	dir  string            // directory to store file
	name map[string]string // id to name mapping if exists
	mu   sync.RWMutex
}

// NewFileLocalStore create new local file store, the directory is
// created if not exists
func NewFileLocalStore(dir string) (FileStore, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &fileLocalStore{
		dir:  dir,
		name: make(map[string]string),
	}, nil
}

func (s *fileLocalStore) Add(name string, content []byte) (string, error) {
	f, err := s.New()
	if err != nil {
		return "", err
	}
	defer f.Close()

	id := filepath.Base(f.Name())
	if _, err := f.Write(content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("add %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.name[id] = name
	return id, nil
}

func (s *fileLocalStore) Get(id string) (string, file.File) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := filepath.Join(s.dir, id)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return "", nil
	}
	name, ok := s.name[id]
	if !ok {
		name = id
	}
	return name, file.NewLocalFile(name, p)
}

func (s *fileLocalStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.name, id)
	p := filepath.Join(s.dir, id)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return false
	}
	os.Remove(p)
	return true
}

func (s *fileLocalStore) List() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fi, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	names := make(map[string]string, len(fi))
	for _, f := range fi {
		names[f.Name()] = s.name[f.Name()]
	}
	return names
}

func (s *fileLocalStore) New() (*os.File, error) {
	for range [50]struct{}{} {
		id, err := generateID()
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(filepath.Join(s.dir, id), os.O_CREATE|os.O_RDWR|os.O_EXCL, 0644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	return nil, errUniqueIDNotGenerated
}
