package session

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps one flat file per key under a directory: key
// "tree/parents" lives at <dir>/tree/parents.dat.
type FileStore struct {
	mtx    sync.Mutex
	dir    string
	closed bool
}

const flatFileExt = ".dat"

// OpenFileStore opens (creating if needed) a store rooted at dir
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+flatFileExt)
}

func (s *FileStore) Get(key string) ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	v, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNotFound(key)
	}
	return v, err
}

func (s *FileStore) Put(key string, value []byte) error {
	return s.Write(Batch{key: value})
}

// Write puts every file in place through a rename, so a reader never sees
// half a field.  The batch as a whole is not atomic.
func (s *FileStore) Write(b Batch) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return ErrClosed
	}
	for k := range b {
		if err := checkKey(k); err != nil {
			return err
		}
	}
	for k, v := range b {
		p := s.path(k)
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return err
		}
		tmp := p + ".tmp"
		if err := os.WriteFile(tmp, v, 0600); err != nil {
			return err
		}
		if err := os.Rename(tmp, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) Keys(prefix string) ([]string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	var keys []string
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, flatFileExt) {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		k := strings.TrimSuffix(filepath.ToSlash(rel), flatFileExt)
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *FileStore) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.closed = true
	return nil
}
