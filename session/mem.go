package session

import (
	"bytes"
	"slices"
	"strings"
	"sync"
)

// MemStore keeps everything in a map.  Mostly for tests and for trees that
// only live for one run.
type MemStore struct {
	mtx    sync.Mutex
	m      map[string][]byte
	closed bool
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	v, ok := s.m[key]
	if !ok {
		return nil, errNotFound(key)
	}
	return bytes.Clone(v), nil
}

func (s *MemStore) Put(key string, value []byte) error {
	return s.Write(Batch{key: value})
}

func (s *MemStore) Write(b Batch) error {
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
		s.m[k] = bytes.Clone(v)
	}
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.m, key)
	return nil
}

func (s *MemStore) Keys(prefix string) ([]string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	var keys []string
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemStore) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.closed = true
	s.m = nil
	return nil
}
