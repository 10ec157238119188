package session

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelStore keeps the fields in a LevelDB, keyed by "file/field".
type LevelStore struct {
	mtx sync.Mutex
	db  *leveldb.DB
}

// OpenLevelStore opens (creating if needed) the LevelDB at path
func OpenLevelStore(path string) (*LevelStore, error) {
	o := &opt.Options{
		Compression: opt.NoCompression,
	}
	db, err := leveldb.OpenFile(path, o)
	if err != nil {
		return nil, err
	}
	log.Debugf("opened leveldb store at %s", path)
	return &LevelStore{db: db}, nil
}

// NewMemLevelStore returns a LevelDB store backed by memory instead of
// disk
func NewMemLevelStore() (*LevelStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db}, nil
}

func (s *LevelStore) Get(key string) ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	v, err := s.db.Get([]byte(key), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, errNotFound(key)
	case errors.Is(err, leveldb.ErrClosed):
		return nil, ErrClosed
	}
	return v, err
}

func (s *LevelStore) Put(key string, value []byte) error {
	return s.Write(Batch{key: value})
}

func (s *LevelStore) Write(b Batch) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	var batch leveldb.Batch
	for k, v := range b {
		if err := checkKey(k); err != nil {
			return err
		}
		batch.Put([]byte(k), v)
	}
	err := s.db.Write(&batch, nil)
	if errors.Is(err, leveldb.ErrClosed) {
		return ErrClosed
	}
	return err
}

func (s *LevelStore) Delete(key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	err := s.db.Delete([]byte(key), nil)
	if errors.Is(err, leveldb.ErrClosed) {
		return ErrClosed
	}
	return err
}

func (s *LevelStore) Keys(prefix string) ([]string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		if errors.Is(err, leveldb.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return keys, nil
}

func (s *LevelStore) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	err := s.db.Close()
	if errors.Is(err, leveldb.ErrClosed) {
		return nil
	}
	return err
}
