package engine

import (
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB is the on-disk Engine used in production. It creates the database
// directory on first open and compresses blocks with snappy.
type LevelDB struct {
	db   *leveldb.DB
	path string
}

var _ Engine = (*LevelDB)(nil)

// OpenLevelDB opens (or creates) a LevelDB database rooted at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		Compression: opt.SnappyCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: db, path: path}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	if err == leveldb.ErrClosed {
		return nil, ErrClosed
	}
	return v, err
}

func (l *LevelDB) Put(key, value []byte) error {
	err := l.db.Put(key, value, nil)
	if err == leveldb.ErrClosed {
		return ErrClosed
	}
	return err
}

func (l *LevelDB) Delete(key []byte) error {
	err := l.db.Delete(key, nil)
	if err == leveldb.ErrClosed {
		return ErrClosed
	}
	return err
}

// NewIterator iterates over a snapshot of the database in key order.
// goleveldb's iterator already satisfies the Iterator contract.
func (l *LevelDB) NewIterator() Iterator {
	return l.db.NewIterator(nil, nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Path returns the directory the database lives in.
func (l *LevelDB) Path() string {
	return l.path
}

// Destroy removes the database directory at path. The engine must be closed
// first; Destroy on a live database corrupts it.
func Destroy(path string) error {
	if path == "" {
		return fmt.Errorf("destroy: empty path")
	}
	return os.RemoveAll(path)
}
