package bench

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/sirupsen/logrus"
)

// PebbleIndex wraps a Pebble LSM store kept on an in-memory filesystem, so the comparison
// measures the engine rather than the disk.
type PebbleIndex struct {
	db *pebble.DB
}

// OpenPebble opens an empty store. Pebble's own messages go to log.
func OpenPebble(log *logrus.Entry) (*PebbleIndex, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	opts := &pebble.Options{
		FS:                          vfs.NewMem(),
		Logger:                      log,
		MemTableSize:                4 << 20,
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	}
	db, err := pebble.Open("", opts)
	if err != nil {
		return nil, errors.Wrap(err, "bench: open pebble")
	}
	return &PebbleIndex{db: db}, nil
}

func (p *PebbleIndex) Name() string { return "pebble" }

func (p *PebbleIndex) Put(key int64, value []byte) error {
	return errors.Wrap(p.db.Set(encodeKey(key), value, pebble.NoSync), "bench: pebble put")
}

func (p *PebbleIndex) Get(key int64) ([]byte, bool, error) {
	val, closer, err := p.db.Get(encodeKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "bench: pebble get")
	}
	// val is only valid until closer.Close()
	result := make([]byte, len(val))
	copy(result, val)
	return result, true, closer.Close()
}

func (p *PebbleIndex) Delete(key int64) error {
	return errors.Wrap(p.db.Delete(encodeKey(key), pebble.NoSync), "bench: pebble delete")
}

func (p *PebbleIndex) Scan(fn func(key int64, value []byte) bool) error {
	iter, err := p.db.NewIter(nil)
	if err != nil {
		return errors.Wrap(err, "bench: pebble scan")
	}
	for valid := iter.First(); valid; valid = iter.Next() {
		if len(iter.Key()) != 8 {
			_ = iter.Close()
			return errors.Newf("bench: unexpected key length %d", len(iter.Key()))
		}
		if !fn(decodeKey(iter.Key()), iter.Value()) {
			break
		}
	}
	return iter.Close()
}

func (p *PebbleIndex) Close() error {
	return p.db.Close()
}
