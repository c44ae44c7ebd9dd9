package kv

import (
	"context"
	"errors"
	"io"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/logging"
	"github.com/polystake/noderegistry/storage/basedb"
)

var _ basedb.Database = &PebbleDB{}
var _ basedb.GarbageCollector = &PebbleDB{}

// PebbleDB implements basedb.Database over a pebble instance.
type PebbleDB struct {
	logger *zap.Logger
	db     *pebble.DB
}

// NewPebble opens (creating if needed) an on-disk pebble database.
func NewPebble(logger *zap.Logger, options basedb.Options) (*PebbleDB, error) {
	db, err := pebble.Open(options.Path, &pebble.Options{
		Logger: newPebbleLogger(logger.Named(logging.NamePebbleDBLog)),
	})
	if err != nil {
		return nil, err
	}
	return &PebbleDB{
		logger: logger,
		db:     db,
	}, nil
}

func (pdb *PebbleDB) Begin() basedb.Txn {
	return newPebbleTxn(pdb.db.NewIndexedBatch(), pdb)
}

func (pdb *PebbleDB) BeginRead() basedb.ReadTxn {
	return newPebbleReadTxn(pdb.db.NewSnapshot(), pdb)
}

func (pdb *PebbleDB) Using(rw basedb.ReadWriter) basedb.ReadWriter {
	if rw == nil {
		return pdb
	}
	return rw
}

func (pdb *PebbleDB) UsingReader(r basedb.Reader) basedb.Reader {
	if r == nil {
		return pdb
	}
	return r
}

func (pdb *PebbleDB) Set(prefix, key, value []byte) error {
	return pdb.db.Set(append(prefix, key...), value, pebble.Sync)
}

func (pdb *PebbleDB) SetMany(prefix []byte, n int, next func(int) (basedb.Obj, error)) error {
	batch := pdb.db.NewBatch()
	txn := &pebbleTxn{batch: batch, db: pdb}
	if err := txn.SetMany(prefix, n, next); err != nil {
		_ = batch.Close()
		return err
	}
	return batch.Commit(pebble.Sync)
}

func (pdb *PebbleDB) Get(prefix []byte, key []byte) (basedb.Obj, bool, error) {
	return pebbleGetter(key, func(key []byte) ([]byte, io.Closer, error) {
		return pdb.db.Get(append(prefix, key...))
	})
}

func (pdb *PebbleDB) GetMany(prefix []byte, keys [][]byte, iterator func(basedb.Obj) error) error {
	return pebbleManyGetter(prefix, keys, pdb.db.Get, iterator)
}

func (pdb *PebbleDB) GetAll(prefix []byte, handler func(int, basedb.Obj) error) error {
	iter, err := makePrefixIter(pdb.db, prefix)
	if err != nil {
		return err
	}
	defer func() { _ = iter.Close() }()

	return pebbleAllGetter(iter, prefix, handler)
}

func (pdb *PebbleDB) Delete(prefix, key []byte) error {
	return pdb.db.Delete(append(prefix, key...), pebble.Sync)
}

func (pdb *PebbleDB) CountPrefix(prefix []byte) (int64, error) {
	iter, err := makePrefixIter(pdb.db, prefix)
	if err != nil {
		return 0, err
	}
	defer func() { _ = iter.Close() }()

	count := int64(0)
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	return count, nil
}

func (pdb *PebbleDB) DropPrefix(prefix []byte) error {
	batch := pdb.db.NewBatch()
	iter, err := makePrefixIter(pdb.db, prefix)
	if err != nil {
		return err
	}
	defer func() {
		_ = iter.Close()
		_ = batch.Close()
	}()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := batch.Delete(iter.Key(), nil); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

func (pdb *PebbleDB) Update(fn func(basedb.Txn) error) error {
	batch := pdb.db.NewIndexedBatch()
	txn := newPebbleTxn(batch, pdb)
	if err := fn(txn); err != nil {
		_ = batch.Close()
		return err
	}
	return batch.Commit(pebble.Sync)
}

// QuickGC is a no-op: pebble compacts in the background on its own.
func (pdb *PebbleDB) QuickGC(context.Context) error {
	return nil
}

// FullGC compacts the whole key range.
func (pdb *PebbleDB) FullGC(context.Context) error {
	iter, err := pdb.db.NewIter(nil)
	if err != nil {
		return err
	}

	var first, last []byte
	if iter.First() {
		first = append(first, iter.Key()...)
	}
	if iter.Last() {
		last = append(last, iter.Key()...)
	}
	if err := iter.Close(); err != nil {
		return err
	}
	if first == nil || last == nil {
		return nil
	}

	return pdb.db.Compact(first, last, true)
}

func (pdb *PebbleDB) Close() error {
	return pdb.db.Close()
}

func makePrefixIter(dbOrBatch pebble.Reader, prefix []byte) (*pebble.Iterator, error) {
	keyUpperBound := func(b []byte) []byte {
		end := make([]byte, len(b))
		copy(end, b)
		for i := len(end) - 1; i >= 0; i-- {
			end[i] = end[i] + 1
			if end[i] != 0 {
				return end[:i+1]
			}
		}
		return nil // no upper-bound
	}

	return dbOrBatch.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
}

func pebbleGetter(key []byte, get func([]byte) ([]byte, io.Closer, error)) (basedb.Obj, bool, error) {
	value, closer, err := get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return basedb.Obj{}, false, nil
		}
		return basedb.Obj{}, true, err
	}

	valCopy := make([]byte, len(value))
	copy(valCopy, value)
	if err := closer.Close(); err != nil {
		return basedb.Obj{}, true, err
	}
	return basedb.Obj{
		Key:   key,
		Value: valCopy,
	}, true, nil
}

func pebbleManyGetter(prefix []byte, keys [][]byte, get func([]byte) ([]byte, io.Closer, error), iterator func(basedb.Obj) error) error {
	for _, key := range keys {
		value, closer, err := get(append(prefix, key...))
		if err != nil {
			if errors.Is(err, pebble.ErrNotFound) {
				continue
			}
			return err
		}

		valCopy := make([]byte, len(value))
		copy(valCopy, value)
		if err := closer.Close(); err != nil {
			return err
		}
		if err := iterator(basedb.Obj{
			Key:   key,
			Value: valCopy,
		}); err != nil {
			return err
		}
	}
	return nil
}

func pebbleAllGetter(iter *pebble.Iterator, prefix []byte, handler func(int, basedb.Obj) error) error {
	i := 0
	for iter.First(); iter.Valid(); iter.Next() {
		v, err := iter.ValueAndErr()
		if err != nil {
			return err
		}

		key := make([]byte, len(iter.Key())-len(prefix))
		copy(key, iter.Key()[len(prefix):])

		val := make([]byte, len(v))
		copy(val, v)

		if err := handler(i, basedb.Obj{
			Key:   key,
			Value: val,
		}); err != nil {
			return err
		}
		i++
	}
	return iter.Error()
}
