package kv

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/logging"
	"github.com/polystake/noderegistry/storage/basedb"
)

const (
	// TypeBadger is the default on-disk engine.
	TypeBadger = "badger"
	// TypeBadgerMemory keeps everything in memory, for tests.
	TypeBadgerMemory = "badger-memory"
	// TypePebble is the alternative LSM engine.
	TypePebble = "pebble"

	reportingInterval = time.Minute
)

// New creates a database of the engine selected by options.Type.
func New(logger *zap.Logger, options basedb.Options) (basedb.Database, error) {
	switch options.Type {
	case TypeBadgerMemory:
		return NewInMemory(logger, options)
	case TypePebble:
		return NewPebble(logger, options)
	case TypeBadger, "":
		return NewBadger(logger, options)
	default:
		return nil, errors.Errorf("unknown database type %q", options.Type)
	}
}

var _ basedb.Database = &BadgerDB{}
var _ basedb.GarbageCollector = &BadgerDB{}

// BadgerDB implements basedb.Database over a badger instance.
type BadgerDB struct {
	logger *zap.Logger

	db     *badger.DB
	ctx    context.Context
	cancel context.CancelFunc

	gcMutex sync.Mutex
	wg      sync.WaitGroup
}

// NewBadger opens (creating if needed) an on-disk badger database.
func NewBadger(logger *zap.Logger, options basedb.Options) (*BadgerDB, error) {
	return createDB(logger, options, false)
}

// NewInMemory creates an in-memory badger instance, used in tests.
func NewInMemory(logger *zap.Logger, options basedb.Options) (*BadgerDB, error) {
	return createDB(logger, options, true)
}

func createDB(logger *zap.Logger, options basedb.Options, inMemory bool) (*BadgerDB, error) {
	opt := badger.DefaultOptions(options.Path)
	if inMemory {
		opt.InMemory = true
		opt.Dir = ""
		opt.ValueDir = ""
	}
	opt.Logger = newBadgerLogger(logger.Named(logging.NameBadgerDBLog))

	db, err := badger.Open(opt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open badger")
	}

	parentCtx := options.Ctx
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	badgerDB := &BadgerDB{
		logger: logger,
		db:     db,
		ctx:    ctx,
		cancel: cancel,
	}

	if options.GCInterval > 0 {
		badgerDB.wg.Add(1)
		go badgerDB.periodicallyCollectGarbage(options.GCInterval)
	}
	if options.Reporting {
		badgerDB.wg.Add(1)
		go badgerDB.periodicallyReport(reportingInterval)
	}

	return badgerDB, nil
}

// Begin opens a read-write transaction.
func (b *BadgerDB) Begin() basedb.Txn {
	return newTxn(b.db.NewTransaction(true), b)
}

// BeginRead opens a read-only transaction.
func (b *BadgerDB) BeginRead() basedb.ReadTxn {
	return newTxn(b.db.NewTransaction(false), b)
}

// Using returns rw if non-nil, the database itself otherwise, so collection
// methods run either inside a caller-owned transaction or standalone.
func (b *BadgerDB) Using(rw basedb.ReadWriter) basedb.ReadWriter {
	if rw == nil {
		return b
	}
	return rw
}

// UsingReader returns r if non-nil, the database itself otherwise.
func (b *BadgerDB) UsingReader(r basedb.Reader) basedb.Reader {
	if r == nil {
		return b
	}
	return r
}

// Set saves value with key under prefix.
func (b *BadgerDB) Set(prefix []byte, key []byte, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(append(prefix, key...), value)
	})
}

// SetMany saves n items produced by next in a single transaction.
func (b *BadgerDB) SetMany(prefix []byte, n int, next func(int) (basedb.Obj, error)) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for i := 0; i < n; i++ {
			item, err := next(i)
			if err != nil {
				return err
			}
			if err := txn.Set(append(prefix, item.Key...), item.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the value for key under prefix, with found=false when absent.
func (b *BadgerDB) Get(prefix []byte, key []byte) (basedb.Obj, bool, error) {
	var resValue []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(append(prefix, key...))
		if err != nil {
			return err
		}
		resValue, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return basedb.Obj{}, false, nil
	}
	if err != nil {
		return basedb.Obj{}, true, err
	}
	return basedb.Obj{
		Key:   key,
		Value: resValue,
	}, true, nil
}

// GetMany calls iterator for every existing key of keys; missing keys are skipped.
func (b *BadgerDB) GetMany(prefix []byte, keys [][]byte, iterator func(basedb.Obj) error) error {
	if len(keys) == 0 {
		return nil
	}
	return b.db.View(b.manyGetter(prefix, keys, iterator))
}

// GetAll iterates every entry under prefix in key order.
func (b *BadgerDB) GetAll(prefix []byte, handler func(int, basedb.Obj) error) error {
	return b.db.View(b.allGetter(prefix, handler))
}

// CountPrefix returns the number of entries under prefix.
func (b *BadgerDB) CountPrefix(prefix []byte) (int64, error) {
	var res int64
	err := b.db.View(func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.Prefix = prefix
		opt.PrefetchValues = false
		it := txn.NewIterator(opt)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			res++
		}
		return nil
	})
	return res, err
}

// DropPrefix deletes every entry under prefix.
func (b *BadgerDB) DropPrefix(prefix []byte) error {
	return b.db.DropPrefix(prefix)
}

// Delete removes key under prefix.
func (b *BadgerDB) Delete(prefix []byte, key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(append(prefix, key...))
	})
}

// Update runs fn inside a managed read-write transaction.
func (b *BadgerDB) Update(fn func(basedb.Txn) error) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return fn(newTxn(txn, b))
	})
}

// Close stops background routines and closes the underlying database.
func (b *BadgerDB) Close() error {
	b.cancel()
	b.wg.Wait()
	if err := b.db.Close(); err != nil {
		b.logger.Fatal("failed to close badger", zap.Error(err))
	}
	return nil
}

func (b *BadgerDB) manyGetter(prefix []byte, keys [][]byte, iterator func(basedb.Obj) error) func(*badger.Txn) error {
	return func(txn *badger.Txn) error {
		var value, cp []byte
		for _, k := range keys {
			item, err := txn.Get(append(prefix, k...))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return errors.Wrap(err, "failed to get value")
			}
			value, err = item.ValueCopy(value)
			if err != nil {
				return errors.Wrap(err, "failed to copy value")
			}
			cp = make([]byte, len(value))
			copy(cp, value)
			if err := iterator(basedb.Obj{
				Key:   k,
				Value: cp,
			}); err != nil {
				return err
			}
		}
		return nil
	}
}

func (b *BadgerDB) allGetter(prefix []byte, handler func(int, basedb.Obj) error) func(*badger.Txn) error {
	return func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.Prefix = prefix
		it := txn.NewIterator(opt)
		defer it.Close()
		i := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return errors.Wrap(err, "failed to copy value")
			}
			key := item.KeyCopy(nil)[len(prefix):]
			if err := handler(i, basedb.Obj{
				Key:   key,
				Value: val,
			}); err != nil {
				return err
			}
			i++
		}
		return nil
	}
}

// periodicallyReport logs the database size until the context is done.
func (b *BadgerDB) periodicallyReport(interval time.Duration) {
	defer b.wg.Done()
	logger := b.logger.Named(logging.NameBadgerDBReporting)
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-time.After(interval):
			lsm, vlog := b.db.Size()
			logger.Debug("badger size report",
				zap.Int64("lsm_bytes", lsm),
				zap.Int64("vlog_bytes", vlog))
		}
	}
}
