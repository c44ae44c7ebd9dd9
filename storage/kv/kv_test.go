package kv

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polystake/noderegistry/logging"
	"github.com/polystake/noderegistry/storage/basedb"
)

func uInt64ToByteSlice(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}

func setupEngines(t *testing.T) map[string]basedb.Database {
	logger := logging.TestLogger(t)

	badgerDB, err := NewInMemory(logger, basedb.Options{})
	require.NoError(t, err)

	pebbleDB, err := NewPebble(logger, basedb.Options{Path: t.TempDir()})
	require.NoError(t, err)

	dbs := map[string]basedb.Database{
		TypeBadgerMemory: badgerDB,
		TypePebble:       pebbleDB,
	}
	t.Cleanup(func() {
		for _, db := range dbs {
			require.NoError(t, db.Close())
		}
	})
	return dbs
}

func TestNewDispatch(t *testing.T) {
	logger := logging.TestLogger(t)

	db, err := New(logger, basedb.Options{Type: TypeBadgerMemory})
	require.NoError(t, err)
	require.IsType(t, &BadgerDB{}, db)
	require.NoError(t, db.Close())

	db, err = New(logger, basedb.Options{Type: TypePebble, Path: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &PebbleDB{}, db)
	require.NoError(t, db.Close())

	_, err = New(logger, basedb.Options{Type: "bolt"})
	require.Error(t, err)
}

func TestSetGetDelete(t *testing.T) {
	prefix := []byte("prefix/")
	for name, db := range setupEngines(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Set(prefix, []byte("k1"), []byte("v1")))

			obj, found, err := db.Get(prefix, []byte("k1"))
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, []byte("v1"), obj.Value)

			_, found, err = db.Get(prefix, []byte("missing"))
			require.NoError(t, err)
			require.False(t, found)

			require.NoError(t, db.Delete(prefix, []byte("k1")))
			_, found, err = db.Get(prefix, []byte("k1"))
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}

func TestSetManyGetMany(t *testing.T) {
	prefix := []byte("many/")
	for name, db := range setupEngines(t) {
		t.Run(name, func(t *testing.T) {
			var values [][]byte
			err := db.SetMany(prefix, 10, func(i int) (basedb.Obj, error) {
				seq := uint64(i + 1)
				values = append(values, uInt64ToByteSlice(seq))
				return basedb.Obj{Key: uInt64ToByteSlice(seq), Value: uInt64ToByteSlice(seq)}, nil
			})
			require.NoError(t, err)

			keys := [][]byte{
				uInt64ToByteSlice(1),
				uInt64ToByteSlice(5),
				uInt64ToByteSlice(42), // missing, skipped
			}
			var got [][]byte
			err = db.GetMany(prefix, keys, func(obj basedb.Obj) error {
				got = append(got, obj.Value)
				return nil
			})
			require.NoError(t, err)
			require.Len(t, got, 2)
			require.True(t, bytes.Equal(got[0], values[0]))
			require.True(t, bytes.Equal(got[1], values[4]))
		})
	}
}

func TestGetAllCountDrop(t *testing.T) {
	prefix := []byte("all/")
	other := []byte("other/")
	for name, db := range setupEngines(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				key := []byte(fmt.Sprintf("k%d", i))
				require.NoError(t, db.Set(prefix, key, uInt64ToByteSlice(uint64(i))))
			}
			require.NoError(t, db.Set(other, []byte("x"), []byte("y")))

			visited := 0
			err := db.GetAll(prefix, func(i int, obj basedb.Obj) error {
				require.NotContains(t, string(obj.Key), "all/")
				visited++
				return nil
			})
			require.NoError(t, err)
			require.Equal(t, 5, visited)

			n, err := db.CountPrefix(prefix)
			require.NoError(t, err)
			require.Equal(t, int64(5), n)

			require.NoError(t, db.DropPrefix(prefix))
			n, err = db.CountPrefix(prefix)
			require.NoError(t, err)
			require.Equal(t, int64(0), n)

			// untouched by the drop
			n, err = db.CountPrefix(other)
			require.NoError(t, err)
			require.Equal(t, int64(1), n)
		})
	}
}

func TestTxnCommitDiscard(t *testing.T) {
	prefix := []byte("txn/")
	for name, db := range setupEngines(t) {
		t.Run(name, func(t *testing.T) {
			txn := db.Begin()
			require.NoError(t, txn.Set(prefix, []byte("k"), []byte("v")))

			// read-your-writes inside the transaction
			obj, found, err := txn.Get(prefix, []byte("k"))
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, []byte("v"), obj.Value)
			txn.Discard()

			_, found, err = db.Get(prefix, []byte("k"))
			require.NoError(t, err)
			require.False(t, found)

			txn = db.Begin()
			require.NoError(t, txn.Set(prefix, []byte("k"), []byte("v")))
			require.NoError(t, txn.Commit())

			_, found, err = db.Get(prefix, []byte("k"))
			require.NoError(t, err)
			require.True(t, found)
		})
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	prefix := []byte("upd/")
	for name, db := range setupEngines(t) {
		t.Run(name, func(t *testing.T) {
			err := db.Update(func(txn basedb.Txn) error {
				if err := txn.Set(prefix, []byte("k"), []byte("v")); err != nil {
					return err
				}
				return fmt.Errorf("boom")
			})
			require.Error(t, err)

			_, found, err := db.Get(prefix, []byte("k"))
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}

func TestBeginReadSnapshot(t *testing.T) {
	prefix := []byte("snap/")
	for name, db := range setupEngines(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Set(prefix, []byte("k1"), []byte("v1")))

			rtxn := db.BeginRead()
			defer rtxn.Discard()

			require.NoError(t, db.Set(prefix, []byte("k2"), []byte("v2")))

			_, found, err := rtxn.Get(prefix, []byte("k1"))
			require.NoError(t, err)
			require.True(t, found)

			// written after the snapshot was taken
			_, found, err = rtxn.Get(prefix, []byte("k2"))
			require.NoError(t, err)
			require.False(t, found)
		})
	}
}

func TestGC(t *testing.T) {
	logger := logging.TestLogger(t)
	db, err := NewBadger(logger, basedb.Options{Path: t.TempDir()})
	require.NoError(t, err)
	defer db.Close()

	prefix := []byte("gc/")
	var values [][]byte
	err = db.SetMany(prefix, 10, func(i int) (basedb.Obj, error) {
		seq := uint64(i + 1)
		values = append(values, uInt64ToByteSlice(seq))
		return basedb.Obj{Key: uInt64ToByteSlice(seq), Value: uInt64ToByteSlice(seq)}, nil
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		seq := uint64(i + 1)
		obj, found, err := db.Get(prefix, uInt64ToByteSlice(seq))
		require.NoError(t, err, "should find item %d", i)
		require.True(t, found, "should find item %d", i)
		require.True(t, bytes.Equal(obj.Value, values[i]), "item %d wrong value", i)
	}

	require.NoError(t, db.QuickGC(db.ctx))
	require.NoError(t, db.FullGC(db.ctx))
}
