package ldb

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/handshake-org/hskd/database"
)

func prepareDatabaseForTest(t *testing.T) *LevelDB {
	t.Helper()
	ldb, err := NewLevelDBInMemory()
	if err != nil {
		t.Fatalf("NewLevelDBInMemory unexpectedly failed: %s", err)
	}
	t.Cleanup(func() {
		if err := ldb.Close(); err != nil {
			t.Fatalf("Close unexpectedly failed: %s", err)
		}
	})
	return ldb
}

func TestLevelDBSanity(t *testing.T) {
	ldb := prepareDatabaseForTest(t)

	key := database.MakeBucket([]byte("test")).Key([]byte("key"))
	value := []byte("value")

	if err := ldb.Put(key, value); err != nil {
		t.Fatalf("Put unexpectedly failed: %s", err)
	}
	returned, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("Get unexpectedly failed: %s", err)
	}
	if !bytes.Equal(returned, value) {
		t.Fatalf("Get returned wrong value. Want: %s, got: %s", value,
			returned)
	}

	exists, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("Has unexpectedly failed: %s", err)
	}
	if !exists {
		t.Fatal("Has returned false for an existing key")
	}

	if err := ldb.Delete(key); err != nil {
		t.Fatalf("Delete unexpectedly failed: %s", err)
	}
	_, err = ldb.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("Get after delete: want ErrNotFound, got: %v", err)
	}
}

func TestLevelDBTransactionSanity(t *testing.T) {
	ldb := prepareDatabaseForTest(t)
	key := database.MakeBucket([]byte("test")).Key([]byte("key"))
	value := []byte("value")

	// Case 1: put without commit and make sure the database does not
	// change.
	tx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("Begin unexpectedly failed: %s", err)
	}
	if err := tx.Put(key, value); err != nil {
		t.Fatalf("Put unexpectedly failed: %s", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback unexpectedly failed: %s", err)
	}
	if exists, _ := ldb.Has(key); exists {
		t.Fatal("rolled back put leaked into the database")
	}

	// Case 2: put and commit and make sure it sticks.
	tx, err = ldb.Begin()
	if err != nil {
		t.Fatalf("Begin unexpectedly failed: %s", err)
	}
	if err := tx.Put(key, value); err != nil {
		t.Fatalf("Put unexpectedly failed: %s", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit unexpectedly failed: %s", err)
	}
	returned, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("Get unexpectedly failed: %s", err)
	}
	if !bytes.Equal(returned, value) {
		t.Fatalf("Get returned wrong value. Want: %s, got: %s", value,
			returned)
	}

	// A closed transaction rejects further operations.
	if err := tx.Put(key, value); err == nil {
		t.Fatal("Put on a committed transaction unexpectedly succeeded")
	}
	if err := tx.RollbackUnlessClosed(); err != nil {
		t.Fatalf("RollbackUnlessClosed unexpectedly failed: %s", err)
	}
}

func TestCursorSanity(t *testing.T) {
	ldb := prepareDatabaseForTest(t)

	bucket := database.MakeBucket([]byte("cursor"))
	other := database.MakeBucket([]byte("other"))
	for i := 0; i < 5; i++ {
		suffix := []byte(fmt.Sprintf("key%d", i))
		err := ldb.Put(bucket.Key(suffix), []byte(fmt.Sprintf("value%d", i)))
		if err != nil {
			t.Fatalf("Put unexpectedly failed: %s", err)
		}
	}
	// A neighboring bucket must stay invisible to the cursor.
	if err := ldb.Put(other.Key([]byte("stray")), []byte("x")); err != nil {
		t.Fatalf("Put unexpectedly failed: %s", err)
	}

	cursor, err := ldb.Cursor(bucket)
	if err != nil {
		t.Fatalf("Cursor unexpectedly failed: %s", err)
	}
	defer cursor.Close()

	count := 0
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key unexpectedly failed: %s", err)
		}
		wantSuffix := []byte(fmt.Sprintf("key%d", count))
		if !bytes.Equal(key.Suffix(), wantSuffix) {
			t.Fatalf("Key returned wrong suffix. Want: %s, got: %s",
				wantSuffix, key.Suffix())
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("Value unexpectedly failed: %s", err)
		}
		wantValue := []byte(fmt.Sprintf("value%d", count))
		if !bytes.Equal(value, wantValue) {
			t.Fatalf("Value returned wrong value. Want: %s, got: %s",
				wantValue, value)
		}
		count++
	}
	if count != 5 {
		t.Fatalf("cursor visited %d pairs, want 5", count)
	}
}
