// Package database defines the interface the chain's persistent stores
// are accessed through. The concrete driver lives in the ldb subpackage.
package database

// DataAccessor defines the common interface by which data gets accessed,
// whether directly against the database or within a transaction.
type DataAccessor interface {
	// Put sets the value for the given key. It overwrites any previous
	// value for that key.
	Put(key *Key, value []byte) error

	// Get gets the value for the given key. It returns ErrNotFound if
	// the given key does not exist.
	Get(key *Key) ([]byte, error)

	// Has returns true if the database contains the given key.
	Has(key *Key) (bool, error)

	// Delete deletes the value for the given key. It does not return an
	// error if the key doesn't exist.
	Delete(key *Key) error

	// Cursor begins a new cursor over the given bucket.
	Cursor(bucket *Bucket) (Cursor, error)
}

// Database defines the interface of a database that can begin
// transactions and be closed.
type Database interface {
	DataAccessor

	// Begin begins a new database transaction.
	Begin() (Transaction, error)

	// Close closes the database.
	Close() error
}

// Transaction defines the interface of a generic database transaction.
//
// Note: transactions provide data consistency over the state of the
// database as it was when the transaction started. There is NO guarantee
// that if one puts data into the transaction then it will be available to
// get within the same transaction.
type Transaction interface {
	DataAccessor

	// Rollback rolls back whatever changes were made to the database
	// within this transaction.
	Rollback() error

	// Commit commits whatever changes were made to the database within
	// this transaction.
	Commit() error

	// RollbackUnlessClosed rolls back changes that were made to the
	// database within the transaction, unless the transaction had
	// already been closed using either Rollback or Commit.
	RollbackUnlessClosed() error
}

// Cursor iterates over database entries given some bucket.
type Cursor interface {
	// Next moves the iterator to the next key/value pair. It returns
	// whether the iterator is exhausted.
	Next() bool

	// First moves the iterator to the first key/value pair. It returns
	// false if such a pair does not exist.
	First() bool

	// Seek moves the iterator to the first key/value pair whose key is
	// greater than or equal to the given key. It returns ErrNotFound if
	// such pair does not exist.
	Seek(key *Key) error

	// Key returns the key of the current key/value pair, or ErrNotFound
	// if done. Note that the key is trimmed to not include the prefix
	// the cursor was opened with.
	Key() (*Key, error)

	// Value returns the value of the current key/value pair, or
	// ErrNotFound if done.
	Value() ([]byte, error)

	// Close releases associated resources.
	Close() error
}
