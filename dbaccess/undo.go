package dbaccess

import (
	"github.com/handshake-org/hskd/database"
	"github.com/handshake-org/hskd/util/hash"
)

var undoBucket = database.MakeBucket([]byte("undo"))

func undoKey(blockHash *hash.Hash) *database.Key {
	return undoBucket.Key(blockHash[:])
}

// StoreUndo stores the serialized undo log of the given block hash.
func StoreUndo(context Context, blockHash *hash.Hash, undoBytes []byte) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Put(undoKey(blockHash), undoBytes)
}

// FetchUndo returns the serialized undo log of the given block hash. Returns
// found=false if the block was connected without changing any name.
func FetchUndo(context Context, blockHash *hash.Hash) (undoBytes []byte, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}
	undoBytes, err = accessor.Get(undoKey(blockHash))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return undoBytes, true, nil
}

// DeleteUndo removes the undo log of the given block hash.
func DeleteUndo(context Context, blockHash *hash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(undoKey(blockHash))
}
