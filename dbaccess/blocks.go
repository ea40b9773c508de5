package dbaccess

import (
	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/database"
	"github.com/handshake-org/hskd/util/hash"
)

var blocksBucket = database.MakeBucket([]byte("blocks"))

func blockKey(blockHash *hash.Hash) *database.Key {
	return blocksBucket.Key(blockHash[:])
}

// StoreBlock stores the given serialized block in the database.
func StoreBlock(context Context, blockHash *hash.Hash, blockBytes []byte) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}

	// Make sure that the block does not already exist.
	exists, err := HasBlock(context, blockHash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("block %s already exists", blockHash)
	}

	return accessor.Put(blockKey(blockHash), blockBytes)
}

// HasBlock returns whether the block of the given hash has been previously
// inserted into the database.
func HasBlock(context Context, blockHash *hash.Hash) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}
	return accessor.Has(blockKey(blockHash))
}

// FetchBlock returns the serialized block of the given hash. Returns
// found=false if the block had not been previously inserted into the
// database.
func FetchBlock(context Context, blockHash *hash.Hash) (blockBytes []byte, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}
	blockBytes, err = accessor.Get(blockKey(blockHash))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blockBytes, true, nil
}
