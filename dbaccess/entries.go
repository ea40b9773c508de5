package dbaccess

import (
	"encoding/binary"

	"github.com/handshake-org/hskd/database"
	"github.com/handshake-org/hskd/util/hash"
)

var (
	entriesBucket = database.MakeBucket([]byte("entries"))
	chainBucket   = database.MakeBucket([]byte("chain"))
	tipKey        = database.MakeBucket().Key([]byte("tip"))
)

func entryKey(blockHash *hash.Hash) *database.Key {
	return entriesBucket.Key(blockHash[:])
}

func chainKey(height uint32) *database.Key {
	var suffix [4]byte
	binary.BigEndian.PutUint32(suffix[:], height)
	return chainBucket.Key(suffix[:])
}

// StoreEntry stores the serialized chain entry of the given block hash.
func StoreEntry(context Context, blockHash *hash.Hash, entryBytes []byte) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Put(entryKey(blockHash), entryBytes)
}

// FetchEntry returns the serialized chain entry of the given block hash.
// Returns found=false if no entry with that hash had been stored.
func FetchEntry(context Context, blockHash *hash.Hash) (entryBytes []byte, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}
	entryBytes, err = accessor.Get(entryKey(blockHash))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entryBytes, true, nil
}

// HasEntry returns whether a chain entry with the given block hash has been
// stored.
func HasEntry(context Context, blockHash *hash.Hash) (bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return false, err
	}
	return accessor.Has(entryKey(blockHash))
}

// EntriesCursor opens a cursor over all stored chain entries.
func EntriesCursor(context Context) (database.Cursor, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}
	return accessor.Cursor(entriesBucket)
}

// StoreChainHash records the given block hash as the main-chain block at the
// given height.
func StoreChainHash(context Context, height uint32, blockHash *hash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Put(chainKey(height), blockHash[:])
}

// FetchChainHash returns the main-chain block hash at the given height.
// Returns found=false if the height is above the stored tip.
func FetchChainHash(context Context, height uint32) (*hash.Hash, bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}
	hashBytes, err := accessor.Get(chainKey(height))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	blockHash, err := hash.NewHash(hashBytes)
	if err != nil {
		return nil, false, err
	}
	return blockHash, true, nil
}

// DeleteChainHash removes the main-chain mapping at the given height. Used
// when the chain is rolled back past that height.
func DeleteChainHash(context Context, height uint32) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(chainKey(height))
}

// StoreTip records the given block hash and height as the current chain tip.
func StoreTip(context Context, blockHash *hash.Hash, height uint32) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	serialized := make([]byte, hash.Size+4)
	copy(serialized, blockHash[:])
	binary.BigEndian.PutUint32(serialized[hash.Size:], height)
	return accessor.Put(tipKey, serialized)
}

// FetchTip returns the current chain tip hash and height. Returns found=false
// on a fresh database.
func FetchTip(context Context) (*hash.Hash, uint32, bool, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, 0, false, err
	}
	serialized, err := accessor.Get(tipKey)
	if database.IsNotFoundError(err) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	blockHash, err := hash.NewHash(serialized[:hash.Size])
	if err != nil {
		return nil, 0, false, err
	}
	height := binary.BigEndian.Uint32(serialized[hash.Size:])
	return blockHash, height, true, nil
}
