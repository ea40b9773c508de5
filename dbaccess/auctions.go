package dbaccess

import (
	"github.com/handshake-org/hskd/database"
	"github.com/handshake-org/hskd/util/hash"
)

var auctionsBucket = database.MakeBucket([]byte("auctions"))

func auctionKey(nameHash *hash.Hash) *database.Key {
	return auctionsBucket.Key(nameHash[:])
}

// StoreAuction stores the serialized auction record under its name hash.
func StoreAuction(context Context, nameHash *hash.Hash, auctionBytes []byte) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Put(auctionKey(nameHash), auctionBytes)
}

// FetchAuction returns the serialized auction record of the given name hash.
// Returns found=false if no record exists, which means the name is in its
// null state.
func FetchAuction(context Context, nameHash *hash.Hash) (auctionBytes []byte, found bool, err error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, false, err
	}
	auctionBytes, err = accessor.Get(auctionKey(nameHash))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return auctionBytes, true, nil
}

// DeleteAuction removes the auction record of the given name hash, returning
// the name to its null state.
func DeleteAuction(context Context, nameHash *hash.Hash) error {
	accessor, err := context.accessor()
	if err != nil {
		return err
	}
	return accessor.Delete(auctionKey(nameHash))
}

// AuctionsCursor opens a cursor over all stored auction records. The cursor
// key suffix is the name hash. Used to rebuild the in-memory name set on
// startup.
func AuctionsCursor(context Context) (database.Cursor, error) {
	accessor, err := context.accessor()
	if err != nil {
		return nil, err
	}
	return accessor.Cursor(auctionsBucket)
}
