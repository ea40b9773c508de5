package naming

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// UndoEntry is the prior state of one auction record. A nil Prior means
// the record did not exist before the block, so rolling back deletes it.
type UndoEntry struct {
	NameHash hash.Hash
	Prior    *Auction
}

// UndoLog records, in touch order, the prior state of every auction a
// block mutated. Replaying the entries in reverse restores the store to
// its pre-block state. Undo logs are persisted alongside each block so a
// reorg can always walk back to the fork point.
type UndoLog struct {
	Entries []UndoEntry
}

// NewUndoLog returns an empty undo log.
func NewUndoLog() *UndoLog {
	return &UndoLog{}
}

// record captures the prior state of a name the first time a view touches
// it. Later touches of the same name in the same block are already
// covered by the first capture.
func (u *UndoLog) record(nameHash *hash.Hash, prior *Auction) {
	entry := UndoEntry{NameHash: *nameHash}
	if prior != nil {
		entry.Prior = prior.Clone()
	}
	u.Entries = append(u.Entries, entry)
}

// Serialize encodes the undo log into w.
func (u *UndoLog) Serialize(w io.Writer) error {
	err := wire.WriteVarInt(w, uint64(len(u.Entries)))
	if err != nil {
		return err
	}
	for i := range u.Entries {
		entry := &u.Entries[i]
		err = wire.WriteElement(w, &entry.NameHash)
		if err != nil {
			return err
		}
		if entry.Prior == nil {
			err = wire.WriteElement(w, uint8(0))
			if err != nil {
				return err
			}
			continue
		}
		err = wire.WriteElement(w, uint8(1))
		if err != nil {
			return err
		}
		err = entry.Prior.Serialize(w)
		if err != nil {
			return err
		}
	}
	return nil
}

// Deserialize decodes an undo log from r.
func (u *UndoLog) Deserialize(r io.Reader) error {
	count, err := wire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxUndoEntries {
		return errors.Errorf("too many undo entries: %d", count)
	}
	u.Entries = nil
	for i := uint64(0); i < count; i++ {
		var entry UndoEntry
		var exists uint8
		err = wire.ReadElements(r, &entry.NameHash, &exists)
		if err != nil {
			return err
		}
		if exists != 0 {
			entry.Prior = &Auction{}
			err = entry.Prior.Deserialize(r)
			if err != nil {
				return err
			}
		}
		u.Entries = append(u.Entries, entry)
	}
	return nil
}

// Bytes returns the serialized undo log.
func (u *UndoLog) Bytes() []byte {
	var buf bytes.Buffer
	_ = u.Serialize(&buf)
	return buf.Bytes()
}

// maxUndoEntries bounds deserialization. A block cannot touch more names
// than it has covenant outputs.
const maxUndoEntries = 1 << 20
