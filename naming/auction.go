// Package naming implements the name-auction state machine.
//
// Every name on the chain is tracked by a single Auction record keyed by
// the blake2b hash of the name. Covenants carried on transaction outputs
// drive the record through a first-price-sealed-bid auction where the
// winner pays the second-highest revealed bid, and afterwards through the
// ownership operations of a registered name.
package naming

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/consensus"
	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// AuctionState is the lifecycle phase of a name auction.
type AuctionState uint8

// Auction lifecycle states. A name with no record at all is implicitly in
// StateNone.
const (
	StateNone AuctionState = iota
	StateBidding
	StateReveal
	StateClosed
	StateRenewed
	StateRevoked
)

var auctionStateStrings = map[AuctionState]string{
	StateNone:    "NONE",
	StateBidding: "BIDDING",
	StateReveal:  "REVEAL",
	StateClosed:  "CLOSED",
	StateRenewed: "RENEWED",
	StateRevoked: "REVOKED",
}

func (s AuctionState) String() string {
	if str, ok := auctionStateStrings[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Bid is one sealed bid recorded during the bidding phase. The true value
// stays hidden behind the blind until the reveal phase.
type Bid struct {
	Blind    hash.Hash
	Lockup   util.Amount
	Owner    wire.OutPoint
	Revealed bool
	Redeemed bool
	Value    util.Amount
}

// Transfer is a pending two-phase ownership change. The new address takes
// effect only when a FINALIZE lands after the lockup delay.
type Transfer struct {
	Height  uint32
	Address util.Address
}

// Auction is the per-name consensus record.
//
// Value and Highest track the top two revealed bids: Highest is the best
// bid seen and names the provisional winner, Value is the runner-up price
// the winner actually pays. Renewal is the height of the last event that
// reset the expiry clock.
type Auction struct {
	NameHash hash.Hash
	Name     []byte
	Height   uint32
	Renewal  uint32
	Owner    wire.OutPoint
	Value    util.Amount
	Highest  util.Amount
	Data     []byte
	State    AuctionState
	Bids     []Bid
	Transfer *Transfer
}

// NewAuction returns an empty record for the given name.
func NewAuction(name []byte) *Auction {
	return &Auction{
		NameHash: hash.HashB(name),
		Name:     append([]byte(nil), name...),
	}
}

// Clone returns a deep copy of the auction.
func (a *Auction) Clone() *Auction {
	clone := *a
	clone.Name = append([]byte(nil), a.Name...)
	clone.Data = append([]byte(nil), a.Data...)
	clone.Bids = append([]Bid(nil), a.Bids...)
	if a.Transfer != nil {
		transfer := *a.Transfer
		transfer.Address = *a.Transfer.Address.Clone()
		clone.Transfer = &transfer
	}
	return &clone
}

// isOwned reports whether the record is in a state with a live owner.
func (a *Auction) isOwned() bool {
	return a.State == StateClosed || a.State == StateRenewed
}

// isExpired reports whether the renewal clock has lapsed at the given
// height. Settled and revoked names run the clock from their last renewal;
// an auction abandoned in BIDDING or REVEAL runs it from the height that
// opened it, so an unsettled name eventually becomes biddable again.
func (a *Auction) isExpired(height uint32, expireWindow uint32) bool {
	switch a.State {
	case StateBidding, StateReveal, StateClosed, StateRenewed, StateRevoked:
		return height-a.Renewal >= expireWindow
	}
	return false
}

// reset returns the record to the untouched state while keeping its name,
// making the name biddable again after expiry.
func (a *Auction) reset() {
	name := a.Name
	nameHash := a.NameHash
	*a = Auction{NameHash: nameHash, Name: name}
}

// BlindHash computes the commitment a bidder publishes during the bidding
// phase: blake2b over the true value, the bidder's nonce and the name
// hash.
func BlindHash(value util.Amount, nonce []byte, nameHash *hash.Hash) hash.Hash {
	writer := hash.NewWriter()
	var valueBytes [8]byte
	for i := uint(0); i < 8; i++ {
		valueBytes[i] = byte(uint64(value) >> (8 * i))
	}
	writer.Write(valueBytes[:])
	writer.Write(nonce)
	writer.Write(nameHash[:])
	return writer.Finalize()
}

// Serialize encodes the auction into w in its canonical byte form. The
// same encoding feeds both the database and the name tree commitment, so
// it must stay bit-exact across versions.
func (a *Auction) Serialize(w io.Writer) error {
	err := wire.WriteVarBytes(w, a.Name)
	if err != nil {
		return err
	}
	err = wire.WriteElements(w, a.Height, a.Renewal, &a.Owner.Hash,
		a.Owner.Index, uint64(a.Value), uint64(a.Highest))
	if err != nil {
		return err
	}
	err = wire.WriteVarBytes(w, a.Data)
	if err != nil {
		return err
	}
	err = wire.WriteElement(w, uint8(a.State))
	if err != nil {
		return err
	}

	err = wire.WriteVarInt(w, uint64(len(a.Bids)))
	if err != nil {
		return err
	}
	for i := range a.Bids {
		bid := &a.Bids[i]
		var flags uint8
		if bid.Revealed {
			flags |= 0x01
		}
		if bid.Redeemed {
			flags |= 0x02
		}
		err = wire.WriteElements(w, &bid.Blind, uint64(bid.Lockup),
			&bid.Owner.Hash, bid.Owner.Index, flags, uint64(bid.Value))
		if err != nil {
			return err
		}
	}

	if a.Transfer == nil {
		return wire.WriteElement(w, uint8(0))
	}
	err = wire.WriteElements(w, uint8(1), a.Transfer.Height,
		a.Transfer.Address.Version)
	if err != nil {
		return err
	}
	return wire.WriteVarBytes(w, a.Transfer.Address.Hash)
}

// Deserialize decodes an auction from r. The name hash is recomputed from
// the name rather than stored.
func (a *Auction) Deserialize(r io.Reader) error {
	name, err := wire.ReadVarBytes(r, consensus.MaxNameSize, "name")
	if err != nil {
		return err
	}
	a.Name = name
	a.NameHash = hash.HashB(name)

	var value, highest uint64
	err = wire.ReadElements(r, &a.Height, &a.Renewal, &a.Owner.Hash,
		&a.Owner.Index, &value, &highest)
	if err != nil {
		return err
	}
	a.Value = util.Amount(value)
	a.Highest = util.Amount(highest)

	a.Data, err = wire.ReadVarBytes(r, consensus.MaxCovenantItemSize, "data")
	if err != nil {
		return err
	}
	if len(a.Data) == 0 {
		a.Data = nil
	}

	var state uint8
	err = wire.ReadElement(r, &state)
	if err != nil {
		return err
	}
	if state > uint8(StateRevoked) {
		return errors.Errorf("invalid auction state %d", state)
	}
	a.State = AuctionState(state)

	count, err := wire.ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxBidsPerAuction {
		return errors.Errorf("too many bids in auction record: %d", count)
	}
	a.Bids = nil
	for i := uint64(0); i < count; i++ {
		var bid Bid
		var lockup, bidValue uint64
		var flags uint8
		err = wire.ReadElements(r, &bid.Blind, &lockup, &bid.Owner.Hash,
			&bid.Owner.Index, &flags, &bidValue)
		if err != nil {
			return err
		}
		bid.Lockup = util.Amount(lockup)
		bid.Value = util.Amount(bidValue)
		bid.Revealed = flags&0x01 != 0
		bid.Redeemed = flags&0x02 != 0
		a.Bids = append(a.Bids, bid)
	}

	var hasTransfer uint8
	err = wire.ReadElement(r, &hasTransfer)
	if err != nil {
		return err
	}
	a.Transfer = nil
	if hasTransfer != 0 {
		transfer := &Transfer{}
		err = wire.ReadElements(r, &transfer.Height,
			&transfer.Address.Version)
		if err != nil {
			return err
		}
		transfer.Address.Hash, err = wire.ReadVarBytes(r,
			util.MaxAddressHashSize, "transfer address")
		if err != nil {
			return err
		}
		a.Transfer = transfer
	}
	return nil
}

// Bytes returns the canonical serialization of the auction.
func (a *Auction) Bytes() []byte {
	var buf bytes.Buffer
	_ = a.Serialize(&buf)
	return buf.Bytes()
}

// maxBidsPerAuction bounds deserialization. A bidding window can hold at
// most one covenant output per spendable slot in its blocks, so this is
// far beyond anything a real auction produces.
const maxBidsPerAuction = 1 << 20
