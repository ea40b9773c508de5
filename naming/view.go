package naming

import (
	"fmt"

	"github.com/handshake-org/hskd/chaincfg"
	"github.com/handshake-org/hskd/genesis"
	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// Store is the read side of the persistent auction store. FetchAuction
// returns nil with no error when the store has no record for the hash.
type Store interface {
	FetchAuction(nameHash *hash.Hash) (*Auction, error)
}

// EntrySource resolves block hashes to main chain heights. It backs the
// recency check on RENEW anchors.
type EntrySource interface {
	EntryHeight(blockHash *hash.Hash) (uint32, bool)
}

// BlockContext carries the chain position a block's covenants are judged
// against.
type BlockContext struct {
	Params  *chaincfg.Params
	Height  uint32
	Entries EntrySource
}

// View is the working set for applying one block. It caches every auction
// touched, records each record's prior state for the undo log on first
// mutation, and owns the cached copies until commit.
//
// Views are single-use and not safe for concurrent access. The chain
// writer builds exactly one view per block.
type View struct {
	auctions map[hash.Hash]*Auction
	undo     *UndoLog
}

// NewView returns an empty view.
func NewView() *View {
	return &View{
		auctions: make(map[hash.Hash]*Auction),
		undo:     NewUndoLog(),
	}
}

// Auction returns the view's mutable copy of the record for nameHash,
// loading it from the store on first touch. A name unknown to the store
// yields a fresh empty record owned by the view.
func (v *View) Auction(store Store, nameHash *hash.Hash, name []byte) (*Auction, error) {
	if auction, ok := v.auctions[*nameHash]; ok {
		return auction, nil
	}

	stored, err := store.FetchAuction(nameHash)
	if err != nil {
		return nil, err
	}
	var auction *Auction
	if stored != nil {
		v.undo.record(nameHash, stored)
		auction = stored.Clone()
	} else {
		v.undo.record(nameHash, nil)
		auction = NewAuction(name)
	}
	v.auctions[*nameHash] = auction
	return auction, nil
}

// Auctions returns every record the view touched. The caller writes these
// to the store on commit.
func (v *View) Auctions() map[hash.Hash]*Auction {
	return v.auctions
}

// UndoLog returns the prior states captured by the view, in touch order.
func (v *View) UndoLog() *UndoLog {
	return v.undo
}

// ApplyTransaction runs every covenant carried by tx against the view.
// Outputs are processed in index order. Any rule violation aborts the
// whole transaction, and the caller is expected to discard the view.
func (v *View) ApplyTransaction(store Store, ctx *BlockContext, tx *wire.MsgTx) error {
	txHash := tx.TxHash()
	for outIdx, out := range tx.TxOut {
		if out.Covenant.Type == wire.CovenantNone {
			continue
		}
		outpoint := wire.OutPoint{Hash: txHash, Index: uint32(outIdx)}
		err := v.applyCovenant(store, ctx, out, outpoint)
		if err != nil {
			return err
		}
	}
	return nil
}

func (v *View) applyCovenant(store Store, ctx *BlockContext, out *wire.TxOut, outpoint wire.OutPoint) error {
	covenant := &out.Covenant
	name := covenant.Name()
	nameHash := covenant.NameHash()
	auction, err := v.Auction(store, &nameHash, name)
	if err != nil {
		return err
	}

	switch covenant.Type {
	case wire.CovenantClaim:
		return v.applyClaim(ctx, auction, outpoint)
	case wire.CovenantBid:
		return v.applyBid(ctx, auction, covenant, out.Value, outpoint)
	case wire.CovenantReveal:
		return v.applyReveal(ctx, auction, covenant, out.Value, outpoint)
	case wire.CovenantRedeem:
		return v.applyRedeem(ctx, auction)
	case wire.CovenantRegister:
		return v.applyRegister(ctx, auction, covenant)
	case wire.CovenantUpdate:
		return v.applyUpdate(ctx, auction, covenant)
	case wire.CovenantRenew:
		return v.applyRenew(ctx, auction, covenant)
	case wire.CovenantTransfer:
		return v.applyTransfer(ctx, auction, covenant)
	case wire.CovenantFinalize:
		return v.applyFinalize(ctx, auction, outpoint)
	case wire.CovenantRevoke:
		return v.applyRevoke(ctx, auction)
	}
	return ruleError(ErrUnknownCovenant, fmt.Sprintf("unknown covenant "+
		"type %d on name %q", covenant.Type, name))
}

// applyClaim stakes a reserved root name for the genesis claimant. The
// name skips the auction entirely and lands settled.
func (v *View) applyClaim(ctx *BlockContext, auction *Auction, outpoint wire.OutPoint) error {
	if !genesis.IsReserved(auction.Name) {
		return ruleError(ErrNameNotReserved, fmt.Sprintf("name %q is not "+
			"in the reserved root zone", auction.Name))
	}
	if auction.isExpired(ctx.Height, ctx.Params.ExpirationWindow) {
		auction.reset()
	}
	if auction.State != StateNone {
		return ruleError(ErrAlreadyClaimed, fmt.Sprintf("name %q has "+
			"already been claimed or auctioned", auction.Name))
	}

	auction.Height = ctx.Height
	auction.Renewal = ctx.Height
	auction.Owner = outpoint
	auction.State = StateClosed
	return nil
}

// applyBid opens the auction on first contact and records the sealed
// blind. The output value is the lockup, not the bid.
func (v *View) applyBid(ctx *BlockContext, auction *Auction, covenant *wire.Covenant, lockup util.Amount, outpoint wire.OutPoint) error {
	if genesis.IsReserved(auction.Name) {
		return ruleError(ErrNameReserved, fmt.Sprintf("name %q is "+
			"reserved for the genesis claimant", auction.Name))
	}
	if auction.isExpired(ctx.Height, ctx.Params.ExpirationWindow) {
		auction.reset()
	}

	switch auction.State {
	case StateNone:
		auction.Height = ctx.Height
		auction.Renewal = ctx.Height
		auction.State = StateBidding
	case StateBidding:
		if ctx.Height >= auction.Height+ctx.Params.BiddingPeriod {
			return ruleError(ErrBidOutOfWindow, fmt.Sprintf("bidding on "+
				"%q closed at height %d", auction.Name,
				auction.Height+ctx.Params.BiddingPeriod))
		}
	default:
		return ruleError(ErrBidOutOfWindow, fmt.Sprintf("name %q is in "+
			"state %v and cannot be bid on", auction.Name, auction.State))
	}

	var blind hash.Hash
	copy(blind[:], covenant.Items[1])
	auction.Bids = append(auction.Bids, Bid{
		Blind:  blind,
		Lockup: lockup,
		Owner:  outpoint,
	})
	return nil
}

// applyReveal opens a sealed bid. The output value is the true bid, and
// hashing it with the covenant nonce must reproduce a recorded blind.
// The top two revealed values are kept: the best bid wins, the runner-up
// sets the price. Ties keep the earlier reveal since displacing the
// leader requires a strictly greater value.
func (v *View) applyReveal(ctx *BlockContext, auction *Auction, covenant *wire.Covenant, value util.Amount, outpoint wire.OutPoint) error {
	revealStart := auction.Height + ctx.Params.BiddingPeriod
	revealEnd := revealStart + ctx.Params.RevealPeriod
	if auction.State != StateBidding && auction.State != StateReveal {
		return ruleError(ErrRevealOutOfWindow, fmt.Sprintf("name %q is "+
			"in state %v and cannot be revealed", auction.Name,
			auction.State))
	}
	if ctx.Height < revealStart || ctx.Height >= revealEnd {
		return ruleError(ErrRevealOutOfWindow, fmt.Sprintf("reveal for "+
			"%q is only legal in heights [%d, %d)", auction.Name,
			revealStart, revealEnd))
	}
	auction.State = StateReveal

	blind := BlindHash(value, covenant.Items[1], &auction.NameHash)
	bid := findBid(auction, &blind)
	if bid == nil {
		return ruleError(ErrBadBlind, fmt.Sprintf("no sealed bid on %q "+
			"matches the revealed value", auction.Name))
	}
	bid.Revealed = true
	bid.Value = value
	// The reveal outpoint supersedes the bid outpoint as the bid's
	// identity, so the winner check in REDEEM lines up with Owner.
	bid.Owner = outpoint

	if value > auction.Highest {
		auction.Value = auction.Highest
		auction.Highest = value
		auction.Owner = outpoint
	} else if value > auction.Value {
		auction.Value = value
	}
	return nil
}

func findBid(auction *Auction, blind *hash.Hash) *Bid {
	for i := range auction.Bids {
		bid := &auction.Bids[i]
		if !bid.Revealed && bid.Blind.IsEqual(blind) {
			return bid
		}
	}
	return nil
}

// applyRedeem reclaims the lockup of the earliest losing revealed bid.
func (v *View) applyRedeem(ctx *BlockContext, auction *Auction) error {
	revealEnd := auction.Height + ctx.Params.BiddingPeriod +
		ctx.Params.RevealPeriod
	if auction.State == StateNone || auction.State == StateBidding ||
		ctx.Height < revealEnd {
		return ruleError(ErrNoRedeemableBid, fmt.Sprintf("lockups on %q "+
			"cannot be redeemed before height %d", auction.Name,
			revealEnd))
	}
	for i := range auction.Bids {
		bid := &auction.Bids[i]
		if bid.Revealed && !bid.Redeemed && bid.Owner != auction.Owner {
			bid.Redeemed = true
			return nil
		}
	}
	return ruleError(ErrNoRedeemableBid, fmt.Sprintf("no losing revealed "+
		"bid left on %q", auction.Name))
}

// applyRegister settles the auction for the winner. The price paid is the
// second-highest revealed value, already tracked in Value. Registration
// is only legal once because it is the sole exit from the reveal state.
func (v *View) applyRegister(ctx *BlockContext, auction *Auction, covenant *wire.Covenant) error {
	if auction.isExpired(ctx.Height, ctx.Params.ExpirationWindow) {
		return ruleError(ErrNameExpired, fmt.Sprintf("name %q expired at "+
			"height %d", auction.Name,
			auction.Renewal+ctx.Params.ExpirationWindow))
	}

	// A claimed name never went through an auction: it lands settled
	// with no bids and no resource, and its first REGISTER just
	// installs the resource.
	if auction.State == StateClosed && len(auction.Bids) == 0 &&
		len(auction.Data) == 0 {
		auction.Renewal = ctx.Height
		auction.Data = append([]byte(nil), covenant.Items[1]...)
		return nil
	}

	revealEnd := auction.Height + ctx.Params.BiddingPeriod +
		ctx.Params.RevealPeriod
	if auction.State != StateReveal {
		return ruleError(ErrRegisterOutOfWindow, fmt.Sprintf("name %q is "+
			"in state %v and cannot be registered", auction.Name,
			auction.State))
	}
	if ctx.Height < revealEnd {
		return ruleError(ErrRegisterOutOfWindow, fmt.Sprintf("register "+
			"for %q is only legal from height %d", auction.Name,
			revealEnd))
	}
	if auction.Highest == 0 {
		return ruleError(ErrNoWinner, fmt.Sprintf("auction for %q has no "+
			"revealed bids", auction.Name))
	}

	auction.State = StateClosed
	auction.Renewal = ctx.Height
	auction.Data = append([]byte(nil), covenant.Items[1]...)
	return nil
}

// applyUpdate replaces the resource of a live name.
func (v *View) applyUpdate(ctx *BlockContext, auction *Auction, covenant *wire.Covenant) error {
	err := checkOwned(ctx, auction)
	if err != nil {
		return err
	}
	auction.Data = append([]byte(nil), covenant.Items[1]...)
	return nil
}

// applyRenew resets the expiry clock. The covenant must anchor itself to
// a recent main chain block, which keeps a renewal from being replayed
// far in the future on another branch.
func (v *View) applyRenew(ctx *BlockContext, auction *Auction, covenant *wire.Covenant) error {
	err := checkOwned(ctx, auction)
	if err != nil {
		return err
	}

	var anchor hash.Hash
	copy(anchor[:], covenant.Items[1])
	anchorHeight, ok := ctx.Entries.EntryHeight(&anchor)
	if !ok || ctx.Height-anchorHeight > ctx.Params.RenewalWindow {
		return ruleError(ErrBadRenewalBlock, fmt.Sprintf("renewal of %q "+
			"does not anchor to a main chain block in the last %d",
			auction.Name, ctx.Params.RenewalWindow))
	}

	auction.Renewal = ctx.Height
	auction.State = StateRenewed
	return nil
}

// applyTransfer begins the two-phase ownership change.
func (v *View) applyTransfer(ctx *BlockContext, auction *Auction, covenant *wire.Covenant) error {
	err := checkOwned(ctx, auction)
	if err != nil {
		return err
	}
	if auction.Transfer != nil {
		return ruleError(ErrTransferPending, fmt.Sprintf("name %q "+
			"already has a pending transfer", auction.Name))
	}

	raw := covenant.Items[1]
	if len(raw) < 2 {
		return ruleError(ErrBadTransferAddress, fmt.Sprintf("transfer "+
			"of %q carries a truncated address", auction.Name))
	}
	address, err := util.NewAddress(raw[0], raw[1:])
	if err != nil {
		return ruleError(ErrBadTransferAddress, fmt.Sprintf("transfer "+
			"of %q carries a malformed address: %v", auction.Name, err))
	}
	auction.Transfer = &Transfer{
		Height:  ctx.Height,
		Address: *address,
	}
	return nil
}

// applyFinalize completes a transfer once the lockup delay has elapsed.
func (v *View) applyFinalize(ctx *BlockContext, auction *Auction, outpoint wire.OutPoint) error {
	err := checkOwned(ctx, auction)
	if err != nil {
		return err
	}
	if auction.Transfer == nil {
		return ruleError(ErrNoTransfer, fmt.Sprintf("name %q has no "+
			"pending transfer to finalize", auction.Name))
	}
	if ctx.Height < auction.Transfer.Height+ctx.Params.TransferLockup {
		return ruleError(ErrTransferLocked, fmt.Sprintf("transfer of %q "+
			"is locked until height %d", auction.Name,
			auction.Transfer.Height+ctx.Params.TransferLockup))
	}

	auction.Owner = outpoint
	auction.Renewal = ctx.Height
	auction.Transfer = nil
	return nil
}

// applyRevoke burns the name. The record stays revoked until the expiry
// window lapses, after which the name becomes biddable again.
func (v *View) applyRevoke(ctx *BlockContext, auction *Auction) error {
	if auction.State == StateRevoked {
		return ruleError(ErrNameRevoked, fmt.Sprintf("name %q is already "+
			"revoked", auction.Name))
	}
	err := checkOwned(ctx, auction)
	if err != nil {
		return err
	}

	auction.State = StateRevoked
	auction.Transfer = nil
	return nil
}

func checkOwned(ctx *BlockContext, auction *Auction) error {
	if auction.State == StateRevoked {
		return ruleError(ErrNameRevoked, fmt.Sprintf("name %q is revoked",
			auction.Name))
	}
	if !auction.isOwned() {
		return ruleError(ErrNotOwned, fmt.Sprintf("name %q is in state "+
			"%v and has no live owner", auction.Name, auction.State))
	}
	if auction.isExpired(ctx.Height, ctx.Params.ExpirationWindow) {
		return ruleError(ErrNameExpired, fmt.Sprintf("name %q expired at "+
			"height %d", auction.Name,
			auction.Renewal+ctx.Params.ExpirationWindow))
	}
	return nil
}
