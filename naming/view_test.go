package naming

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/chaincfg"
	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// memStore is an in-memory auction store that round-trips records through
// their canonical serialization the way the real database does.
type memStore struct {
	auctions map[hash.Hash][]byte
}

func newMemStore() *memStore {
	return &memStore{auctions: make(map[hash.Hash][]byte)}
}

func (s *memStore) FetchAuction(nameHash *hash.Hash) (*Auction, error) {
	raw, ok := s.auctions[*nameHash]
	if !ok {
		return nil, nil
	}
	auction := &Auction{}
	if err := auction.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return auction, nil
}

func (s *memStore) snapshot() map[hash.Hash][]byte {
	clone := make(map[hash.Hash][]byte, len(s.auctions))
	for key, raw := range s.auctions {
		clone[key] = append([]byte(nil), raw...)
	}
	return clone
}

// commit writes a view's working set to the store.
func (s *memStore) commit(view *View) {
	for nameHash, auction := range view.Auctions() {
		s.auctions[nameHash] = auction.Bytes()
	}
}

// unwind replays an undo log in reverse against the store.
func (s *memStore) unwind(undo *UndoLog) {
	for i := len(undo.Entries) - 1; i >= 0; i-- {
		entry := &undo.Entries[i]
		if entry.Prior == nil {
			delete(s.auctions, entry.NameHash)
			continue
		}
		s.auctions[entry.NameHash] = entry.Prior.Bytes()
	}
}

// memEntries is a fake main chain lookup for RENEW anchors.
type memEntries map[hash.Hash]uint32

func (m memEntries) EntryHeight(blockHash *hash.Hash) (uint32, bool) {
	height, ok := m[*blockHash]
	return height, ok
}

type testHarness struct {
	t       *testing.T
	store   *memStore
	entries memEntries
	params  *chaincfg.Params
	txNonce uint32
}

func newHarness(t *testing.T) *testHarness {
	return &testHarness{
		t:       t,
		store:   newMemStore(),
		entries: make(memEntries),
		params:  &chaincfg.RegressionNetParams,
	}
}

func (h *testHarness) ctx(height uint32) *BlockContext {
	return &BlockContext{
		Params:  h.params,
		Height:  height,
		Entries: h.entries,
	}
}

// tx wraps outputs in a transaction with a unique input so every call
// yields a distinct transaction hash.
func (h *testHarness) tx(outs ...*wire.TxOut) *wire.MsgTx {
	h.txNonce++
	tx := &wire.MsgTx{Version: 0}
	tx.TxIn = append(tx.TxIn, &wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  hash.HashB([]byte{byte(h.txNonce), byte(h.txNonce >> 8)}),
			Index: 0,
		},
		Sequence: wire.MaxTxInSequenceNum,
	})
	tx.TxOut = append(tx.TxOut, outs...)
	return tx
}

func out(value util.Amount, typ wire.CovenantType, items ...[]byte) *wire.TxOut {
	covenant, err := wire.NewCovenant(typ, items...)
	if err != nil {
		panic(err)
	}
	return &wire.TxOut{
		Value:    value,
		Address:  util.Address{Version: 0, Hash: bytes.Repeat([]byte{0x01}, 20)},
		Covenant: *covenant,
	}
}

// apply runs the transactions as one block at the given height and
// commits on success.
func (h *testHarness) apply(height uint32, txs ...*wire.MsgTx) *UndoLog {
	h.t.Helper()
	view := NewView()
	ctx := h.ctx(height)
	for _, tx := range txs {
		if err := view.ApplyTransaction(h.store, ctx, tx); err != nil {
			h.t.Fatalf("apply at height %d: %v", height, err)
		}
	}
	h.store.commit(view)
	return view.UndoLog()
}

// applyErr runs the transactions and expects a rule violation with the
// given code. Nothing is committed.
func (h *testHarness) applyErr(height uint32, want ErrorCode, txs ...*wire.MsgTx) {
	h.t.Helper()
	view := NewView()
	ctx := h.ctx(height)
	var err error
	for _, tx := range txs {
		err = view.ApplyTransaction(h.store, ctx, tx)
		if err != nil {
			break
		}
	}
	var rerr RuleError
	if !errors.As(err, &rerr) {
		h.t.Fatalf("apply at height %d: got %v, want rule error %v",
			height, err, want)
	}
	if rerr.ErrorCode != want {
		h.t.Fatalf("apply at height %d: got %v, want %v", height,
			rerr.ErrorCode, want)
	}
}

func (h *testHarness) auction(name string) *Auction {
	h.t.Helper()
	nameHash := hash.HashB([]byte(name))
	auction, err := h.store.FetchAuction(&nameHash)
	if err != nil {
		h.t.Fatalf("FetchAuction(%q): %v", name, err)
	}
	if auction == nil {
		h.t.Fatalf("no auction record for %q", name)
	}
	return auction
}

var testNonceA = bytes.Repeat([]byte{0xa1}, 32)
var testNonceB = bytes.Repeat([]byte{0xb2}, 32)
var testNonceC = bytes.Repeat([]byte{0xc3}, 32)

func blindFor(value util.Amount, nonce []byte, name string) []byte {
	nameHash := hash.HashB([]byte(name))
	blind := BlindHash(value, nonce, &nameHash)
	return blind[:]
}

// TestAuctionLifecycle drives one name through open, bid, reveal,
// register, renew, transfer, revoke and re-open after expiry, using the
// regression network windows.
func TestAuctionLifecycle(t *testing.T) {
	h := newHarness(t)
	name := []byte("example")

	// Height 100: the first bids open the auction. Bob's hidden bid of
	// 1000 will win, carol's 800 sets the price, alice's 700 loses.
	h.apply(100,
		h.tx(
			out(2000, wire.CovenantBid, name, blindFor(700, testNonceA, "example")),
			out(3000, wire.CovenantBid, name, blindFor(1000, testNonceB, "example")),
		),
		h.tx(out(1600, wire.CovenantBid, name, blindFor(800, testNonceC, "example"))),
	)
	auction := h.auction("example")
	if auction.State != StateBidding || auction.Height != 100 {
		t.Fatalf("after bids: state %v at %d, want BIDDING at 100",
			auction.State, auction.Height)
	}
	if len(auction.Bids) != 3 {
		t.Fatalf("after bids: %d bids recorded, want 3", len(auction.Bids))
	}

	// The bidding window [100, 105) is closed at 105.
	h.applyErr(105, ErrBidOutOfWindow,
		h.tx(out(100, wire.CovenantBid, name, blindFor(1, testNonceA, "example"))))

	// Height 105: reveals. The reveal output value is the true bid.
	reveals := h.tx(
		out(1000, wire.CovenantReveal, name, testNonceB),
		out(700, wire.CovenantReveal, name, testNonceA),
		out(800, wire.CovenantReveal, name, testNonceC),
	)
	h.apply(105, reveals)
	auction = h.auction("example")
	if auction.State != StateReveal {
		t.Fatalf("after reveals: state %v, want REVEAL", auction.State)
	}
	if auction.Highest != 1000 || auction.Value != 800 {
		t.Fatalf("after reveals: highest %d value %d, want 1000 and 800",
			auction.Highest, auction.Value)
	}
	wantOwner := wire.OutPoint{Hash: reveals.TxHash(), Index: 0}
	if auction.Owner != wantOwner {
		t.Fatalf("after reveals: owner %v, want bob's reveal %v",
			auction.Owner, wantOwner)
	}

	// The reveal window [105, 115) rejects a register at 114 and closes
	// to new reveals at 115.
	h.applyErr(114, ErrRegisterOutOfWindow,
		h.tx(out(0, wire.CovenantRegister, name, []byte{0x01}, hash.ZeroHash[:])))

	// Height 115: the winner registers and a loser redeems.
	resource := []byte{0xde, 0xad}
	h.apply(115,
		h.tx(out(0, wire.CovenantRegister, name, resource, hash.ZeroHash[:])),
		h.tx(out(0, wire.CovenantRedeem, name)),
	)
	auction = h.auction("example")
	if auction.State != StateClosed || auction.Renewal != 115 {
		t.Fatalf("after register: state %v renewal %d, want CLOSED at 115",
			auction.State, auction.Renewal)
	}
	if !bytes.Equal(auction.Data, resource) {
		t.Fatalf("after register: data %x, want %x", auction.Data, resource)
	}
	if !auction.Bids[0].Redeemed {
		t.Fatal("redeem did not mark the earliest losing bid")
	}

	// Height 120: renew against a recent anchor.
	anchor := hash.HashB([]byte("anchor block"))
	h.entries[anchor] = 60
	h.apply(120, h.tx(out(0, wire.CovenantRenew, name, anchor[:])))
	auction = h.auction("example")
	if auction.State != StateRenewed || auction.Renewal != 120 {
		t.Fatalf("after renew: state %v renewal %d, want RENEWED at 120",
			auction.State, auction.Renewal)
	}

	// A stale anchor is rejected: height 120 minus anchor height 10
	// exceeds the regression renewal window of 100.
	stale := hash.HashB([]byte("stale block"))
	h.entries[stale] = 10
	h.applyErr(120, ErrBadRenewalBlock,
		h.tx(out(0, wire.CovenantRenew, name, stale[:])))

	// Height 125: transfer, locked until 135.
	recipient := append([]byte{0x00}, bytes.Repeat([]byte{0xee}, 20)...)
	h.apply(125, h.tx(out(0, wire.CovenantTransfer, name, recipient)))
	h.applyErr(130, ErrTransferLocked,
		h.tx(out(0, wire.CovenantFinalize, name)))

	finalize := h.tx(out(0, wire.CovenantFinalize, name))
	h.apply(135, finalize)
	auction = h.auction("example")
	if auction.Transfer != nil {
		t.Fatal("finalize left the transfer pending")
	}
	wantOwner = wire.OutPoint{Hash: finalize.TxHash(), Index: 0}
	if auction.Owner != wantOwner || auction.Renewal != 135 {
		t.Fatalf("after finalize: owner %v renewal %d, want %v at 135",
			auction.Owner, auction.Renewal, wantOwner)
	}

	// Height 140: revoke. The name stays dead until the expiry window
	// lapses at 135 + 2500.
	h.apply(140, h.tx(out(0, wire.CovenantRevoke, name)))
	auction = h.auction("example")
	if auction.State != StateRevoked {
		t.Fatalf("after revoke: state %v, want REVOKED", auction.State)
	}
	h.applyErr(2634, ErrBidOutOfWindow,
		h.tx(out(100, wire.CovenantBid, name, blindFor(5, testNonceA, "example"))))

	// Height 2635: the name expired and a fresh auction opens.
	h.apply(2635,
		h.tx(out(100, wire.CovenantBid, name, blindFor(5, testNonceA, "example"))))
	auction = h.auction("example")
	if auction.State != StateBidding || auction.Height != 2635 {
		t.Fatalf("after expiry: state %v at %d, want BIDDING at 2635",
			auction.State, auction.Height)
	}
	if len(auction.Bids) != 1 {
		t.Fatalf("after expiry: %d bids, want a fresh record with 1",
			len(auction.Bids))
	}
}

// TestRevealTieBreak ensures equal bids keep the earliest reveal as the
// winner.
func TestRevealTieBreak(t *testing.T) {
	h := newHarness(t)
	name := []byte("tied")

	h.apply(10, h.tx(
		out(1000, wire.CovenantBid, name, blindFor(500, testNonceA, "tied")),
		out(1000, wire.CovenantBid, name, blindFor(500, testNonceB, "tied")),
	))
	reveals := h.tx(
		out(500, wire.CovenantReveal, name, testNonceA),
		out(500, wire.CovenantReveal, name, testNonceB),
	)
	h.apply(15, reveals)

	auction := h.auction("tied")
	wantOwner := wire.OutPoint{Hash: reveals.TxHash(), Index: 0}
	if auction.Owner != wantOwner {
		t.Fatalf("tie winner %v, want the earlier reveal %v",
			auction.Owner, wantOwner)
	}
	if auction.Highest != 500 || auction.Value != 500 {
		t.Fatalf("tie: highest %d value %d, want 500 and 500",
			auction.Highest, auction.Value)
	}
}

// TestApplyUndoIdentity ensures replaying a block's undo log restores the
// store byte for byte.
func TestApplyUndoIdentity(t *testing.T) {
	h := newHarness(t)
	name := []byte("undoable")

	// Seed the store with a running auction.
	h.apply(10, h.tx(
		out(1000, wire.CovenantBid, name, blindFor(300, testNonceA, "undoable")),
	))
	before := h.store.snapshot()

	// One block touching an existing record and creating a new one.
	undo := h.apply(12,
		h.tx(out(900, wire.CovenantBid, name, blindFor(200, testNonceB, "undoable"))),
		h.tx(out(100, wire.CovenantBid, []byte("fresh"),
			blindFor(50, testNonceC, "fresh"))),
	)

	if len(undo.Entries) != 2 {
		t.Fatalf("undo has %d entries, want 2", len(undo.Entries))
	}

	// Undo logs survive the database round trip.
	var buf bytes.Buffer
	if err := undo.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	reloaded := NewUndoLog()
	if err := reloaded.Deserialize(&buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	h.store.unwind(reloaded)
	if !reflect.DeepEqual(h.store.auctions, before) {
		t.Fatal("store differs from its pre-block state after undo")
	}
}

// TestCovenantRejections exercises the rule errors of each transition.
func TestCovenantRejections(t *testing.T) {
	h := newHarness(t)
	name := []byte("strict")

	// Claims are only for reserved root names, and bids are only for
	// everything else.
	h.applyErr(5, ErrNameNotReserved,
		h.tx(out(0, wire.CovenantClaim, name)))
	h.applyErr(5, ErrNameReserved,
		h.tx(out(100, wire.CovenantBid, []byte("com"),
			blindFor(1, testNonceA, "com"))))

	// A reserved name claims once.
	h.apply(5, h.tx(out(0, wire.CovenantClaim, []byte("com"))))
	if got := h.auction("com").State; got != StateClosed {
		t.Fatalf("claimed name in state %v, want CLOSED", got)
	}
	h.applyErr(6, ErrAlreadyClaimed,
		h.tx(out(0, wire.CovenantClaim, []byte("com"))))

	// Operations on a name nobody owns.
	h.applyErr(5, ErrNotOwned,
		h.tx(out(0, wire.CovenantUpdate, name, []byte{0x01})))
	h.applyErr(5, ErrNoTransfer,
		h.tx(out(0, wire.CovenantFinalize, []byte("com"))))

	// Open an auction and pin its windows: bids [10, 15), reveals
	// [15, 25).
	h.apply(10, h.tx(out(1000, wire.CovenantBid, name,
		blindFor(0, testNonceA, "strict"))))
	h.applyErr(12, ErrRevealOutOfWindow,
		h.tx(out(0, wire.CovenantReveal, name, testNonceA)))
	h.applyErr(16, ErrBadBlind,
		h.tx(out(77, wire.CovenantReveal, name, testNonceB)))
	h.applyErr(16, ErrNoRedeemableBid,
		h.tx(out(0, wire.CovenantRedeem, name)))

	// A revealed zero bid leaves the auction with no winner.
	h.apply(16, h.tx(out(0, wire.CovenantReveal, name, testNonceA)))
	h.applyErr(25, ErrNoWinner,
		h.tx(out(0, wire.CovenantRegister, name, []byte{0x01},
			hash.ZeroHash[:])))

	// Transfers: only one pending at a time, and anchors must resolve.
	recipient := append([]byte{0x00}, bytes.Repeat([]byte{0xee}, 20)...)
	h.apply(30, h.tx(out(0, wire.CovenantTransfer, []byte("com"), recipient)))
	h.applyErr(31, ErrTransferPending,
		h.tx(out(0, wire.CovenantTransfer, []byte("com"), recipient)))
	unknown := hash.HashB([]byte("unknown anchor"))
	h.applyErr(31, ErrBadRenewalBlock,
		h.tx(out(0, wire.CovenantRenew, []byte("com"), unknown[:])))

	// Revocation is final.
	h.apply(32, h.tx(out(0, wire.CovenantRevoke, []byte("com"))))
	h.applyErr(33, ErrNameRevoked,
		h.tx(out(0, wire.CovenantRevoke, []byte("com"))))
	h.applyErr(33, ErrNameRevoked,
		h.tx(out(0, wire.CovenantUpdate, []byte("com"), []byte{0x01})))
}

// TestAbandonedAuctionExpiry proves an auction nobody settles does not
// lock its name forever: once the expiration window lapses from the open
// height, the name is biddable again as a fresh auction.
func TestAbandonedAuctionExpiry(t *testing.T) {
	h := newHarness(t)
	name := []byte("stuck")
	window := h.params.ExpirationWindow

	// Open at 100, reveal nothing. The bid window closes at 105 and the
	// record idles in BIDDING.
	h.apply(100, h.tx(out(1000, wire.CovenantBid, name,
		blindFor(900, testNonceA, "stuck"))))
	h.applyErr(100+window-1, ErrBidOutOfWindow,
		h.tx(out(1000, wire.CovenantBid, name,
			blindFor(900, testNonceB, "stuck"))))

	// One more block and the abandoned auction expires: a new bid resets
	// the record and opens a fresh auction with no stale bids.
	h.apply(100+window, h.tx(out(2000, wire.CovenantBid, name,
		blindFor(1500, testNonceB, "stuck"))))
	auction := h.auction("stuck")
	if auction.State != StateBidding || auction.Height != 100+window {
		t.Fatalf("after reopen: state %v height %d, want BIDDING at %d",
			auction.State, auction.Height, 100+window)
	}
	if len(auction.Bids) != 1 {
		t.Fatalf("after reopen: %d bids, want only the fresh one",
			len(auction.Bids))
	}

	// The same clock covers an auction abandoned after reveals: a winner
	// who waits past expiry has lost the right to register.
	h.apply(100+window+5, h.tx(out(1500, wire.CovenantReveal, name,
		testNonceB)))
	h.applyErr(100+2*window, ErrNameExpired,
		h.tx(out(0, wire.CovenantRegister, name, []byte{0x01},
			hash.ZeroHash[:])))
	h.apply(100+2*window, h.tx(out(3000, wire.CovenantBid, name,
		blindFor(2500, testNonceC, "stuck"))))
	if auction = h.auction("stuck"); auction.Height != 100+2*window {
		t.Fatalf("second reopen: height %d, want %d", auction.Height,
			100+2*window)
	}
}
