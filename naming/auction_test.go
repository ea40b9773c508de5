package naming

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// testAuction returns a record exercising every serialized field.
func testAuction() *Auction {
	auction := NewAuction([]byte("example"))
	auction.Height = 100
	auction.Renewal = 115
	auction.Owner = wire.OutPoint{Hash: hash.HashB([]byte("winner")), Index: 1}
	auction.Value = 800
	auction.Highest = 1000
	auction.Data = []byte{0x01, 0x02, 0x03}
	auction.State = StateClosed
	auction.Bids = []Bid{
		{
			Blind:    hash.HashB([]byte("blind a")),
			Lockup:   5000,
			Owner:    wire.OutPoint{Hash: hash.HashB([]byte("a")), Index: 0},
			Revealed: true,
			Value:    1000,
		},
		{
			Blind:    hash.HashB([]byte("blind b")),
			Lockup:   2000,
			Owner:    wire.OutPoint{Hash: hash.HashB([]byte("b")), Index: 2},
			Revealed: true,
			Redeemed: true,
			Value:    800,
		},
		{
			Blind:  hash.HashB([]byte("blind c")),
			Lockup: 100,
			Owner:  wire.OutPoint{Hash: hash.HashB([]byte("c")), Index: 0},
		},
	}
	auction.Transfer = &Transfer{
		Height:  120,
		Address: util.Address{Version: 0, Hash: bytes.Repeat([]byte{0xaa}, 20)},
	}
	return auction
}

func TestAuctionSerialize(t *testing.T) {
	auction := testAuction()

	var buf bytes.Buffer
	if err := auction.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var decoded Auction
	if err := decoded.Deserialize(&buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(&decoded, auction) {
		t.Fatalf("round trip mismatch\ngot:  %v\nwant: %v",
			spew.Sdump(&decoded), spew.Sdump(auction))
	}

	// Re-encoding must be byte identical; the encoding feeds the name
	// tree commitment.
	if !bytes.Equal(decoded.Bytes(), auction.Bytes()) {
		t.Fatal("re-encoded auction differs")
	}
}

func TestAuctionSerializeMinimal(t *testing.T) {
	auction := NewAuction([]byte("x"))
	var decoded Auction
	if err := decoded.Deserialize(bytes.NewReader(auction.Bytes())); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(&decoded, auction) {
		t.Fatalf("round trip mismatch\ngot:  %v\nwant: %v",
			spew.Sdump(&decoded), spew.Sdump(auction))
	}
}

func TestAuctionDeserializeBadState(t *testing.T) {
	auction := testAuction()
	auction.State = AuctionState(200)
	var decoded Auction
	if err := decoded.Deserialize(bytes.NewReader(auction.Bytes())); err == nil {
		t.Fatal("Deserialize accepted an invalid state byte")
	}
}

func TestAuctionClone(t *testing.T) {
	auction := testAuction()
	clone := auction.Clone()
	if !reflect.DeepEqual(clone, auction) {
		t.Fatal("clone differs from original")
	}

	clone.Name[0] = 'z'
	clone.Bids[0].Value = 1
	clone.Transfer.Height = 999
	if auction.Name[0] == 'z' || auction.Bids[0].Value == 1 ||
		auction.Transfer.Height == 999 {
		t.Fatal("clone shares storage with original")
	}
}

func TestBlindHash(t *testing.T) {
	nameHash := hash.HashB([]byte("example"))
	nonce := bytes.Repeat([]byte{0x42}, 32)

	blind := BlindHash(1000, nonce, &nameHash)
	if blind == hash.ZeroHash {
		t.Fatal("blind is zero")
	}
	if BlindHash(1000, nonce, &nameHash) != blind {
		t.Fatal("blind is not deterministic")
	}
	if BlindHash(1001, nonce, &nameHash) == blind {
		t.Fatal("blind ignores the value")
	}
	other := hash.HashB([]byte("other"))
	if BlindHash(1000, nonce, &other) == blind {
		t.Fatal("blind ignores the name hash")
	}
}

func TestAuctionExpiry(t *testing.T) {
	auction := testAuction()
	auction.Renewal = 1000
	const window = 2500

	if auction.isExpired(1000+window-1, window) {
		t.Error("expired one block early")
	}
	if !auction.isExpired(1000+window, window) {
		t.Error("not expired at the boundary")
	}

	// An auction nobody settles runs the same clock from its open height.
	auction.State = StateBidding
	if auction.isExpired(1000+window-1, window) {
		t.Error("abandoned auction expired one block early")
	}
	if !auction.isExpired(1000+window, window) {
		t.Error("abandoned auction never expired")
	}

	auction.State = StateNone
	if auction.isExpired(1000+window, window) {
		t.Error("an untouched name has no clock to expire")
	}
}

func TestAuctionStateString(t *testing.T) {
	if StateBidding.String() != "BIDDING" {
		t.Errorf("got %q, want BIDDING", StateBidding.String())
	}
	if AuctionState(99).String() != "UNKNOWN" {
		t.Errorf("got %q, want UNKNOWN", AuctionState(99).String())
	}
}
