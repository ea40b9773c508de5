package blockchain

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/handshake-org/hskd/chaincfg"
	"github.com/handshake-org/hskd/consensus"
	"github.com/handshake-org/hskd/wire"
)

// TestNewChainEntry checks height and chainwork derivation from a parent
// entry.
func TestNewChainEntry(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	genesis := NewChainEntry(params.GenesisBlock, nil)

	if !genesis.IsGenesis() {
		t.Fatal("genesis entry not recognized as genesis")
	}
	if genesis.Height != 0 {
		t.Fatalf("genesis height is %d, want 0", genesis.Height)
	}
	if genesis.Chainwork.Cmp(consensus.CalcWork(params.PowBits)) != 0 {
		t.Fatalf("genesis chainwork is %v, want proof of its own bits",
			genesis.Chainwork)
	}

	header := wire.BlockHeader{
		PrevBlock: genesis.Hash,
		Timestamp: genesis.Timestamp + 1,
		Bits:      params.PowBits,
	}
	block := wire.NewMsgBlock(&header, make(wire.Solution, params.Cuckoo.Size))
	entry := NewChainEntry(block, genesis)

	if entry.Height != 1 {
		t.Fatalf("entry height is %d, want 1", entry.Height)
	}
	wantWork := consensus.CalcWork(params.PowBits)
	wantWork.Add(wantWork, genesis.Chainwork)
	if entry.Chainwork.Cmp(wantWork) != 0 {
		t.Fatalf("entry chainwork is %v, want %v", entry.Chainwork,
			wantWork)
	}

	gotHash := entry.ToHeader().BlockHash()
	if !gotHash.IsEqual(&entry.Hash) {
		t.Fatalf("projected header hashes to %s, want %s", gotHash,
			entry.Hash)
	}
}

// TestChainEntrySerialize checks the decode(encode(e)) == e law for chain
// entries.
func TestChainEntrySerialize(t *testing.T) {
	params := &chaincfg.SimNetParams
	genesis := NewChainEntry(params.GenesisBlock, nil)

	header := wire.BlockHeader{
		Version:   1,
		PrevBlock: genesis.Hash,
		Timestamp: genesis.Timestamp + 600,
		Bits:      params.PowBits,
		Nonce:     wire.Nonce{0: 0xde, 1: 0xad, 19: 0x01},
	}
	solution := make(wire.Solution, params.Cuckoo.Size)
	for i := range solution {
		solution[i] = uint32(i * 7)
	}
	block := wire.NewMsgBlock(&header, solution)
	entry := NewChainEntry(block, genesis)

	var buf bytes.Buffer
	if err := entry.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: unexpected error %v", err)
	}

	decoded := &ChainEntry{}
	if err := decoded.Deserialize(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Deserialize: unexpected error %v", err)
	}
	if !reflect.DeepEqual(entry, decoded) {
		t.Fatalf("entry did not round-trip: got %+v, want %+v", decoded,
			entry)
	}

	var reencoded bytes.Buffer
	if err := decoded.Serialize(&reencoded); err != nil {
		t.Fatalf("re-Serialize: unexpected error %v", err)
	}
	if !bytes.Equal(buf.Bytes(), reencoded.Bytes()) {
		t.Fatal("re-encoded entry bytes differ from original")
	}
}
