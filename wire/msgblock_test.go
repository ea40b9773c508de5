// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
)

// TestBlockSerialize tests encode and decode of a block carrying a
// solution and transactions.
func TestBlockSerialize(t *testing.T) {
	block := NewMsgBlock(testHeader(), Solution{1, 2, 3, 4, 5})
	block.AddTransaction(testTx(t))

	var buf bytes.Buffer
	if err := block.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if buf.Len() != block.SerializeSize() {
		t.Errorf("SerializeSize: got %d, want %d", block.SerializeSize(),
			buf.Len())
	}

	var decoded MsgBlock
	if err := decoded.Deserialize(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	// Re-encoding must be byte identical.
	var again bytes.Buffer
	if err := decoded.Serialize(&again); err != nil {
		t.Fatalf("Serialize(decoded): %v", err)
	}
	if !bytes.Equal(buf.Bytes(), again.Bytes()) {
		t.Fatalf("Serialize: round trip not byte identical")
	}

	if decoded.BlockHash() != block.BlockHash() {
		t.Errorf("BlockHash: round trip changed the block hash")
	}
}

// TestBlockTxHashes verifies the per-transaction hash listings.
func TestBlockTxHashes(t *testing.T) {
	block := NewMsgBlock(testHeader(), Solution{})
	tx := testTx(t)
	block.AddTransaction(tx)

	txHashes := block.TxHashes()
	if len(txHashes) != 1 || txHashes[0] != tx.TxHash() {
		t.Errorf("TxHashes: wrong hash list %v", txHashes)
	}

	witnessHashes := block.WitnessHashes()
	if len(witnessHashes) != 1 || witnessHashes[0] != tx.WitnessHash() {
		t.Errorf("WitnessHashes: wrong hash list %v", witnessHashes)
	}
}

// TestBlockOverflowErrors ensures a block claiming an absurd transaction
// count is rejected before allocation.
func TestBlockOverflowErrors(t *testing.T) {
	block := NewMsgBlock(testHeader(), Solution{})
	var buf bytes.Buffer
	if err := block.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	// Replace the trailing zero tx count with a maximal varint.
	raw := append(buf.Bytes()[:buf.Len()-1],
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

	var decoded MsgBlock
	err := decoded.Deserialize(bytes.NewReader(raw))
	if err == nil {
		t.Errorf("Deserialize: no error on absurd transaction count")
	}
}
