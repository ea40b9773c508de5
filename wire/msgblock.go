// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/handshake-org/hskd/util/hash"
)

// maxBlockPayload is the maximum number of bytes a raw block (including
// witness data) may occupy.
const maxBlockPayload = 4000000

// minTxPayload is the minimum payload size for a transaction: version 4
// bytes + varint count of inputs 1 byte + varint count of outputs 1 byte +
// locktime 4 bytes + minimum single output.
const minTxPayload = 10 + minTxOutPayload

// MaxTxPerBlock is the maximum number of transactions that could possibly
// fit into a block.
const MaxTxPerBlock = maxBlockPayload/minTxPayload + 1

// MsgBlock implements the Message interface and represents a block message.
// It is used to deliver block and transaction information in response to a
// getdata message for a given block hash.
type MsgBlock struct {
	Header       BlockHeader
	Solution     Solution
	Transactions []*MsgTx
}

// AddTransaction adds a transaction to the message.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
}

// ClearTransactions removes all transactions from the message.
func (msg *MsgBlock) ClearTransactions() {
	msg.Transactions = make([]*MsgTx, 0, 8)
}

// Deserialize decodes a block from r. Witness data is included.
func (msg *MsgBlock) Deserialize(r io.Reader) error {
	err := readBlockHeader(r, &msg.Header)
	if err != nil {
		return err
	}

	msg.Solution, err = ReadSolution(r)
	if err != nil {
		return err
	}

	txCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// Prevent more transactions than could possibly fit into a block.
	// It would be possible to cause memory exhaustion and panics without
	// a sane upper bound on this count.
	if txCount > MaxTxPerBlock {
		return messageError("MsgBlock.Deserialize", fmt.Sprintf(
			"too many transactions to fit into a block "+
				"[count %d, max %d]", txCount, MaxTxPerBlock))
	}

	msg.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := MsgTx{}
		err := tx.Deserialize(r)
		if err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, &tx)
	}

	return nil
}

// Serialize encodes the block to w. Witness data is included.
func (msg *MsgBlock) Serialize(w io.Writer) error {
	err := writeBlockHeader(w, &msg.Header)
	if err != nil {
		return err
	}

	err = WriteSolution(w, msg.Solution)
	if err != nil {
		return err
	}

	err = WriteVarInt(w, uint64(len(msg.Transactions)))
	if err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		err = tx.Serialize(w)
		if err != nil {
			return err
		}
	}

	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// block, including witness data.
func (msg *MsgBlock) SerializeSize() int {
	n := HeaderSize + SolutionSerializeSize(msg.Solution) +
		VarIntSerializeSize(uint64(len(msg.Transactions)))
	for _, tx := range msg.Transactions {
		n += tx.SerializeSize()
	}
	return n
}

// SerializeSizeStripped returns the number of bytes it would take to
// serialize the block without witness data.
func (msg *MsgBlock) SerializeSizeStripped() int {
	n := HeaderSize + SolutionSerializeSize(msg.Solution) +
		VarIntSerializeSize(uint64(len(msg.Transactions)))
	for _, tx := range msg.Transactions {
		n += tx.SerializeSizeStripped()
	}
	return n
}

// Bytes returns the full serialized block.
func (msg *MsgBlock) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	err := msg.Serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BlockHash computes the block identifier hash for this block: blake2b
// over the serialized header.
func (msg *MsgBlock) BlockHash() hash.Hash {
	return msg.Header.BlockHash()
}

// TxHashes returns a slice of hashes of all of transactions in this block,
// in witness-stripped form.
func (msg *MsgBlock) TxHashes() []hash.Hash {
	hashList := make([]hash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashList = append(hashList, tx.TxHash())
	}
	return hashList
}

// WitnessHashes returns a slice of witness-inclusive hashes of all of
// transactions in this block.
func (msg *MsgBlock) WitnessHashes() []hash.Hash {
	hashList := make([]hash.Hash, 0, len(msg.Transactions))
	for _, tx := range msg.Transactions {
		hashList = append(hashList, tx.WitnessHash())
	}
	return hashList
}

// NewMsgBlock returns a new block message that conforms to the Message
// interface using the provided block header, solution and no transactions.
func NewMsgBlock(blockHeader *BlockHeader, solution Solution) *MsgBlock {
	return &MsgBlock{
		Header:       *blockHeader,
		Solution:     solution,
		Transactions: make([]*MsgTx, 0, 8),
	}
}
