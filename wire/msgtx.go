// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/util/hash"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 0

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be. The coinbase input carries this index with a zero
	// hash.
	MaxPrevOutIndex uint32 = 0xffffffff

	// minTxInPayload is the minimum payload size for a transaction input:
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Sequence 4
	// bytes.
	minTxInPayload = hash.Size + 8

	// maxTxInPerMessage is the maximum number of transaction inputs a
	// block-sized message could possibly carry.
	maxTxInPerMessage = maxBlockPayload/minTxInPayload + 1

	// minTxOutPayload is the minimum payload size for a transaction
	// output: Value 8 bytes + minimum address 4 bytes + empty covenant 2
	// bytes.
	minTxOutPayload = 14

	// maxTxOutPerMessage is the maximum number of transaction outputs a
	// block-sized message could possibly carry.
	maxTxOutPerMessage = maxBlockPayload/minTxOutPayload + 1

	// maxWitnessItemsPerInput is the maximum number of witness items a
	// single input's witness stack may carry.
	maxWitnessItemsPerInput = 1000

	// maxWitnessItemSize is the maximum size of a single witness item.
	maxWitnessItemSize = 11000
)

// OutPoint defines a data type that is used to track previous transaction
// outputs.
type OutPoint struct {
	Hash  hash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint with the provided hash and
// index.
func NewOutPoint(txHash *hash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *txHash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// IsNull returns whether the outpoint is the designated coinbase prevout: a
// zero hash with a maximal index.
func (o *OutPoint) IsNull() bool {
	return o.Hash.IsZero() && o.Index == MaxPrevOutIndex
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	Witness          [][]byte
	Sequence         uint32
}

// NewTxIn returns a new transaction input with the provided previous
// outpoint and witness stack, and the default sequence.
func NewTxIn(prevOut *OutPoint, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input, excluding its witness stack.
func (t *TxIn) SerializeSize() int {
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Sequence
	// 4 bytes.
	return minTxInPayload
}

// witnessSerializeSize returns the number of bytes it would take to
// serialize the input's witness stack.
func (t *TxIn) witnessSerializeSize() int {
	n := VarIntSerializeSize(uint64(len(t.Witness)))
	for _, item := range t.Witness {
		n += VarIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}

// TxOut defines a transaction output.
type TxOut struct {
	Value    util.Amount
	Address  util.Address
	Covenant Covenant
}

// NewTxOut returns a new transaction output with the provided value,
// address and covenant.
func NewTxOut(value util.Amount, address util.Address, covenant Covenant) *TxOut {
	return &TxOut{
		Value:    value,
		Address:  address,
		Covenant: covenant,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + address version 1 byte + varbytes hash + covenant.
	return 8 + 1 + VarIntSerializeSize(uint64(len(t.Address.Hash))) +
		len(t.Address.Hash) + t.Covenant.SerializeSize()
}

// MsgTx implements the Message interface and represents a transaction
// message. It is used to deliver transaction information in response to a
// getdata message for a given transaction, and carries the covenants that
// drive the name-auction state machine.
type MsgTx struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new tx message that conforms to the Message interface.
// The return instance has a default version of TxVersion and there are no
// transaction inputs or outputs. Also, the lock time is set to zero to
// indicate the transaction is valid immediately as opposed to some time in
// the future.
func NewMsgTx(version uint32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, 8),
		TxOut:   make([]*TxOut, 0, 8),
	}
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// IsCoinBase determines whether or not a transaction is a coinbase. A
// coinbase is a special transaction created by miners that has no inputs.
// This is represented in the block chain by a transaction with a single
// input that has a previous output transaction index set to the maximum
// value along with a zero hash.
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}
	return msg.TxIn[0].PreviousOutPoint.IsNull()
}

// TxHash generates the hash for the transaction: blake2b over the
// witness-stripped serialization.
func (msg *MsgTx) TxHash() hash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSizeStripped()))
	// Ignore the error returns since the encode cannot fail when writing
	// to a bytes.Buffer.
	_ = msg.SerializeNoWitness(buf)
	return hash.HashB(buf.Bytes())
}

// WitnessHash generates the hash of the transaction including witness
// data.
func (msg *MsgTx) WitnessHash() hash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	_ = msg.Serialize(buf)
	return hash.HashB(buf.Bytes())
}

// Deserialize decodes a transaction from r, including witness stacks.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	err := ReadElement(r, &msg.Version)
	if err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(maxTxInPerMessage) {
		return messageError("MsgTx.Deserialize", fmt.Sprintf(
			"too many input transactions [count %d, max %d]", count,
			maxTxInPerMessage))
	}

	msg.TxIn = make([]*TxIn, count)
	for i := range msg.TxIn {
		ti := TxIn{}
		err = readTxIn(r, &ti)
		if err != nil {
			return err
		}
		msg.TxIn[i] = &ti
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(maxTxOutPerMessage) {
		return messageError("MsgTx.Deserialize", fmt.Sprintf(
			"too many output transactions [count %d, max %d]", count,
			maxTxOutPerMessage))
	}

	msg.TxOut = make([]*TxOut, count)
	for i := range msg.TxOut {
		to := TxOut{}
		err = readTxOut(r, &to)
		if err != nil {
			return err
		}
		msg.TxOut[i] = &to
	}

	err = ReadElement(r, &msg.LockTime)
	if err != nil {
		return err
	}

	// Witness stacks trail the base transaction, one per input.
	for _, ti := range msg.TxIn {
		ti.Witness, err = readWitness(r)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeserializeNoWitness decodes a transaction from r in its witness-stripped
// form.
func (msg *MsgTx) DeserializeNoWitness(r io.Reader) error {
	err := ReadElement(r, &msg.Version)
	if err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(maxTxInPerMessage) {
		return messageError("MsgTx.DeserializeNoWitness", fmt.Sprintf(
			"too many input transactions [count %d, max %d]", count,
			maxTxInPerMessage))
	}

	msg.TxIn = make([]*TxIn, count)
	for i := range msg.TxIn {
		ti := TxIn{}
		err = readTxIn(r, &ti)
		if err != nil {
			return err
		}
		msg.TxIn[i] = &ti
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(maxTxOutPerMessage) {
		return messageError("MsgTx.DeserializeNoWitness", fmt.Sprintf(
			"too many output transactions [count %d, max %d]", count,
			maxTxOutPerMessage))
	}

	msg.TxOut = make([]*TxOut, count)
	for i := range msg.TxOut {
		to := TxOut{}
		err = readTxOut(r, &to)
		if err != nil {
			return err
		}
		msg.TxOut[i] = &to
	}

	return ReadElement(r, &msg.LockTime)
}

// Serialize encodes the transaction to w, including witness stacks.
func (msg *MsgTx) Serialize(w io.Writer) error {
	err := msg.SerializeNoWitness(w)
	if err != nil {
		return err
	}

	for _, ti := range msg.TxIn {
		err = writeWitness(w, ti.Witness)
		if err != nil {
			return err
		}
	}
	return nil
}

// SerializeNoWitness encodes the transaction to w in its witness-stripped
// form. This is the form committed to by TxHash and the merkle root.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	err := WriteElement(w, msg.Version)
	if err != nil {
		return err
	}

	err = WriteVarInt(w, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		err = writeTxIn(w, ti)
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		err = writeTxOut(w, to)
		if err != nil {
			return err
		}
	}

	return WriteElement(w, msg.LockTime)
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction including witness data.
func (msg *MsgTx) SerializeSize() int {
	n := msg.SerializeSizeStripped()
	for _, ti := range msg.TxIn {
		n += ti.witnessSerializeSize()
	}
	return n
}

// SerializeSizeStripped returns the number of bytes it would take to
// serialize the transaction without witness data.
func (msg *MsgTx) SerializeSizeStripped() int {
	// Version 4 bytes + LockTime 4 bytes + serialized varint size for
	// the number of transaction inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// readTxIn reads the next sequence of bytes from r as a transaction input,
// excluding the witness stack.
func readTxIn(r io.Reader, ti *TxIn) error {
	return ReadElements(r, &ti.PreviousOutPoint.Hash,
		&ti.PreviousOutPoint.Index, &ti.Sequence)
}

// writeTxIn encodes ti to w, excluding the witness stack.
func writeTxIn(w io.Writer, ti *TxIn) error {
	return WriteElements(w, &ti.PreviousOutPoint.Hash,
		ti.PreviousOutPoint.Index, ti.Sequence)
}

// readTxOut reads the next sequence of bytes from r as a transaction
// output.
func readTxOut(r io.Reader, to *TxOut) error {
	var value uint64
	err := ReadElement(r, &value)
	if err != nil {
		return err
	}
	to.Value = util.Amount(value)

	err = ReadElement(r, &to.Address.Version)
	if err != nil {
		return err
	}
	to.Address.Hash, err = ReadVarBytes(r, util.MaxAddressHashSize,
		"address hash")
	if err != nil {
		return err
	}

	return readCovenant(r, &to.Covenant)
}

// writeTxOut encodes to to w.
func writeTxOut(w io.Writer, to *TxOut) error {
	err := WriteElements(w, uint64(to.Value), to.Address.Version)
	if err != nil {
		return err
	}

	err = WriteVarBytes(w, to.Address.Hash)
	if err != nil {
		return err
	}

	return writeCovenant(w, &to.Covenant)
}

// readWitness reads a witness stack from r.
func readWitness(r io.Reader) ([][]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxWitnessItemsPerInput {
		return nil, messageError("readWitness", fmt.Sprintf(
			"too many witness items [count %d, max %d]", count,
			maxWitnessItemsPerInput))
	}

	// Leave the stack nil for an empty witness so decode(encode(tx))
	// reproduces the constructors' representation.
	var witness [][]byte
	if count > 0 {
		witness = make([][]byte, count)
	}
	for i := range witness {
		witness[i], err = ReadVarBytes(r, maxWitnessItemSize,
			"witness item")
		if err != nil {
			return nil, err
		}
	}
	return witness, nil
}

// writeWitness writes a witness stack to w.
func writeWitness(w io.Writer, witness [][]byte) error {
	err := WriteVarInt(w, uint64(len(witness)))
	if err != nil {
		return err
	}
	for _, item := range witness {
		err = WriteVarBytes(w, item)
		if err != nil {
			return err
		}
	}
	return nil
}
