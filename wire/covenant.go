package wire

import (
	"fmt"
	"io"

	"github.com/handshake-org/hskd/util/hash"
)

// CovenantType identifies the action a covenant performs on the name it
// references.
type CovenantType uint8

// Recognized covenant types. Anything above CovenantRevoke is a parse
// error.
const (
	// CovenantNone is a pure value transfer.
	CovenantNone CovenantType = iota

	// CovenantClaim stakes a claim on a pre-reserved root name.
	CovenantClaim

	// CovenantBid commits to a hidden bid. The output value is the
	// lockup, not the bid.
	CovenantBid

	// CovenantReveal reveals the true bid amount.
	CovenantReveal

	// CovenantRedeem reclaims a losing bid's lockup value.
	CovenantRedeem

	// CovenantRegister installs the initial DNS resource for the winning
	// name.
	CovenantRegister

	// CovenantUpdate mutates the resource of a live name.
	CovenantUpdate

	// CovenantRenew extends a name's expiry.
	CovenantRenew

	// CovenantTransfer begins a delayed ownership transfer.
	CovenantTransfer

	// CovenantFinalize completes a transfer after the delay.
	CovenantFinalize

	// CovenantRevoke permanently burns the name.
	CovenantRevoke
)

// covenantTypeStrings maps covenant types to their names for display.
var covenantTypeStrings = map[CovenantType]string{
	CovenantNone:     "NONE",
	CovenantClaim:    "CLAIM",
	CovenantBid:      "BID",
	CovenantReveal:   "REVEAL",
	CovenantRedeem:   "REDEEM",
	CovenantRegister: "REGISTER",
	CovenantUpdate:   "UPDATE",
	CovenantRenew:    "RENEW",
	CovenantTransfer: "TRANSFER",
	CovenantFinalize: "FINALIZE",
	CovenantRevoke:   "REVOKE",
}

// String returns the covenant type as a human-readable name.
func (t CovenantType) String() string {
	s, ok := covenantTypeStrings[t]
	if !ok {
		return fmt.Sprintf("UNKNOWN[%d]", uint8(t))
	}
	return s
}

// covenantArity gives the exact number of items each covenant type carries.
// Every covenant type has a fixed positional schema; decode-time validation
// rejects mis-shaped covenants early.
var covenantArity = map[CovenantType]int{
	CovenantNone:     0,
	CovenantClaim:    1, // name
	CovenantBid:      2, // name, blind
	CovenantReveal:   2, // name, nonce
	CovenantRedeem:   1, // name
	CovenantRegister: 3, // name, resource, tree hash
	CovenantUpdate:   2, // name, resource
	CovenantRenew:    2, // name, block hash
	CovenantTransfer: 2, // name, address
	CovenantFinalize: 1, // name
	CovenantRevoke:   1, // name
}

// hashItemPositions lists, per covenant type, which item positions must be
// exactly 32 bytes.
var hashItemPositions = map[CovenantType][]int{
	CovenantBid:      {1}, // blind
	CovenantReveal:   {1}, // nonce
	CovenantRegister: {2}, // tree hash
	CovenantRenew:    {1}, // block hash
}

// Covenant is the typed side-channel carried by every transaction output.
// It drives the name-auction state machine. Items are length-prefixed byte
// strings with a fixed positional schema per type.
type Covenant struct {
	Type  CovenantType
	Items [][]byte
}

// NewCovenant returns a covenant of the given type with the given items.
// The shape is validated the same way the decoder validates it.
func NewCovenant(typ CovenantType, items ...[]byte) (*Covenant, error) {
	c := &Covenant{Type: typ, Items: items}
	if err := c.checkSanity(); err != nil {
		return nil, err
	}
	return c, nil
}

// IsName returns whether the covenant references a name at all.
func (c *Covenant) IsName() bool {
	return c.Type != CovenantNone
}

// Name returns the raw name item. The covenant must reference a name.
func (c *Covenant) Name() []byte {
	return c.Items[0]
}

// NameHash returns blake2b of the name item, the auction store key.
func (c *Covenant) NameHash() hash.Hash {
	return hash.HashB(c.Items[0])
}

// checkSanity enforces the positional schema: item arity, per-item size
// bounds and exact hash sizes where the schema demands them.
func (c *Covenant) checkSanity() error {
	want, known := covenantArity[c.Type]
	if !known {
		return messageError("Covenant", fmt.Sprintf(
			"unknown covenant type %d", uint8(c.Type)))
	}
	if len(c.Items) != want {
		return messageError("Covenant", fmt.Sprintf(
			"covenant %v carries %d items, want %d", c.Type,
			len(c.Items), want))
	}

	for i, item := range c.Items {
		if len(item) > maxCovenantItemSize {
			return messageError("Covenant", fmt.Sprintf(
				"covenant %v item %d is %d bytes, max %d", c.Type,
				i, len(item), maxCovenantItemSize))
		}
	}

	if c.IsName() {
		if len(c.Items[0]) == 0 || len(c.Items[0]) > maxNameSize {
			return messageError("Covenant", fmt.Sprintf(
				"covenant %v name is %d bytes, want 1..%d", c.Type,
				len(c.Items[0]), maxNameSize))
		}
	}

	for _, pos := range hashItemPositions[c.Type] {
		if len(c.Items[pos]) != hash.Size {
			return messageError("Covenant", fmt.Sprintf(
				"covenant %v item %d is %d bytes, want %d", c.Type,
				pos, len(c.Items[pos]), hash.Size))
		}
	}

	return nil
}

// These bounds mirror the consensus covenant budget. They are restated here
// so the decoder has no import cycle with the consensus package.
const (
	maxCovenantItemSize = 512
	maxNameSize         = 63
)

// readCovenant reads a covenant from r and validates its shape.
func readCovenant(r io.Reader, c *Covenant) error {
	typ, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if typ > uint64(CovenantRevoke) {
		return messageError("readCovenant", fmt.Sprintf(
			"unknown covenant type %d", typ))
	}
	c.Type = CovenantType(typ)

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(len(covenantArity)) {
		return messageError("readCovenant", fmt.Sprintf(
			"too many covenant items [count %d]", count))
	}

	// Leave Items nil for an empty list so decode(encode(c)) reproduces
	// the constructors' representation.
	c.Items = nil
	if count > 0 {
		c.Items = make([][]byte, count)
	}
	for i := range c.Items {
		c.Items[i], err = ReadVarBytes(r, maxCovenantItemSize,
			"covenant item")
		if err != nil {
			return err
		}
	}

	return c.checkSanity()
}

// writeCovenant writes a covenant to w.
func writeCovenant(w io.Writer, c *Covenant) error {
	err := WriteVarInt(w, uint64(c.Type))
	if err != nil {
		return err
	}

	err = WriteVarInt(w, uint64(len(c.Items)))
	if err != nil {
		return err
	}
	for _, item := range c.Items {
		err = WriteVarBytes(w, item)
		if err != nil {
			return err
		}
	}
	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// covenant.
func (c *Covenant) SerializeSize() int {
	n := VarIntSerializeSize(uint64(c.Type)) +
		VarIntSerializeSize(uint64(len(c.Items)))
	for _, item := range c.Items {
		n += VarIntSerializeSize(uint64(len(item))) + len(item)
	}
	return n
}
