package blockchain

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/naming"
)

// ErrorCode identifies a kind of block validation failure.
type ErrorCode int

// Validation failure codes. Rule errors are fully local: the offending
// block is dropped and the tip is unchanged.
const (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists in the index.
	ErrDuplicateBlock ErrorCode = iota

	// ErrOrphanBlock indicates the block's parent is not known to the
	// index.
	ErrOrphanBlock

	// ErrNoTransactions indicates the block does not contain a
	// coinbase.
	ErrNoTransactions

	// ErrFirstTxNotCoinbase indicates the first transaction of the
	// block is not a coinbase.
	ErrFirstTxNotCoinbase

	// ErrMultipleCoinbases indicates a block contains more than one
	// coinbase transaction.
	ErrMultipleCoinbases

	// ErrBlockTooBig indicates a serialized block exceeds one of the
	// size or weight budgets.
	ErrBlockTooBig

	// ErrTooManyUpdates indicates a block carries more covenant
	// outputs than the per-block budget.
	ErrTooManyUpdates

	// ErrUnexpectedDifficulty indicates the header's bits do not match
	// the required target for the network.
	ErrUnexpectedDifficulty

	// ErrHighHash indicates the block hash does not meet the target
	// difficulty encoded in the header.
	ErrHighHash

	// ErrBadCuckoo indicates the header's cuckoo-cycle solution does
	// not verify.
	ErrBadCuckoo

	// ErrBadMerkleRoot indicates the calculated merkle root does not
	// match the header commitment.
	ErrBadMerkleRoot

	// ErrBadWitnessRoot indicates the calculated witness root does not
	// match the header commitment.
	ErrBadWitnessRoot

	// ErrTimeTooOld indicates the header timestamp is not after the
	// median time of the previous blocks.
	ErrTimeTooOld

	// ErrSideChainStall indicates a block extends a side chain with
	// less cumulative work than the current tip. Not a failure of the
	// block itself; it is kept for a potential future reorg.
	ErrSideChainStall
)

var errorCodeStrings = map[ErrorCode]string{
	ErrDuplicateBlock:       "ErrDuplicateBlock",
	ErrOrphanBlock:          "ErrOrphanBlock",
	ErrNoTransactions:       "ErrNoTransactions",
	ErrFirstTxNotCoinbase:   "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:    "ErrMultipleCoinbases",
	ErrBlockTooBig:          "ErrBlockTooBig",
	ErrTooManyUpdates:       "ErrTooManyUpdates",
	ErrUnexpectedDifficulty: "ErrUnexpectedDifficulty",
	ErrHighHash:             "ErrHighHash",
	ErrBadCuckoo:            "ErrBadCuckoo",
	ErrBadMerkleRoot:        "ErrBadMerkleRoot",
	ErrBadWitnessRoot:       "ErrBadWitnessRoot",
	ErrTimeTooOld:           "ErrTimeTooOld",
	ErrSideChainStall:       "ErrSideChainStall",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a block that broke a consensus rule. The caller can
// use type assertions on the wrapped error to access the ErrorCode and
// react to specific failures, for example to ban a misbehaving peer.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return e.Description
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsRuleError reports whether err or any error it wraps is a RuleError,
// from this package or from the naming covenant machine.
func IsRuleError(err error) bool {
	var blockErr RuleError
	var covenantErr naming.RuleError
	return errors.As(err, &blockErr) || errors.As(err, &covenantErr)
}

// AssertError identifies an internal consistency failure: a violated
// invariant such as a mismatched tree root after apply or an undo log that
// cannot be replayed. Assert errors indicate database corruption; the
// chain writer halts rather than swallow one.
type AssertError string

func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

func assertError(format string, args ...interface{}) AssertError {
	return AssertError(fmt.Sprintf(format, args...))
}
