// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package naming

import "fmt"

// ErrorCode identifies a kind of covenant rule violation.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrUnknownCovenant indicates a covenant type outside the recognized
	// range reached the state machine.
	ErrUnknownCovenant ErrorCode = iota

	// ErrNameReserved indicates a bid was placed on a name reserved for
	// the genesis claimant.
	ErrNameReserved

	// ErrNameNotReserved indicates a CLAIM on a name outside the reserved
	// root zone.
	ErrNameNotReserved

	// ErrAlreadyClaimed indicates a CLAIM on a name whose auction record
	// has already been touched.
	ErrAlreadyClaimed

	// ErrBidOutOfWindow indicates a BID after the bidding window closed.
	ErrBidOutOfWindow

	// ErrRevealOutOfWindow indicates a REVEAL outside the reveal window.
	ErrRevealOutOfWindow

	// ErrBadBlind indicates a REVEAL whose value and nonce do not hash to
	// any blind recorded during bidding.
	ErrBadBlind

	// ErrAuctionNotClosed indicates a covenant that requires a settled
	// auction arrived while the auction was still running.
	ErrAuctionNotClosed

	// ErrRegisterOutOfWindow indicates a REGISTER before the reveal
	// window closed.
	ErrRegisterOutOfWindow

	// ErrNoWinner indicates a REGISTER on an auction with no revealed
	// bids.
	ErrNoWinner

	// ErrNoRedeemableBid indicates a REDEEM with no losing revealed bid
	// left to reclaim.
	ErrNoRedeemableBid

	// ErrNameExpired indicates an operation on a name whose renewal
	// lapsed.
	ErrNameExpired

	// ErrNotOwned indicates UPDATE, RENEW, TRANSFER or REVOKE on a name
	// that is not in an owned state.
	ErrNotOwned

	// ErrBadRenewalBlock indicates a RENEW whose block hash does not name
	// a recent main chain entry.
	ErrBadRenewalBlock

	// ErrBadTransferAddress indicates a TRANSFER whose recipient address
	// item is malformed.
	ErrBadTransferAddress

	// ErrTransferPending indicates a TRANSFER while another transfer is
	// already pending.
	ErrTransferPending

	// ErrNoTransfer indicates a FINALIZE with no pending transfer.
	ErrNoTransfer

	// ErrTransferLocked indicates a FINALIZE before the transfer delay
	// elapsed.
	ErrTransferLocked

	// ErrNameRevoked indicates an operation on a revoked name.
	ErrNameRevoked
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrUnknownCovenant:     "ErrUnknownCovenant",
	ErrNameReserved:        "ErrNameReserved",
	ErrNameNotReserved:     "ErrNameNotReserved",
	ErrAlreadyClaimed:      "ErrAlreadyClaimed",
	ErrBidOutOfWindow:      "ErrBidOutOfWindow",
	ErrRevealOutOfWindow:   "ErrRevealOutOfWindow",
	ErrBadBlind:            "ErrBadBlind",
	ErrAuctionNotClosed:    "ErrAuctionNotClosed",
	ErrRegisterOutOfWindow: "ErrRegisterOutOfWindow",
	ErrNoWinner:            "ErrNoWinner",
	ErrNoRedeemableBid:     "ErrNoRedeemableBid",
	ErrNameExpired:         "ErrNameExpired",
	ErrNotOwned:            "ErrNotOwned",
	ErrBadRenewalBlock:     "ErrBadRenewalBlock",
	ErrBadTransferAddress:  "ErrBadTransferAddress",
	ErrTransferPending:     "ErrTransferPending",
	ErrNoTransfer:          "ErrNoTransfer",
	ErrTransferLocked:      "ErrTransferLocked",
	ErrNameRevoked:         "ErrNameRevoked",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a covenant rule violation. It is used to indicate
// that applying a block's covenants failed due to one of the auction
// transition rules. The caller can use type assertions to determine if a
// failure was specifically due to a rule violation and access the
// ErrorCode field to ascertain the specific reason.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
