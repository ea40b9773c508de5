// Package consensus holds the consensus-critical constants and the pure
// arithmetic they govern: compact difficulty targets, proof-of-work checks,
// the subsidy schedule and version-bit signalling.
package consensus

import "github.com/handshake-org/hskd/util"

const (
	// Exponent is the number of decimal places in one coin.
	Exponent = 6

	// Coin is the number of dollarydoos in one coin.
	Coin = util.CoinPerHNS

	// MaxSubsidy is the total amount issuable by the reward schedule.
	MaxSubsidy = 680000000 * Coin

	// MaxInvestors is the amount reserved for the investor output of the
	// genesis coinbase.
	MaxInvestors = 102000000 * Coin

	// MaxFoundation is the amount reserved for the foundation output of
	// the genesis coinbase.
	MaxFoundation = 102000000 * Coin

	// MaxCreators is the amount reserved for the creators output of the
	// genesis coinbase.
	MaxCreators = 102000000 * Coin

	// MaxAirdrop is the amount reserved for the airdrop output of the
	// genesis coinbase.
	MaxAirdrop = 1054000000 * Coin

	// MaxPremine is the sum of all genesis coinbase reservations.
	MaxPremine = 1360000000 * Coin

	// MaxMoney is the maximum amount of dollarydoos that will ever exist.
	MaxMoney = MaxPremine + MaxSubsidy

	// BaseReward is the block subsidy before any halvings.
	BaseReward = 1000 * Coin

	// GenesisReward is the subsidy of the genesis block. The 4.42 extra
	// coins top the cumulative issuance up to exactly MaxMoney.
	GenesisReward = BaseReward + 4420000

	// MaxRewardHalvings is the number of halvings after which the
	// subsidy is pinned to zero.
	MaxRewardHalvings = 52
)

// Block budgets.
const (
	// MaxBlockSize is the maximum witness-stripped block size in bytes.
	MaxBlockSize = 1000000

	// MaxRawBlockSize is the maximum serialized block size including
	// witness data.
	MaxRawBlockSize = 4000000

	// MaxBlockWeight is the maximum block weight.
	MaxBlockWeight = 4000000

	// MaxBlockSigops is the maximum signature-operation cost per block.
	MaxBlockSigops = 80000

	// MaxBlockUpdates is the maximum number of name updates per block.
	MaxBlockUpdates = 500

	// WitnessScaleFactor determines the level of "discount" witness data
	// receives in the weight calculation.
	WitnessScaleFactor = 4
)

// Timing and sequence-lock constants.
const (
	// MedianTimespan is the number of previous blocks over which the
	// median time is calculated.
	MedianTimespan = 11

	// LocktimeThreshold is the number below which a locktime is
	// interpreted as a block height rather than a UNIX timestamp.
	LocktimeThreshold = 500000000

	// SequenceDisableFlag disables relative-locktime interpretation of a
	// sequence number when set.
	SequenceDisableFlag = 1 << 31

	// SequenceTypeFlag signals a time-based rather than height-based
	// relative lock.
	SequenceTypeFlag = 1 << 22

	// SequenceGranularity is the time-based relative lock granularity in
	// powers of two seconds.
	SequenceGranularity = 9

	// SequenceMask extracts the lock value from a sequence number.
	SequenceMask = 0xffff
)

// Script budgets. The core does not execute scripts, but enforces their
// consensus envelope on decode.
const (
	// MaxScriptSize is the maximum serialized script size in bytes.
	MaxScriptSize = 10000

	// MaxScriptStack is the maximum script stack depth.
	MaxScriptStack = 1000

	// MaxScriptPush is the maximum size of a single pushed element.
	MaxScriptPush = 520

	// MaxScriptOps is the maximum number of non-push opcodes per script.
	MaxScriptOps = 201

	// MaxMultisigPubkeys is the maximum number of keys in a checkmultisig.
	MaxMultisigPubkeys = 20
)

// Covenant budgets.
const (
	// MaxCovenantItems is the maximum number of items a covenant may
	// carry. REGISTER carries the most: name, resource, tree hash.
	MaxCovenantItems = 3

	// MaxCovenantItemSize is the maximum size of a single covenant item.
	// Sized for the resource-record encoding.
	MaxCovenantItemSize = 512

	// MaxNameSize is the maximum length of a top-level name.
	MaxNameSize = 63
)
