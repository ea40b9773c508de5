// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/genesis"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// Net identifies a network by its wire magic.
type Net uint32

// Network magic numbers.
const (
	MainNet    Net = 0x6d5ba6d8
	TestNet    Net = 0x740fca23
	RegTestNet Net = 0x41a52db4
	SimNet     Net = 0x9fb2e2ba
)

// bigOne is 1 represented as a big.Int. It is defined here to avoid
// the overhead of creating it multiple times.
var bigOne = big.NewInt(1)

// mainPowMax is the highest proof of work value a block can have for the
// main network. It is the value 2^224 - 1.
var mainPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

// regressionPowMax is the highest proof of work value a block can have
// for the regression and simulation test networks. It is the value
// 2^255 - 1.
var regressionPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// CuckooParams are the proof-of-work graph parameters of a network.
type CuckooParams struct {
	// Bits is the size exponent of the edge space.
	Bits uint8

	// Size is the required cycle length.
	Size uint32

	// Ease is the percentage of the edge space that is usable.
	Ease uint32
}

// Params defines a network by its parameters. These parameters may be
// used by applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net Net

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// Bech32HRP is the human-readable part of the network's addresses.
	Bech32HRP string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the genesis block hash.
	GenesisHash hash.Hash

	// PowBits is the compact target every block of the reviewed core is
	// validated against. Difficulty retargeting happens above this
	// layer.
	PowBits uint32

	// PowMax is the highest admissible proof of work target.
	PowMax *big.Int

	// Cuckoo holds the proof-of-work graph parameters.
	Cuckoo CuckooParams

	// Keys are the reserved premine address hashes.
	Keys genesis.Keys

	// GenesisTime is the timestamp of the genesis header.
	GenesisTime uint64

	// BiddingPeriod is the length in blocks of a name's bidding window,
	// starting at the opening bid.
	BiddingPeriod uint32

	// RevealPeriod is the length in blocks of the reveal window that
	// follows the bidding window.
	RevealPeriod uint32

	// RenewalWindow is how far back, in blocks, a RENEW covenant may
	// anchor itself to the main chain.
	RenewalWindow uint32

	// ExpirationWindow is the number of blocks after its last renewal at
	// which a settled name expires and becomes biddable again.
	ExpirationWindow uint32

	// TransferLockup is the delay in blocks between a TRANSFER and the
	// earliest legal FINALIZE.
	TransferLockup uint32

	// HalvingInterval is the number of blocks between subsidy halvings.
	HalvingInterval uint32
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         MainNet,
	DefaultPort: "12038",
	Bech32HRP:   "hs",

	PowBits: 0x1c00ffff,
	PowMax:  mainPowMax,
	Cuckoo:  CuckooParams{Bits: 29, Size: 42, Ease: 50},

	GenesisTime:      1514765688,
	BiddingPeriod:    720,
	RevealPeriod:     1440,
	RenewalWindow:    4320,
	ExpirationWindow: 105120,
	TransferLockup:   288,
	HalvingInterval:  170000,
}

// TestNetParams defines the network parameters for the test network.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         TestNet,
	DefaultPort: "13038",
	Bech32HRP:   "ts",

	PowBits: 0x1d00ffff,
	PowMax:  regressionPowMax,
	Cuckoo:  CuckooParams{Bits: 29, Size: 42, Ease: 50},

	GenesisTime:      1514765689,
	BiddingPeriod:    50,
	RevealPeriod:     100,
	RenewalWindow:    1000,
	ExpirationWindow: 5000,
	TransferLockup:   20,
	HalvingInterval:  170000,
}

// RegressionNetParams defines the network parameters for the regression
// test network. Its difficulty floor lets a single machine produce
// blocks at will.
var RegressionNetParams = Params{
	Name:        "regtest",
	Net:         RegTestNet,
	DefaultPort: "14038",
	Bech32HRP:   "rs",

	PowBits: 0x207fffff,
	PowMax:  regressionPowMax,
	Cuckoo:  CuckooParams{Bits: 8, Size: 4, Ease: 100},

	GenesisTime:      1514765690,
	BiddingPeriod:    5,
	RevealPeriod:     10,
	RenewalWindow:    100,
	ExpirationWindow: 2500,
	TransferLockup:   10,
	HalvingInterval:  2500,
}

// SimNetParams defines the network parameters for the simulation test
// network.
var SimNetParams = Params{
	Name:        "simnet",
	Net:         SimNet,
	DefaultPort: "15038",
	Bech32HRP:   "ss",

	PowBits: 0x207fffff,
	PowMax:  regressionPowMax,
	Cuckoo:  CuckooParams{Bits: 16, Size: 18, Ease: 50},

	GenesisTime:      1514765691,
	BiddingPeriod:    25,
	RevealPeriod:     50,
	RenewalWindow:    500,
	ExpirationWindow: 2500,
	TransferLockup:   10,
	HalvingInterval:  170000,
}

var (
	// ErrDuplicateNet describes an error where the parameters for a
	// network could not be set due to the network already being a
	// standard network or previously-registered via this package.
	ErrDuplicateNet = errors.New("duplicate network")

	registeredNets = make(map[Net]struct{})
)

// Register registers the network parameters for a network. This may error
// with ErrDuplicateNet if the network is already registered (either due
// to a previous Register call, or the network being one of the default
// networks).
func Register(params *Params) error {
	if _, ok := registeredNets[params.Net]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Net] = struct{}{}
	return nil
}

// mustRegister performs the same function as Register except it panics if
// there is an error. This should only be called from package init
// functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

// buildGenesis populates the genesis block and hash of a parameter set
// from the deterministic builder.
func buildGenesis(params *Params) {
	block, err := genesis.Build(&genesis.Params{
		Time:     params.GenesisTime,
		Bits:     params.PowBits,
		Keys:     params.Keys,
		Solution: make(wire.Solution, params.Cuckoo.Size),
	})
	if err != nil {
		panic("failed to build genesis block: " + err.Error())
	}
	params.GenesisBlock = block
	params.GenesisHash = block.BlockHash()
}

func init() {
	// All four standard networks pay their premine to the genesis key
	// until real keys are deployed.
	for _, params := range []*Params{&MainNetParams, &TestNetParams,
		&RegressionNetParams, &SimNetParams} {
		params.Keys = genesis.Keys{
			Investors:  genesis.GenesisKeyHash,
			Foundation: genesis.GenesisKeyHash,
			Claimant:   genesis.GenesisKeyHash,
			Creators:   genesis.GenesisKeyHash,
			Airdrop:    genesis.GenesisKeyHash,
		}
		buildGenesis(params)
		mustRegister(params)
	}
}
