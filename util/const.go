// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

const (
	// CoinPerHNS is the number of base units ("dollarydoos") in one coin.
	CoinPerHNS = 1000000

	// MaxDoo is the maximum amount of dollarydoos that will ever exist:
	// the premine plus the full subsidy schedule.
	MaxDoo = 2040000000 * CoinPerHNS
)
