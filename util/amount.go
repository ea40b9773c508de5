// Copyright (c) 2013, 2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// AmountUnit describes a method of converting an Amount to something
// other than the base unit of a coin. The value of the AmountUnit is the
// exponent component of the decadic multiple to convert from an amount in
// coins to an amount counted in units.
type AmountUnit int

// These constants define various units used when describing a monetary
// amount. The base unit, the "dollarydoo", is one millionth of a coin.
const (
	AmountMegaCoin  AmountUnit = 6
	AmountKiloCoin  AmountUnit = 3
	AmountCoin      AmountUnit = 0
	AmountMilliCoin AmountUnit = -3
	AmountDoo       AmountUnit = -6
)

// String returns the unit as a string. For recognized units, the SI prefix is
// used, or "doo" for the base unit. For all unrecognized units, "1eN HNS" is
// returned, where N is the AmountUnit.
func (u AmountUnit) String() string {
	switch u {
	case AmountMegaCoin:
		return "MHNS"
	case AmountKiloCoin:
		return "kHNS"
	case AmountCoin:
		return "HNS"
	case AmountMilliCoin:
		return "mHNS"
	case AmountDoo:
		return "doo"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " HNS"
	}
}

// Amount represents the base coin monetary unit (colloquially referred to as
// a "dollarydoo"). A single Amount is equal to 1e-6 of a coin.
type Amount uint64

// round converts a floating point number, which may or may not be
// representable as an integer, to the Amount integer type by rounding to the
// nearest integer. This is performed by adding or subtracting 0.5 depending
// on the sign, and relying on integer truncation to round the value to the
// nearest Amount.
func round(f float64) Amount {
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing some
// value in coins. NewAmount errors if f is NaN or +-Infinity, negative, or
// if it is too large to be held by the amount type.
//
// NewAmount is for specifically for converting coins to dollarydoos. For
// creating a new Amount with an int64 value which denotes a quantity of
// dollarydoos, do a simple type conversion from type int64 to Amount.
func NewAmount(f float64) (Amount, error) {
	// The amount is only considered invalid if it cannot be represented
	// as an integer type. This may happen if f is NaN or +-Infinity.
	switch {
	case math.IsNaN(f):
		fallthrough
	case math.IsInf(f, 1):
		fallthrough
	case math.IsInf(f, -1):
		return 0, errors.New("invalid coin amount")
	case f < 0:
		return 0, errors.New("coin amount may not be negative")
	}

	return round(f * CoinPerHNS), nil
}

// ToUnit converts a monetary amount counted in coin base units to a floating
// point value representing an amount of coins.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+6))
}

// ToCoin is the equivalent of calling ToUnit with AmountCoin.
func (a Amount) ToCoin() float64 {
	return a.ToUnit(AmountCoin)
}

// Format formats a monetary amount counted in coin base units as a string
// for a given unit. The conversion will succeed for any unit, however, known
// units will be formatted with an appended label describing the units with
// SI notation, or "doo" for the base unit.
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	return strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+6), 64) + units
}

// String is the equivalent of calling Format with AmountCoin.
func (a Amount) String() string {
	return a.Format(AmountCoin)
}

// MulF64 multiplies an Amount by a floating point value. While this is not
// an operation that must typically be done by a full node or wallet, it is
// useful for services that build on top of the chain (fee estimation for
// example).
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
