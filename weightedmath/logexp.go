// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Exponentiation and logarithm over signed 18 decimal fixed point numbers.
// Intermediate values use 20 or 36 decimals. Division truncates toward zero.

var (
	one18 = big.NewInt(1e18)
	one20 = mustBig("100000000000000000000")
	one36 = mustBig("1000000000000000000000000000000000000")

	maxNaturalExponent = new(big.Int).Mul(big.NewInt(130), one18)
	minNaturalExponent = new(big.Int).Mul(big.NewInt(-41), one18)

	ln36LowerBound = big.NewInt(1e18 - 1e17)
	ln36UpperBound = big.NewInt(1e18 + 1e17)

	mildExponentBound = new(big.Int).Quo(new(big.Int).Lsh(big.NewInt(1), 254), one20)

	// x0 and x1 are 18 decimal exponents; a0 and a1 are e^x without decimals.
	x0 = mustBig("128000000000000000000")
	a0 = mustBig("38877084059945950922200000000000000000000000000000000000")
	x1 = mustBig("64000000000000000000")
	a1 = mustBig("6235149080811616882910000000")

	// 20 decimal exponents 2^5 .. 2^-4 and e^x.
	expTable = []struct{ x, a *big.Int }{
		{mustBig("3200000000000000000000"), mustBig("7896296018268069516100000000000000")},
		{mustBig("1600000000000000000000"), mustBig("888611052050787263676000000")},
		{mustBig("800000000000000000000"), mustBig("298095798704172827474000")},
		{mustBig("400000000000000000000"), mustBig("5459815003314423907810")},
		{mustBig("200000000000000000000"), mustBig("738905609893065022723")},
		{mustBig("100000000000000000000"), mustBig("271828182845904523536")},
		{mustBig("50000000000000000000"), mustBig("164872127070012814685")},
		{mustBig("25000000000000000000"), mustBig("128402541668774148407")},
		{mustBig("12500000000000000000"), mustBig("113314845306682631683")},
		{mustBig("6250000000000000000"), mustBig("106449445891785942956")},
	}

	bigHundred = big.NewInt(100)
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid constant " + s)
	}
	return v
}

// Pow returns x^y where both operands are unsigned 18 decimal fixed point.
// Results too small to represent are zero.
func Pow(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return One(), nil
	}
	if x.IsZero() {
		return new(uint256.Int), nil
	}
	if x.BitLen() > 255 {
		return nil, fmt.Errorf("%w: pow base %s", ErrArithmeticOverflow, x.Dec())
	}
	yb := y.ToBig()
	if yb.Cmp(mildExponentBound) >= 0 {
		return nil, fmt.Errorf("%w: pow exponent %s", ErrArithmeticOverflow, y.Dec())
	}

	xb := x.ToBig()
	var logxTimesY *big.Int
	if xb.Cmp(ln36LowerBound) > 0 && xb.Cmp(ln36UpperBound) < 0 {
		l := ln36(xb)
		hi := new(big.Int).Quo(l, one18)
		hi.Mul(hi, yb)
		lo := new(big.Int).Rem(l, one18)
		lo.Mul(lo, yb)
		lo.Quo(lo, one18)
		logxTimesY = hi.Add(hi, lo)
	} else {
		logxTimesY = ln(xb)
		logxTimesY.Mul(logxTimesY, yb)
	}
	logxTimesY.Quo(logxTimesY, one18)
	if logxTimesY.Cmp(maxNaturalExponent) > 0 {
		return nil, fmt.Errorf("%w: pow product out of bounds", ErrArithmeticOverflow)
	}
	// e^-41 is below the smallest 18 decimal value.
	if logxTimesY.Cmp(minNaturalExponent) < 0 {
		return new(uint256.Int), nil
	}
	r := exp(logxTimesY)
	out, overflow := uint256.FromBig(r)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return out, nil
}

// exp returns e^x for x in [minNaturalExponent, maxNaturalExponent].
func exp(x *big.Int) *big.Int {
	if x.Sign() < 0 {
		r := exp(new(big.Int).Neg(x))
		num := new(big.Int).Mul(one18, one18)
		return num.Quo(num, r)
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	switch {
	case x.Cmp(x0) >= 0:
		x.Sub(x, x0)
		firstAN = a0
	case x.Cmp(x1) >= 0:
		x.Sub(x, x1)
		firstAN = a1
	}

	x.Mul(x, bigHundred)
	product := new(big.Int).Set(one20)
	for _, e := range expTable[:8] {
		if x.Cmp(e.x) >= 0 {
			x.Sub(x, e.x)
			product.Mul(product, e.a)
			product.Quo(product, one20)
		}
	}

	// Taylor series on the remainder, which is now below 2^-2.
	seriesSum := new(big.Int).Set(one20)
	term := new(big.Int).Set(x)
	seriesSum.Add(seriesSum, term)
	for n := int64(2); n <= 12; n++ {
		term.Mul(term, x)
		term.Quo(term, one20)
		term.Quo(term, big.NewInt(n))
		seriesSum.Add(seriesSum, term)
	}

	r := product.Mul(product, seriesSum)
	r.Quo(r, one20)
	r.Mul(r, firstAN)
	return r.Quo(r, bigHundred)
}

// ln returns the natural logarithm of a positive 18 decimal number.
func ln(a *big.Int) *big.Int {
	if a.Cmp(one18) < 0 {
		inv := new(big.Int).Mul(one18, one18)
		inv.Quo(inv, a)
		r := ln(inv)
		return r.Neg(r)
	}

	a = new(big.Int).Set(a)
	sum := new(big.Int)
	if a.Cmp(new(big.Int).Mul(a0, one18)) >= 0 {
		a.Quo(a, a0)
		sum.Add(sum, x0)
	}
	if a.Cmp(new(big.Int).Mul(a1, one18)) >= 0 {
		a.Quo(a, a1)
		sum.Add(sum, x1)
	}

	sum.Mul(sum, bigHundred)
	a.Mul(a, bigHundred)
	for _, e := range expTable {
		if a.Cmp(e.a) >= 0 {
			a.Mul(a, one20)
			a.Quo(a, e.a)
			sum.Add(sum, e.x)
		}
	}

	// a is now below a11 (about 1.06). Use the series
	// ln(a) = 2 * (z + z^3/3 + z^5/5 + ...) with z = (a - 1) / (a + 1).
	z := new(big.Int).Sub(a, one20)
	z.Mul(z, one20)
	z.Quo(z, new(big.Int).Add(a, one20))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one20)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for n := int64(3); n <= 11; n += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, one20)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(n)))
	}
	seriesSum.Mul(seriesSum, big.NewInt(2))

	r := sum.Add(sum, seriesSum)
	return r.Quo(r, bigHundred)
}

// ln36 returns ln(x) with 36 decimals for x close to one.
func ln36(x *big.Int) *big.Int {
	x = new(big.Int).Mul(x, one18)

	z := new(big.Int).Sub(x, one36)
	z.Mul(z, one36)
	z.Quo(z, new(big.Int).Add(x, one36))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one36)

	num := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(num)
	for n := int64(3); n <= 15; n += 2 {
		num.Mul(num, zSquared)
		num.Quo(num, one36)
		seriesSum.Add(seriesSum, new(big.Int).Quo(num, big.NewInt(n)))
	}
	return seriesSum.Mul(seriesSum, big.NewInt(2))
}
