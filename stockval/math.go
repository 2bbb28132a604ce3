// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package stockval

import (
	"strconv"

	"github.com/ericlagergren/decimal"
)

const NearZero = 0.000001

// RoundPrice rounds price z to two digits after decimal point and returns z.
func RoundPrice(z *decimal.Big) *decimal.Big {
	// Call Quantize twice, otherwise one digit may be missing, see https://github.com/ericlagergren/decimal/issues/151
	return z.Quantize(2).Quantize(2)
}

// Returns a new decimal with prepared formatting, enforce a minimum of 2 digits after decimal point.
func PrepareFormattedPrice(z *decimal.Big) *decimal.Big {
	if z.Scale() < 2 {
		// Adding 0.00 will enforce the proper format
		return new(decimal.Big).Add(z, decimal.New(0, 2))
	}
	return new(decimal.Big).Copy(z)
}

// The builtin decimal.Big conversion from float64 is an "exact" conversion, and useless for our cases.
// Therefore, convert using string conversion, even though this requires memory allocation.
// See also https://github.com/ericlagergren/decimal/issues/142

// Convert float to string and then to decimal.
func ConvertFloatToDecimal(v float64, bitSize int) *decimal.Big {
	d, _ := new(decimal.Big).SetString(strconv.FormatFloat(v, 'f', -1, bitSize))
	return d
}

// FormatPrice returns a price label with exactly two decimal places.
func FormatPrice(v float64) string {
	if !IsValidFloat(v) {
		return "-"
	}
	// we do not want negative zero on our label
	if v < 0.005 && v > -0.005 {
		v = 0
	}
	d := ConvertFloatToDecimal(v, 64)
	if d == nil {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return PrepareFormattedPrice(RoundPrice(d)).String()
}

func IsGreenCandle(o, c float64) bool {
	// An unchanged bar is drawn like a rising one.
	return c >= o
}
