// Package fixedmath holds the scaled arithmetic helpers shared by the reward
// ledger. All reward-per-token values are carried at 1e18 fixed point; every
// value persisted by the ledger is bounded to 128 bits, and any computation
// escaping that bound fails instead of wrapping.
package fixedmath

import (
	"github.com/holiman/uint256"

	"rewardledger/errors"
)

// Scale is the fixed-point base for reward-per-token values.
var Scale = uint256.NewInt(1e18)

// FeeDenominator is the parts-per unit of the protocol fee.
const FeeDenominator = 10000

// MulDiv computes a*b/denom with a full-width intermediate product, so the
// product may exceed 256 bits as long as the quotient fits. The quotient is
// floored; callers chain from stored 128-bit values only, never from wide
// intermediates, to keep results reproducible.
func MulDiv(a, b, denom *uint256.Int) (*uint256.Int, error) {
	if denom.IsZero() {
		return nil, errors.NewError(errors.ErrCodeInternal, "division by zero in fixed-point mulDiv")
	}
	res, overflow := new(uint256.Int).MulDivOverflow(a, b, denom)
	if overflow {
		return nil, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
	}
	return res, nil
}

// ToUint128 returns a copy of x bounded to the 128-bit storage range, or an
// overflow error. A value past the bound signals a scale mismatch and must
// halt the operation.
func ToUint128(x *uint256.Int) (*uint256.Int, error) {
	if x.BitLen() > 128 {
		return nil, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
	}
	return x.Clone(), nil
}

// IsUint128 reports whether x fits the 128-bit storage bound.
func IsUint128(x *uint256.Int) bool {
	return x.BitLen() <= 128
}

// AddUint128 adds a and b and bounds the sum to the 128-bit storage range.
func AddUint128(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow)
	}
	return ToUint128(sum)
}

// SubUint128 subtracts b from a, failing with underflow when b exceeds a.
// An underflowing debit signals either an insufficient balance or a
// bookkeeping bug; it is never clamped.
func SubUint128(a, b *uint256.Int) (*uint256.Int, error) {
	if a.Lt(b) {
		return nil, errors.NewError(errors.ErrCodeUnderflow, errors.ErrMsgUnderflow)
	}
	return new(uint256.Int).Sub(a, b), nil
}
