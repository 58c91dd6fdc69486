// Package fixedpoint holds the Q64.64 division primitive and the
// floating-point tick/price conversion helpers. The division is exact
// 256-bit integer arithmetic; the float helpers are approximate and must
// never feed the swap loop.
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrDivisionByZero is returned when the divisor is zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrRounding is returned when the hi/lo correction check disagrees,
	// meaning the inputs cannot yield a consistent 64.64 result.
	ErrRounding = errors.New("rounding error")
)

var (
	one = uint256.NewInt(1)

	// Q64 is 1.0 in 64.64 fixed point, also the saturation sentinel for
	// a zero-reserve price.
	Q64 = new(uint256.Int).Lsh(one, 64)

	max192 = new(uint256.Int).Sub(new(uint256.Int).Lsh(one, 192), one)
	max128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(one, 128), one)
)

// DivUU divides x by y into unsigned 64.64 fixed point, i.e. (x<<64)/y
// computed without intermediate overflow for any 256-bit operands.
// Results that do not fit 128 bits saturate to zero.
func DivUU(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, ErrDivisionByZero
	}

	var answer *uint256.Int
	if x.Cmp(max192) <= 0 {
		answer = new(uint256.Int).Lsh(x, 64)
		answer.Div(answer, y)
	} else {
		// Estimate the msb of x>>192 with an unrolled binary search,
		// then divide with both operands downscaled to keep the shift
		// in range.
		msb := uint(192)
		xc := new(uint256.Int).Rsh(x, 192).Uint64()
		if xc >= 1<<32 {
			xc >>= 32
			msb += 32
		}
		if xc >= 1<<16 {
			xc >>= 16
			msb += 16
		}
		if xc >= 1<<8 {
			xc >>= 8
			msb += 8
		}
		if xc >= 1<<4 {
			xc >>= 4
			msb += 4
		}
		if xc >= 1<<2 {
			xc >>= 2
			msb += 2
		}
		if xc >= 1<<1 {
			msb++
		}

		denominator := new(uint256.Int).Sub(y, one)
		denominator.Rsh(denominator, msb-191)
		denominator.Add(denominator, one)

		answer = new(uint256.Int).Lsh(x, 255-msb)
		answer.Div(answer, denominator)
	}

	if answer.Cmp(max128) > 0 {
		return new(uint256.Int), nil
	}

	// Correct the provisional answer with a hi/lo cross multiplication
	// against y. All arithmetic below is mod 2^256 on purpose.
	hi := new(uint256.Int).Mul(answer, new(uint256.Int).Rsh(y, 128))
	lo := new(uint256.Int).Mul(answer, new(uint256.Int).And(y, max128))

	xh := new(uint256.Int).Rsh(x, 192)
	xl := new(uint256.Int).Lsh(x, 64)

	if xl.Cmp(lo) < 0 {
		xh.Sub(xh, one)
	}
	xl.Sub(xl, lo)
	lo = new(uint256.Int).Lsh(hi, 128)

	if xl.Cmp(lo) < 0 {
		xh.Sub(xh, one)
	}
	xl.Sub(xl, lo)

	if xh.Cmp(new(uint256.Int).Rsh(hi, 128)) != 0 {
		return nil, ErrRounding
	}

	answer.Add(answer, new(uint256.Int).Div(xl, y))

	if answer.Cmp(max128) > 0 {
		return new(uint256.Int), nil
	}

	return answer, nil
}
