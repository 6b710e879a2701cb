package locationid

import (
	"math"
	"math/big"
)

// roundHalfDown rounds x to the given number of decimal places using the
// exact binary value of x. Ties go toward zero.
func roundHalfDown(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r := new(big.Rat).SetFloat64(x)
	neg := r.Sign() < 0
	r.Abs(r)

	exp := places
	if exp < 0 {
		exp = -exp
	}
	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	if places >= 0 {
		r.Mul(r, scale)
	} else {
		r.Quo(r, scale)
	}

	q, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	// strictly more than half rounds away from zero
	if rem.Lsh(rem, 1).Cmp(r.Denom()) > 0 {
		q.Add(q, big.NewInt(1))
	}

	out := new(big.Rat).SetInt(q)
	if places >= 0 {
		out.Quo(out, scale)
	} else {
		out.Mul(out, scale)
	}
	if neg {
		out.Neg(out)
	}
	f, _ := out.Float64()
	return f
}
