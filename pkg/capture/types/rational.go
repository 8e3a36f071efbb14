package types

import (
	"fmt"
)

// Rational is a time base (or a frame rate): Num/Den.
type Rational struct {
	Num int
	Den int
}

func NewRational(num, den int) Rational {
	return Rational{Num: num, Den: den}
}

func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) Invert() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// RescaleQ converts a timestamp from time base bq to time base cq,
// rounding to the nearest value (halfway cases away from zero).
func RescaleQ(a int64, bq, cq Rational) int64 {
	num := int64(bq.Num) * int64(cq.Den)
	den := int64(bq.Den) * int64(cq.Num)
	if den == 0 {
		return 0
	}
	if den < 0 {
		num, den = -num, -den
	}
	v := a * num
	if v >= 0 {
		return (v + den/2) / den
	}
	return -((-v + den/2) / den)
}
