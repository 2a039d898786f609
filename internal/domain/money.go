package domain

import "fmt"

// Money is an amount in integer cents.
type Money int64

func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

func (m Money) Add(other Money) Money {
	return m + other
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m/100, abs(int64(m%100)))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
