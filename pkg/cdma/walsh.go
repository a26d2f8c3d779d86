// Package cdma implements Walsh–Hadamard code generation and the
// encode/combine/decode pipeline of an idealized synchronous CDMA channel.
package cdma

import "math/bits"

// Bit is a station's information symbol, 0 or 1
type Bit int

// Chip is a single ±1 sample of a Walsh code
type Chip int

// Code is one row of a Walsh matrix, used as a station's spreading sequence
type Code []Chip

// Matrix is an n×n Walsh–Hadamard matrix with pairwise orthogonal rows
type Matrix []Code

// Signal is a sequence of chip-level samples. Encoded signals hold ±1 values,
// combined signals hold their sums.
type Signal []int

// Generate builds the n×n Walsh–Hadamard matrix in Sylvester order.
//
// Entry (i, j) is +1 when popcount(i&j) is even and -1 otherwise, which is the
// closed form of H(2n) = [[H(n), H(n)], [H(n), -H(n)]] starting from H(1) = [[1]].
func Generate(n int) (Matrix, error) {
	if !IsPowerOfTwo(n) {
		return nil, &SizeError{Size: n}
	}

	m := make(Matrix, n)
	for i := range m {
		row := make(Code, n)
		for j := range row {
			if bits.OnesCount(uint(i&j))%2 == 0 {
				row[j] = 1
			} else {
				row[j] = -1
			}
		}
		m[i] = row
	}
	return m, nil
}

// Double performs one Hadamard doubling step: the top half of the result is
// each row repeated twice, the bottom half each row followed by its negation.
func Double(m Matrix) Matrix {
	n := len(m)
	out := make(Matrix, 2*n)
	for i, row := range m {
		top := make(Code, 0, 2*len(row))
		top = append(top, row...)
		top = append(top, row...)

		bottom := make(Code, 0, 2*len(row))
		bottom = append(bottom, row...)
		for _, c := range row {
			bottom = append(bottom, -c)
		}

		out[i] = top
		out[n+i] = bottom
	}
	return out
}

// IsPowerOfTwo reports whether n is 1, 2, 4, 8, ...
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n. Values below 1 yield 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Dot returns the dot product of two codes of equal length
func Dot(a, b Code) int {
	sum := 0
	for i := range a {
		sum += int(a[i]) * int(b[i])
	}
	return sum
}
