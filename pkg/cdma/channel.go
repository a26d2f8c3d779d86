package cdma

// chipFor maps a bit to its spreading multiplier
func chipFor(b Bit) int {
	if b == 1 {
		return 1
	}
	return -1
}

// Encode spreads each bit across one full code row. The output holds
// len(bits)*len(code) chips, one code-length chunk per bit in order.
func Encode(bits []Bit, code Code) Signal {
	out := make(Signal, 0, len(bits)*len(code))
	for _, b := range bits {
		v := chipFor(b)
		for _, c := range code {
			out = append(out, int(c)*v)
		}
	}
	return out
}

// Combine sums the encoded signals elementwise into one composite signal.
// All signals must have the same length.
func Combine(signals ...Signal) (Signal, error) {
	if len(signals) == 0 {
		return nil, ErrNoSignals
	}

	length := len(signals[0])
	combined := make(Signal, length)
	for i, s := range signals {
		if len(s) != length {
			return nil, &LengthMismatchError{Index: i, Want: length, Got: len(s)}
		}
		for j, v := range s {
			combined[j] += v
		}
	}
	return combined, nil
}

// Correlate returns the dot product of a signal chunk with a code row
func Correlate(chunk Signal, code Code) int {
	sum := 0
	for j, c := range code {
		sum += chunk[j] * int(c)
	}
	return sum
}

// Decode recovers one station's bits by correlating each code-length chunk of
// the combined signal with the station's code. A positive correlation is a 1;
// zero or negative is a 0.
func Decode(combined Signal, code Code) ([]Bit, error) {
	n := len(code)
	if n == 0 || len(combined)%n != 0 {
		return nil, &ChunkAlignmentError{Length: len(combined), ChunkSize: n}
	}

	out := make([]Bit, 0, len(combined)/n)
	for start := 0; start < len(combined); start += n {
		if Correlate(combined[start:start+n], code) > 0 {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out, nil
}
