package cdma

import "strings"

// ParseBits converts a string of '0' and '1' characters into bits.
// Surrounding whitespace is ignored.
func ParseBits(s string) ([]Bit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyInput
	}

	out := make([]Bit, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			out = append(out, 0)
		case '1':
			out = append(out, 1)
		default:
			return nil, &SymbolError{Position: i, Symbol: r}
		}
	}
	return out, nil
}

// FormatBits renders bits as a string of '0' and '1'
func FormatBits(bits []Bit) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// TextToBits expands each byte of s into 8 bits, most significant first
func TextToBits(s string) []Bit {
	out := make([]Bit, 0, len(s)*8)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		for j := 7; j >= 0; j-- {
			out = append(out, Bit((ch>>j)&1))
		}
	}
	return out
}

// BitsToText packs bits into bytes, most significant first.
// Trailing bits that do not fill a whole byte are dropped.
func BitsToText(bits []Bit) string {
	buf := make([]byte, 0, len(bits)/8)
	for i := 0; i+8 <= len(bits); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			if bits[i+j] == 1 {
				b |= 1 << (7 - j)
			}
		}
		buf = append(buf, b)
	}
	return string(buf)
}
