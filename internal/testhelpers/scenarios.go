// Package testhelpers holds known CDMA scenarios and an HTTP client shared by
// package tests.
package testhelpers

// Scenario is a station set with its hand-computed channel
type Scenario struct {
	Name      string
	Stations  []string
	WalshSize int
	Combined  []int
}

// Decoded returns the bits each station is expected to recover, which are
// always the bits it sent.
func (s Scenario) Decoded() [][]int {
	out := make([][]int, len(s.Stations))
	for i, station := range s.Stations {
		bits := make([]int, 0, len(station))
		for _, ch := range station {
			if ch == '1' {
				bits = append(bits, 1)
			} else {
				bits = append(bits, 0)
			}
		}
		out[i] = bits
	}
	return out
}

// Scenarios returns the known-answer cases
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:      "single station",
			Stations:  []string{"101"},
			WalshSize: 1,
			Combined:  []int{1, -1, 1},
		},
		{
			Name:      "two stations one bit",
			Stations:  []string{"1", "0"},
			WalshSize: 2,
			Combined:  []int{0, 2},
		},
		{
			Name:      "two stations two bits",
			Stations:  []string{"01", "10"},
			WalshSize: 2,
			Combined:  []int{0, -2, 0, 2},
		},
		{
			Name:      "three stations padded to four codes",
			Stations:  []string{"10", "01", "11"},
			WalshSize: 4,
			Combined:  []int{1, 3, -1, 1, 1, -1, -1, -3},
		},
		{
			Name:      "four stations all ones",
			Stations:  []string{"1", "1", "1", "1"},
			WalshSize: 4,
			Combined:  []int{4, 0, 0, 0},
		},
		{
			Name:      "five stations all zeros",
			Stations:  []string{"0", "0", "0", "0", "0"},
			WalshSize: 8,
			Combined:  []int{-5, -1, -1, -1, -3, 1, 1, 1},
		},
	}
}
