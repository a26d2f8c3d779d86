package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dbehnke/cdma-visualizer/pkg/cdma"
	"github.com/dbehnke/cdma-visualizer/pkg/simulation"
)

func twoStationResult(t *testing.T) *simulation.Result {
	t.Helper()
	result, err := simulation.New(simulation.Options{}).Run([]string{"1", "0"})
	require.NoError(t, err)
	return result
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestSimulationText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText, false).Simulation(twoStationResult(t), nil))

	want := `=== CDMA Simulation ===
Stations: 2
Walsh Matrix Size: 2x2
Walsh Matrix:
Code 1: [1, 1]
Code 2: [1, -1]
Station 1: 1 -> [1, 1]
Station 2: 0 -> [-1, 1]
Combined Signal: [0, 2]
Channel: ·+
Decoded Station 1: [1] ✔
Decoded Station 2: [0] ✔
=== End Simulation ===
`
	assert.Equal(t, want, buf.String())
}

func TestSimulationTextMessages(t *testing.T) {
	stations := []string{cdma.FormatBits(cdma.TextToBits("HI")), cdma.FormatBits(cdma.TextToBits("OK"))}
	result, err := simulation.New(simulation.Options{}).Run(stations)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText, false).Simulation(result, []string{"HI", "OK"}))
	assert.Contains(t, buf.String(), `"HI"`)
	assert.Contains(t, buf.String(), `"OK"`)
}

func TestChannelGrouping(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, FormatText, false)
	assert.Equal(t, "+−·+ ··", w.channel(cdma.Signal{2, -1, 0, 4, 0, 0}, 4))
}

func TestSimulationJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatJSON, true).Simulation(twoStationResult(t), nil))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"originalData", "walshCodes", "encodedSignals", "combined", "decoded"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, []interface{}{0.0, 2.0}, decoded["combined"])
}

func TestSimulationYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatYAML, false).Simulation(twoStationResult(t), nil))

	var decoded struct {
		Combined []int   `yaml:"combined"`
		Decoded  [][]int `yaml:"decoded"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []int{0, 2}, decoded.Combined)
	assert.Equal(t, [][]int{{1}, {0}}, decoded.Decoded)
}

func TestMatrixText(t *testing.T) {
	m, err := simulation.New(simulation.Options{}).Walsh(2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, FormatText, false).Matrix(m))
	assert.Equal(t, "Walsh Matrix 2x2\nCode 1: [1, 1]\nCode 2: [1, -1]\n", buf.String())
}
