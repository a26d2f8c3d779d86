// Package report renders simulation results for terminals and files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/dbehnke/cdma-visualizer/pkg/cdma"
	"github.com/dbehnke/cdma-visualizer/pkg/simulation"
)

// Format selects the output encoding
type Format string

// Supported formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (must be one of: text, json, yaml)", s)
}

// Writer renders results in one format
type Writer struct {
	out    io.Writer
	format Format

	title    *color.Color
	positive *color.Color
	negative *color.Color
	zero     *color.Color
	ok       *color.Color
	bad      *color.Color
	stations []*color.Color
}

// NewWriter creates a writer. Colour is only used by the text format.
func NewWriter(out io.Writer, format Format, useColor bool) *Writer {
	w := &Writer{
		out:      out,
		format:   format,
		title:    color.New(color.Bold, color.FgCyan),
		positive: color.New(color.FgHiWhite),
		negative: color.New(color.FgHiBlack),
		zero:     color.New(color.FgMagenta),
		ok:       color.New(color.FgGreen),
		bad:      color.New(color.FgRed),
		stations: []*color.Color{
			color.New(color.FgRed),
			color.New(color.FgGreen),
			color.New(color.FgYellow),
			color.New(color.FgBlue),
		},
	}

	all := append([]*color.Color{w.title, w.positive, w.negative, w.zero, w.ok, w.bad}, w.stations...)
	for _, c := range all {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return w
}

// Simulation writes a simulation result. messages, when non-nil, holds the
// text each station's bits were derived from and is echoed next to the
// decoded text.
func (w *Writer) Simulation(result *simulation.Result, messages []string) error {
	switch w.format {
	case FormatJSON:
		return w.json(result)
	case FormatYAML:
		return w.yaml(result)
	}
	return w.simulationText(result, messages)
}

// Matrix writes a raw Walsh matrix
func (w *Writer) Matrix(m *simulation.MatrixResult) error {
	switch w.format {
	case FormatJSON:
		return w.json(m)
	case FormatYAML:
		return w.yaml(m)
	}

	var sb strings.Builder
	sb.WriteString(w.title.Sprintf("Walsh Matrix %dx%d", m.Size, m.Size))
	sb.WriteByte('\n')
	for i, row := range m.Matrix {
		fmt.Fprintf(&sb, "Code %d: %s\n", i+1, formatCode(row))
	}
	_, err := io.WriteString(w.out, sb.String())
	return err
}

func (w *Writer) simulationText(result *simulation.Result, messages []string) error {
	var sb strings.Builder
	size := 0
	if len(result.WalshCodes) > 0 {
		size = len(result.WalshCodes[0])
	}

	sb.WriteString(w.title.Sprint("=== CDMA Simulation ==="))
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "Stations: %d\n", len(result.OriginalData))
	fmt.Fprintf(&sb, "Walsh Matrix Size: %dx%d\n", size, size)
	sb.WriteString("Walsh Matrix:\n")
	for i, code := range result.WalshCodes {
		fmt.Fprintf(&sb, "Code %d: %s\n", i+1, formatCode(code))
	}

	for i, signal := range result.EncodedSignals {
		fmt.Fprintf(&sb, "Station %d: %s -> %s\n", i+1,
			strings.TrimSpace(result.OriginalData[i]), formatInts(signal))
	}

	fmt.Fprintf(&sb, "Combined Signal: %s\n", formatInts(result.Combined))
	fmt.Fprintf(&sb, "Channel: %s\n", w.channel(result.Combined, size))

	matches := result.Matches()
	for i, bits := range result.Decoded {
		mark := w.ok.Sprint("✔")
		if !matches[i] {
			mark = w.bad.Sprint("✘")
		}
		line := fmt.Sprintf("Decoded Station %d: [%s] %s", i+1, cdma.FormatBits(bits), mark)
		if i < len(messages) {
			line += fmt.Sprintf(" %q", cdma.BitsToText(bits))
		}
		sb.WriteString(w.stations[i%len(w.stations)].Sprint(line))
		sb.WriteByte('\n')
	}

	sb.WriteString(w.title.Sprint("=== End Simulation ==="))
	sb.WriteByte('\n')

	_, err := io.WriteString(w.out, sb.String())
	return err
}

// channel draws the combined signal as +, − and · grouped per code length
func (w *Writer) channel(signal cdma.Signal, chunk int) string {
	var sb strings.Builder
	for i, v := range signal {
		switch {
		case v > 0:
			sb.WriteString(w.positive.Sprint("+"))
		case v < 0:
			sb.WriteString(w.negative.Sprint("−"))
		default:
			sb.WriteString(w.zero.Sprint("·"))
		}
		if chunk > 0 && (i+1)%chunk == 0 && i+1 < len(signal) {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func (w *Writer) json(v interface{}) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) yaml(v interface{}) error {
	enc := yaml.NewEncoder(w.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func formatCode(code cdma.Code) string {
	parts := make([]string, len(code))
	for i, c := range code {
		parts[i] = fmt.Sprint(int(c))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
