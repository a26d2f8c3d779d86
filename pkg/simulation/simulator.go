// Package simulation validates station input and runs the full CDMA pipeline:
// Walsh matrix generation, per-station encoding, channel combination and
// per-station decoding.
package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbehnke/cdma-visualizer/pkg/cdma"
	"github.com/dbehnke/cdma-visualizer/pkg/config"
	"github.com/dbehnke/cdma-visualizer/pkg/logger"
)

// Result is the outcome of one simulation. Every slice is in station input order.
type Result struct {
	OriginalData   []string      `json:"originalData" yaml:"originalData"`
	WalshCodes     []cdma.Code   `json:"walshCodes" yaml:"walshCodes"`
	EncodedSignals []cdma.Signal `json:"encodedSignals" yaml:"encodedSignals"`
	Combined       cdma.Signal   `json:"combined" yaml:"combined"`
	Decoded        [][]cdma.Bit  `json:"decoded" yaml:"decoded"`
}

// Matches reports, per station, whether the decoded bits equal the input bits
func (r *Result) Matches() []bool {
	out := make([]bool, len(r.OriginalData))
	for i, data := range r.OriginalData {
		out[i] = i < len(r.Decoded) && strings.TrimSpace(data) == cdma.FormatBits(r.Decoded[i])
	}
	return out
}

// MatrixResult is a raw Walsh matrix keyed by its size
type MatrixResult struct {
	Size   int         `json:"size" yaml:"size"`
	Matrix cdma.Matrix `json:"matrix" yaml:"matrix"`
}

// Options configures a Simulator. Zero limits mean unlimited.
type Options struct {
	MaxStations  int
	MaxBitLength int
	MaxWalshSize int
	Tracer       Tracer
	// Events, when set, receives one Event per Run. Sends never block.
	Events chan<- Event
}

// Simulator runs CDMA simulations. It holds no per-run state and is safe
// for concurrent use.
type Simulator struct {
	opts   Options
	tracer Tracer
}

// New creates a simulator with the given options
func New(opts Options) *Simulator {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = NopTracer{}
	}
	return &Simulator{opts: opts, tracer: tracer}
}

// NewFromConfig creates a simulator from the simulation config section.
// Step tracing goes to log when cfg.Trace is set.
func NewFromConfig(cfg config.SimulationConfig, log *logger.Logger, events chan<- Event) *Simulator {
	opts := Options{
		MaxStations:  cfg.MaxStations,
		MaxBitLength: cfg.MaxBitLength,
		MaxWalshSize: cfg.MaxWalshSize,
		Events:       events,
	}
	if cfg.Trace && log != nil {
		opts.Tracer = NewLogTracer(log)
	}
	return New(opts)
}

// Run validates the stations and simulates them sharing one channel.
// Station i is assigned row i of the smallest Walsh matrix that has a row
// for every station.
func (s *Simulator) Run(stations []string) (*Result, error) {
	start := time.Now()
	result, err := s.run(stations)
	s.emit(stations, result, err, time.Since(start))
	return result, err
}

func (s *Simulator) run(stations []string) (*Result, error) {
	data, err := s.parse(stations)
	if err != nil {
		return nil, err
	}

	size := cdma.NextPowerOfTwo(len(data))
	matrix, err := cdma.Generate(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate walsh matrix: %w", err)
	}
	codes := matrix[:len(data)]
	s.tracer.Matrix(size, codes)

	encoded := make([]cdma.Signal, len(data))
	for i, bits := range data {
		encoded[i] = cdma.Encode(bits, codes[i])
		s.tracer.Encoded(i, stations[i], encoded[i])
	}

	combined, err := cdma.Combine(encoded...)
	if err != nil {
		return nil, fmt.Errorf("failed to combine signals: %w", err)
	}
	s.tracer.Combined(combined)

	decoded := make([][]cdma.Bit, len(data))
	for i, code := range codes {
		decoded[i], err = cdma.Decode(combined, code)
		if err != nil {
			return nil, fmt.Errorf("failed to decode station %d: %w", i+1, err)
		}
		s.tracer.Decoded(i, decoded[i])
	}

	return &Result{
		OriginalData:   append([]string(nil), stations...),
		WalshCodes:     codes,
		EncodedSignals: encoded,
		Combined:       combined,
		Decoded:        decoded,
	}, nil
}

// parse validates every station string and converts it to bits
func (s *Simulator) parse(stations []string) ([][]cdma.Bit, error) {
	if len(stations) == 0 {
		return nil, cdma.ErrEmptyInput
	}

	if s.opts.MaxStations > 0 && len(stations) > s.opts.MaxStations {
		return nil, &LimitError{Err: ErrTooManyStations, Limit: s.opts.MaxStations, Got: len(stations)}
	}

	data := make([][]cdma.Bit, len(stations))
	for i, raw := range stations {
		bits, err := cdma.ParseBits(raw)
		if err != nil {
			return nil, &StationError{Index: i, Err: err}
		}
		if s.opts.MaxBitLength > 0 && len(bits) > s.opts.MaxBitLength {
			return nil, &StationError{
				Index: i,
				Err:   &LimitError{Err: ErrStationTooLong, Limit: s.opts.MaxBitLength, Got: len(bits)},
			}
		}
		if i > 0 && len(bits) != len(data[0]) {
			return nil, &StationError{
				Index: i,
				Err:   &LimitError{Err: ErrUnequalLength, Limit: len(data[0]), Got: len(bits)},
			}
		}
		data[i] = bits
	}

	return data, nil
}

// Walsh returns the raw Walsh matrix of the requested size
func (s *Simulator) Walsh(size int) (*MatrixResult, error) {
	if !cdma.IsPowerOfTwo(size) {
		return nil, &cdma.SizeError{Size: size}
	}
	if s.opts.MaxWalshSize > 0 && size > s.opts.MaxWalshSize {
		return nil, &LimitError{Err: ErrSizeTooLarge, Limit: s.opts.MaxWalshSize, Got: size}
	}

	matrix, err := cdma.Generate(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate walsh matrix: %w", err)
	}
	return &MatrixResult{Size: size, Matrix: matrix}, nil
}

// emit publishes the run outcome without blocking
func (s *Simulator) emit(stations []string, result *Result, err error, elapsed time.Duration) {
	if s.opts.Events == nil {
		return
	}

	event := Event{
		Type:      EventSimulated,
		Stations:  len(stations),
		Timestamp: time.Now(),
		Duration:  elapsed,
		Result:    result,
	}
	if result != nil {
		event.WalshSize = cdma.NextPowerOfTwo(len(stations))
	}
	if err != nil {
		event.Type = EventFailed
		event.Error = err.Error()
		event.ClientError = IsClientError(err)
	}

	select {
	case s.opts.Events <- event:
	default:
	}
}
