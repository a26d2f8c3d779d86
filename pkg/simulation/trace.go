package simulation

import (
	"github.com/dbehnke/cdma-visualizer/pkg/cdma"
	"github.com/dbehnke/cdma-visualizer/pkg/logger"
)

// Tracer observes each step of a simulation run. Implementations must not
// modify the values they receive.
type Tracer interface {
	Matrix(size int, codes []cdma.Code)
	Encoded(station int, bits string, signal cdma.Signal)
	Combined(signal cdma.Signal)
	Decoded(station int, bits []cdma.Bit)
}

// NopTracer ignores every step
type NopTracer struct{}

func (NopTracer) Matrix(int, []cdma.Code) {}
func (NopTracer) Encoded(int, string, cdma.Signal) {}
func (NopTracer) Combined(cdma.Signal) {}
func (NopTracer) Decoded(int, []cdma.Bit) {}

// LogTracer writes each step to a logger at debug level
type LogTracer struct {
	logger *logger.Logger
}

// NewLogTracer creates a tracer logging under the "simulation.trace" component
func NewLogTracer(log *logger.Logger) *LogTracer {
	return &LogTracer{logger: log.WithComponent("simulation.trace")}
}

func (t *LogTracer) Matrix(size int, codes []cdma.Code) {
	t.logger.Debug("Walsh matrix generated",
		logger.Int("size", size),
		logger.Int("stations", len(codes)))
	for i, code := range codes {
		t.logger.Debug("Walsh code",
			logger.Int("station", i+1),
			logger.Any("code", code))
	}
}

func (t *LogTracer) Encoded(station int, bits string, signal cdma.Signal) {
	t.logger.Debug("Station encoded",
		logger.Int("station", station+1),
		logger.String("bits", bits),
		logger.Ints("signal", signal))
}

func (t *LogTracer) Combined(signal cdma.Signal) {
	t.logger.Debug("Signals combined", logger.Ints("combined", signal))
}

func (t *LogTracer) Decoded(station int, bits []cdma.Bit) {
	t.logger.Debug("Station decoded",
		logger.Int("station", station+1),
		logger.String("bits", cdma.FormatBits(bits)))
}
