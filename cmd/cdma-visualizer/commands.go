package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dbehnke/cdma-visualizer/pkg/cdma"
	"github.com/dbehnke/cdma-visualizer/pkg/config"
	"github.com/dbehnke/cdma-visualizer/pkg/logger"
	"github.com/dbehnke/cdma-visualizer/pkg/report"
	"github.com/dbehnke/cdma-visualizer/pkg/simulation"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [bits...]",
		Short: "Run a simulation locally and print every stage",
		Example: `  cdma-visualizer simulate 1011 0110
  cdma-visualizer simulate --text HI OK --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSimulate,
	}

	addOutputFlags(cmd)
	cmd.Flags().Bool("text", false, "Treat arguments as ASCII messages")
	cmd.Flags().Bool("trace", false, "Log every pipeline step to stderr")
	return cmd
}

func newWalshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walsh <size>",
		Short: "Print the Walsh matrix of a power-of-two size",
		Args:  cobra.ExactArgs(1),
		RunE:  runWalsh,
	}

	addOutputFlags(cmd)
	return cmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().Bool("no-color", false, "Disable coloured output")
}

func newReportWriter(cmd *cobra.Command) (*report.Writer, error) {
	formatName, _ := cmd.Flags().GetString("format")
	noColor, _ := cmd.Flags().GetBool("no-color")

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	return report.NewWriter(cmd.OutOrStdout(), format, !noColor && !color.NoColor), nil
}

// localSimulator builds a simulator for one CLI run. Request limits only
// guard the server, so local runs lift them.
func localSimulator(cmd *cobra.Command, cfg *config.Config, trace bool) (*simulation.Simulator, error) {
	simCfg := cfg.Simulation
	simCfg.MaxStations = 0
	simCfg.MaxBitLength = 0
	simCfg.MaxWalshSize = 0
	simCfg.Trace = simCfg.Trace || trace

	log := logger.Nop()
	if simCfg.Trace {
		cfg.Logging.Level = "debug"
		var err error
		if log, err = newLogger(cfg, cmd.ErrOrStderr()); err != nil {
			return nil, err
		}
	}
	return simulation.NewFromConfig(simCfg, log, nil), nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	textMode, _ := cmd.Flags().GetBool("text")
	trace, _ := cmd.Flags().GetBool("trace")

	w, err := newReportWriter(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sim, err := localSimulator(cmd, cfg, trace)
	if err != nil {
		return err
	}

	stations := args
	var messages []string
	if textMode {
		stations, messages = messageStations(args)
	}

	result, err := sim.Run(stations)
	if err != nil {
		return err
	}
	return w.Simulation(result, messages)
}

func runWalsh(cmd *cobra.Command, args []string) error {
	size, err := strconv.Atoi(args[0])
	if err != nil || !cdma.IsPowerOfTwo(size) {
		return fmt.Errorf("size must be a positive power of 2, got %q", args[0])
	}

	w, err := newReportWriter(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sim, err := localSimulator(cmd, cfg, false)
	if err != nil {
		return err
	}

	m, err := sim.Walsh(size)
	if err != nil {
		return err
	}
	return w.Matrix(m)
}

// messageStations pads every message with spaces to the longest one and
// returns the bit strings to transmit together with the padded messages.
func messageStations(messages []string) (stations, padded []string) {
	longest := 0
	for _, m := range messages {
		longest = max(longest, len(m))
	}

	stations = make([]string, len(messages))
	padded = make([]string, len(messages))
	for i, m := range messages {
		padded[i] = m + strings.Repeat(" ", longest-len(m))
		stations[i] = cdma.FormatBits(cdma.TextToBits(padded[i]))
	}
	return stations, padded
}
