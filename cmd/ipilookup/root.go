package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/51Degrees/ip-intelligence-go/ipintel"
)

var (
	verbose    bool
	quiet      bool
	jsonOut    bool
	dataPath       string
	preset         string
	properties     []string
	metricsEnabled bool
)

var rootCmd = &cobra.Command{
	Use:   "ipilookup",
	Short: "Resolve IP addresses against a 51Degrees IP-intelligence data set",
	Long: `ipilookup opens a compiled IP-intelligence data set and resolves
addresses (or HTTP evidence) into the weighted property values the file
carries for them.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Path to the compiled data set file (required)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "balanced",
		"Configuration preset: in_memory, high_performance, low_memory, balanced, balanced_temp")
	rootCmd.PersistentFlags().StringSliceVar(&properties, "properties", nil,
		"Comma-separated list of required property names (required)")
	rootCmd.PersistentFlags().BoolVar(&metricsEnabled, "metrics", false,
		"Register Prometheus counters/histograms for this run")
	rootCmd.MarkPersistentFlagRequired("data")
	rootCmd.MarkPersistentFlagRequired("properties")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// presetConfig maps --preset's name onto one of ipintel's five Config
// constructors (spec.md §6's Configuration options table).
func presetConfig(name string) (ipintel.Config, error) {
	switch strings.ToLower(name) {
	case "in_memory", "inmemory":
		return ipintel.InMemoryConfig(), nil
	case "high_performance", "highperformance":
		return ipintel.HighPerformanceConfig(), nil
	case "low_memory", "lowmemory":
		return ipintel.LowMemoryConfig(), nil
	case "balanced":
		return ipintel.BalancedConfig(), nil
	case "balanced_temp", "balancedtemp":
		return ipintel.BalancedTempConfig(), nil
	default:
		return ipintel.Config{}, fmt.Errorf("unknown preset %q", name)
	}
}

// openManager builds a Manager from the persistent --data/--preset/
// --properties flags, shared by every subcommand.
func openManager() (*ipintel.Manager, error) {
	cfg, err := presetConfig(preset)
	if err != nil {
		return nil, err
	}
	cfg.MetricsEnabled = metricsEnabled
	printVerbose("opening %s with preset %q, required properties %v\n", dataPath, preset, properties)
	return ipintel.OpenFile(dataPath, cfg, properties)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
