package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the data set's version, publish dates, and components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func runStats() error {
	m, err := openManager()
	if err != nil {
		printError("opening data set: %v\n", err)
		return err
	}
	defer m.Close()

	stats, err := m.Stats()
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(stats)
	}

	printInfo("Data set: %s\n", dataPath)
	printInfo("  Version: %s\n", stats.Version)
	printInfo("  Published: %s\n", stats.Published.Format("2006-01-02 15:04:05"))
	printInfo("  Next update: %s\n", stats.NextUpdate.Format("2006-01-02 15:04:05"))
	printInfo("  Property value index: %v\n", stats.PropertyValueIndexEnabled)
	printInfo("  Components:\n")
	for _, c := range stats.Components {
		printInfo("    %s\n", c)
	}
	printInfo("  Required properties:\n")
	for _, p := range stats.RequiredProperties {
		printInfo("    %s\n", p)
	}
	return nil
}
