package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/51Degrees/ip-intelligence-go/ipintel"
)

func init() {
	rootCmd.AddCommand(newDiagnoseCmd())
}

func newDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Scan the data set for structural inconsistencies",
		Long: `diagnose walks the components, properties, property types, and values
collections, reporting every unresolvable name offset or out-of-range
cross-reference it finds instead of stopping at the first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose()
		},
	}
}

func runDiagnose() error {
	m, err := openManager()
	if err != nil {
		printError("opening data set: %v\n", err)
		return err
	}
	defer m.Close()

	report := m.Diagnose()

	if jsonOut {
		return printJSON(report)
	}

	for _, d := range report.Diagnostics {
		printInfo("%s\n", d.String())
	}
	printInfo("\n%d error(s), %d warning(s), %d info\n",
		report.Summary.Errors, report.Summary.Warnings, report.Summary.Info)

	if report.HasErrors() {
		return fmt.Errorf("diagnose found %d structural error(s)", report.Summary.Errors)
	}
	return nil
}
