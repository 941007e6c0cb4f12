package main

import (
	"github.com/spf13/cobra"

	"github.com/51Degrees/ip-intelligence-go/ipintel"
)

func init() {
	rootCmd.AddCommand(newLookupCmd())
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <ip-address>",
		Short: "Resolve one IP address's required properties",
		Long: `lookup evaluates the component graphs relevant to an IPv4 or
IPv6 address and prints the value(s) each required property resolves to.

Example:
  ipilookup lookup --data ip-intel.dat --properties country,asn 203.0.113.7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(args[0])
		},
	}
}

type propertyResult struct {
	Property string `json:"property"`
	Reason   string `json:"reason"`
	Values   []struct {
		Text   string  `json:"text"`
		Weight float64 `json:"weight"`
	} `json:"values,omitempty"`
}

func runLookup(address string) error {
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

	r := ipintel.NewResults(m)
	defer r.Release()

	if err := r.FromIPString(address); err != nil {
		printError("resolving %q: %v\n", address, err)
		return err
	}

	results := make([]propertyResult, 0, len(stats.RequiredProperties))
	for i, name := range stats.RequiredProperties {
		pr := propertyResult{Property: name}
		if !r.HasValues(i) {
			pr.Reason = r.NoValueReason(i).String()
			results = append(results, pr)
			continue
		}
		values, err := r.GetValues(i)
		if err != nil {
			return err
		}
		pr.Reason = ipintel.ReasonHasValues.String()
		for _, v := range values {
			weight := float64(v.RawWeighting) / float64(0xFFFF)
			pr.Values = append(pr.Values, struct {
				Text   string  `json:"text"`
				Weight float64 `json:"weight"`
			}{Text: v.Text, Weight: weight})
		}
		results = append(results, pr)
	}

	if jsonOut {
		return printJSON(results)
	}

	printInfo("Address: %s\n", address)
	for _, pr := range results {
		if len(pr.Values) == 0 {
			printInfo("  %s: <no values> (%s)\n", pr.Property, pr.Reason)
			continue
		}
		printInfo("  %s:\n", pr.Property)
		for _, v := range pr.Values {
			printInfo("    %s (weight %.4f)\n", v.Text, v.Weight)
		}
	}
	return nil
}
