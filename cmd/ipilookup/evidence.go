package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/51Degrees/ip-intelligence-go/ipintel"
)

var evidencePrefix string

func init() {
	cmd := newEvidenceCmd()
	cmd.Flags().StringVar(&evidencePrefix, "prefix", "server",
		"Prefix to attach to every key=value pair: header, query, server, or cookie")
	rootCmd.AddCommand(cmd)
}

func newEvidenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup-evidence <key=value>...",
		Short: "Resolve an address from an HTTP evidence map",
		Long: `lookup-evidence assembles one or more key=value pairs (header
name to header value) into the evidence bridge, which finds the first
registered header with a matching value and resolves that address.

Example:
  ipilookup lookup-evidence --data ip-intel.dat --properties country \
      "X-Forwarded-For=203.0.113.7"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvidenceLookup(args)
		},
	}
}

func parsePrefix(name string) (ipintel.Prefix, error) {
	switch strings.ToLower(name) {
	case "header":
		return ipintel.PrefixHeader, nil
	case "query":
		return ipintel.PrefixQuery, nil
	case "server":
		return ipintel.PrefixServer, nil
	case "cookie":
		return ipintel.PrefixCookie, nil
	default:
		return 0, fmt.Errorf("unknown evidence prefix %q", name)
	}
}

func runEvidenceLookup(pairs []string) error {
	prefix, err := parsePrefix(evidencePrefix)
	if err != nil {
		return err
	}

	evidence := make([]ipintel.Evidence, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("malformed evidence %q, expected key=value", pair)
		}
		evidence = append(evidence, ipintel.Evidence{Prefix: prefix, Key: key, Value: value})
	}

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

	if err := r.FromEvidence(evidence); err != nil {
		printError("resolving from evidence: %v\n", err)
		return err
	}

	if jsonOut {
		out := make(map[string][]ipintel.ValueWeight, len(stats.RequiredProperties))
		for i, name := range stats.RequiredProperties {
			values, _ := r.GetValues(i)
			out[name] = values
		}
		return printJSON(out)
	}

	for i, name := range stats.RequiredProperties {
		if !r.HasValues(i) {
			printInfo("  %s: <no values> (%s)\n", name, r.NoValueReason(i).String())
			continue
		}
		values, err := r.GetValues(i)
		if err != nil {
			return err
		}
		printInfo("  %s:\n", name)
		for _, v := range values {
			printInfo("    %s (weight %d/65535)\n", v.Text, v.RawWeighting)
		}
	}
	return nil
}
