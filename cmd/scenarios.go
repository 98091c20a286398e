package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/queuenet/queuenet/sim/scenario"
)

var dumpScenario string // Preset to write as YAML

// scenariosCmd lists the presets, or writes one as a YAML network file
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List preset networks or dump one as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if dumpScenario == "" {
			for _, name := range scenario.Names() {
				fmt.Fprintln(out, name)
			}
			return
		}
		cfg, err := scenario.Lookup(dumpScenario)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		data, err := cfg.YAML()
		if err != nil {
			logrus.Fatalf("Encoding scenario: %v", err)
		}
		if _, err := out.Write(data); err != nil {
			logrus.Fatalf("Writing scenario: %v", err)
		}
	},
}

func init() {
	scenariosCmd.Flags().StringVar(&dumpScenario, "dump", "", "Preset to write as YAML")
}
