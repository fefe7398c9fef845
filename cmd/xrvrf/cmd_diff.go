package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/xrvrf/pkg/cli"
	"github.com/newtron-network/xrvrf/pkg/vrfaf"
)

var diffConfigFile string

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show a unified diff between current and desired configuration",
	Long: `Render the current and desired VRF records as YAML and print a
unified diff. Nothing is changed on the device.

Examples:
  xrvrf -d xr1 diff -c want.yaml
  xrvrf diff -c want.yaml --have have.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if diffConfigFile == "" {
			return fmt.Errorf("config required: use -c <file>")
		}
		want, err := loadConfig(diffConfigFile)
		if err != nil {
			return err
		}

		ctx := context.Background()
		sess, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer sess.Close()

		have, err := sess.facts.Gather(ctx)
		if err != nil {
			return fmt.Errorf("gathering facts: %w", err)
		}

		text, err := vrfaf.TextDiff(have, want)
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Println(green("No differences."))
			return nil
		}
		for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
			fmt.Println(cli.DiffLine(line))
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffConfigFile, "config", "c", "", "Desired configuration (YAML or JSON)")
}
