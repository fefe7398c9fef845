package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/xrvrf/pkg/auth"
	"github.com/newtron-network/xrvrf/pkg/vrfaf"
)

var parseCmd = &cobra.Command{
	Use:   "parse <running-config-file>",
	Short: "Parse running-config text into VRF records",
	Long: `Parse the output of 'show running-config vrf' into structured VRF
address-family records. No device is contacted.

Examples:
  xrvrf parse running.cfg
  xrvrf parse running.cfg --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading running config: %w", err)
		}

		m := &vrfaf.Module{}
		res, err := m.Execute(context.Background(), vrfaf.Request{
			State:         vrfaf.Parsed,
			RunningConfig: string(text),
		})
		if err != nil {
			return err
		}
		return writeVRFs(os.Stdout, res.Parsed)
	},
}

var gatherSave bool

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Print the current VRF address-family configuration",
	Long: `Gather the current configuration from the router (or --have/--cached)
and print it as YAML or JSON. With --save the result is written to the
Redis fact cache for later runs with --cached.

Examples:
  xrvrf -d xr1 gather
  xrvrf -d xr1 gather --save
  xrvrf -d xr1 gather --cached --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if gatherSave && fromCache {
			return fmt.Errorf("--save and --cached are mutually exclusive")
		}
		if gatherSave {
			if err := checkPermission(auth.PermFactsSave, ""); err != nil {
				return err
			}
		}

		ctx := context.Background()
		sess, err := openSession(ctx, false)
		if err != nil {
			return err
		}
		defer sess.Close()

		m := &vrfaf.Module{Facts: sess.facts}
		res, err := m.Execute(ctx, vrfaf.Request{State: vrfaf.Gathered, Device: deviceAddr, User: operator()})
		if err != nil {
			return err
		}

		if gatherSave {
			if deviceAddr == "" {
				return fmt.Errorf("device required: use -d <device> to name the cached facts")
			}
			if err := saveFacts(ctx, res.Gathered); err != nil {
				return err
			}
			if !jsonOutput {
				fmt.Fprintln(os.Stderr, green(fmt.Sprintf("Saved %d VRFs to the fact cache.", len(res.Gathered))))
			}
		}

		return writeVRFs(os.Stdout, res.Gathered)
	},
}

func init() {
	gatherCmd.Flags().BoolVar(&gatherSave, "save", false, "Store the gathered configuration in the fact cache")
}
