package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/xrvrf/pkg/auth"
	"github.com/newtron-network/xrvrf/pkg/facts"
	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/util"
	"github.com/newtron-network/xrvrf/pkg/vrfaf"
)

var (
	runState      string
	runConfigFile string
	runSaveFacts  bool
)

// readOnlyCommands maps the reporting states to the commands serving them.
var readOnlyCommands = map[vrfaf.State]string{
	vrfaf.Parsed:   "parse",
	vrfaf.Gathered: "gather",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile VRF address families to the desired state",
	Long: `Compare the desired configuration with the router and print the
commands that reconcile them. With -x the commands are committed and the
configuration is gathered again.

States:
  merged      Add or change what the config names; never remove
  replaced    Make each named address family match the config exactly
  overridden  Make the router match the config; remove everything else
  deleted     Remove address families of the named VRFs (all VRFs if none)
  parsed      Parse a running-config file (see 'xrvrf parse')
  gathered    Print the current configuration (see 'xrvrf gather')

Examples:
  xrvrf -d xr1 run --state merged -c want.yaml
  xrvrf -d xr1 run --state overridden -c want.yaml -x
  xrvrf run --state replaced -c want.yaml --have have.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := vrfaf.ParseState(runState)
		if err != nil {
			return err
		}
		if state.ReadOnly() {
			return fmt.Errorf("state %s does not reconcile: use 'xrvrf %s'", state, readOnlyCommands[state])
		}
		if runConfigFile == "" && state != vrfaf.Deleted {
			return fmt.Errorf("config required: use -c <file> with state %s", state)
		}
		if runSaveFacts && !executeMode {
			return fmt.Errorf("--save requires --execute (-x)")
		}

		want, err := loadConfig(runConfigFile)
		if err != nil {
			return err
		}

		if executeMode {
			if err := checkRunPermissions(state, want); err != nil {
				return err
			}
		}

		ctx := context.Background()
		sess, err := openSession(ctx, executeMode)
		if err != nil {
			return err
		}
		defer sess.Close()

		m := sess.module()
		res, err := m.Execute(ctx, vrfaf.Request{
			State:   state,
			Config:  want,
			Device:  deviceAddr,
			User:    operator(),
			Execute: executeMode,
		})
		if err != nil {
			return err
		}

		if runSaveFacts && res.After != nil {
			if err := saveFacts(ctx, res.After); err != nil {
				return err
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		if !res.Changed {
			fmt.Println(green("No changes: device already matches the desired state."))
			return nil
		}

		fmt.Printf("Commands (%s):\n", state)
		writeCommands(os.Stdout, res.Commands)

		if executeMode {
			fmt.Println("\n" + green("Changes committed successfully."))
		} else {
			printDryRunNotice()
		}
		return nil
	},
}

// checkRunPermissions checks that the operator may apply state to every
// VRF the run targets, and may update the fact cache when -s is set.
func checkRunPermissions(state vrfaf.State, want []model.VRF) error {
	perm, ok := auth.ForState(string(state))
	if !ok {
		return fmt.Errorf("no permission defined for state %s", state)
	}
	for _, name := range targetVRFs(want) {
		if err := checkPermission(perm, name); err != nil {
			return err
		}
	}
	if runSaveFacts {
		return checkPermission(auth.PermFactsSave, "")
	}
	return nil
}

// targetVRFs names the VRFs a run may touch. An empty name covers every
// VRF on the device.
func targetVRFs(want []model.VRF) []string {
	if len(want) == 0 {
		return []string{""}
	}
	names := make([]string, 0, len(want))
	for _, v := range want {
		names = append(names, v.Name)
	}
	return names
}

// operator returns the user recorded in audit events.
func operator() string {
	if permChecker != nil {
		return permChecker.CurrentUser()
	}
	return currentUser()
}

// saveFacts stores vrfs as the cached facts of the current device.
func saveFacts(ctx context.Context, vrfs []model.VRF) error {
	store := facts.NewRedisStore(redisAddr, redisDB, deviceAddr)
	defer store.Close()

	if err := store.Save(ctx, vrfs); err != nil {
		return fmt.Errorf("updating fact cache: %w", err)
	}
	util.WithDevice(deviceAddr).Infof("fact cache updated with %d vrfs", len(vrfs))
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runState, "state", string(vrfaf.Merged), "Reconciliation state")
	runCmd.Flags().StringVarP(&runConfigFile, "config", "c", "", "Desired configuration (YAML or JSON)")
	runCmd.Flags().BoolVarP(&runSaveFacts, "save", "s", false, "Store the resulting configuration in the fact cache (requires -x)")
}
