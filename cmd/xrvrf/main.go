// xrvrf - IOS-XR VRF address-family reconciliation
//
// Compares desired VRF address-family configuration against what a router
// runs and produces the IOS-XR commands that close the gap:
//   - Dry-run by default (print commands, require -x to apply them)
//   - Facts from the router over SSH, a fact file, or the Redis fact cache
//   - Audit logging of every run that could change a device
//
// Examples:
//
//	xrvrf -d xr1 run --state merged -c want.yaml          # preview
//	xrvrf -d xr1 run --state overridden -c want.yaml -x   # apply
//	xrvrf run --state replaced -c want.yaml --have have.yaml
//	xrvrf -d xr1 gather --save                            # refresh fact cache
//	xrvrf -d xr1 run --state deleted -c want.yaml --cached
//	xrvrf parse running.cfg
//	xrvrf -d xr1 diff -c want.yaml
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/newtron-network/xrvrf/pkg/audit"
	"github.com/newtron-network/xrvrf/pkg/auth"
	"github.com/newtron-network/xrvrf/pkg/cli"
	"github.com/newtron-network/xrvrf/pkg/settings"
	"github.com/newtron-network/xrvrf/pkg/util"
	"github.com/newtron-network/xrvrf/pkg/version"
)

var (
	// Global context flags
	deviceAddr string // -d, --device
	username   string // -u, --user

	// Fact source flags
	haveFile   string
	fromCache  bool
	knownHosts string
	redisAddr  string
	redisDB    int

	// Global option flags
	executeMode bool
	verbose     bool
	jsonOutput  bool

	// Global state
	userSettings *settings.Settings
	auditLogger  *audit.FileLogger
	permChecker  *auth.Checker
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "xrvrf",
	Short:             "IOS-XR VRF address-family reconciliation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `xrvrf reconciles VRF address-family configuration on IOS-XR routers.

Desired state is a YAML or JSON list of VRFs. Commands are previewed by
default; use -x to apply them.

  xrvrf -d <device> run --state <state> -c <file> [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isSettingsOrHelp(cmd) {
			return nil
		}

		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}
		applySettings(cmd, userSettings)
		permChecker = auth.NewChecker(userSettings.Access)

		auditLogger, err = audit.NewFileLogger(userSettings.GetAuditLog(), audit.RotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if auditLogger != nil {
			audit.SetDefaultLogger(nil)
			auditLogger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&deviceAddr, "device", "d", "", "Router address (host or host:port)")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "SSH username")
	rootCmd.PersistentFlags().StringVar(&knownHosts, "known-hosts", "", "known_hosts file for host key verification")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Fact cache address")
	rootCmd.PersistentFlags().IntVar(&redisDB, "redis-db", 0, "Fact cache database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	for _, cmd := range []*cobra.Command{runCmd, gatherCmd, diffCmd} {
		addSourceFlags(cmd)
	}
	for _, cmd := range []*cobra.Command{runCmd, parseCmd, gatherCmd, auditListCmd} {
		addOutputFlags(cmd)
	}
	addWriteFlags(runCmd)

	rootCmd.AddGroup(
		&cobra.Group{ID: "reconcile", Title: "Reconciliation:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{runCmd, diffCmd, gatherCmd, parseCmd} {
		cmd.GroupID = "reconcile"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String("xrvrf"))
	},
}

func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// applySettings fills flags the user did not pass from persistent settings.
func applySettings(cmd *cobra.Command, s *settings.Settings) {
	if deviceAddr == "" {
		deviceAddr = s.DefaultDevice
	}
	if username == "" {
		username = s.Username
	}
	if username == "" {
		username = currentUser()
	}
	if knownHosts == "" {
		knownHosts = s.KnownHostsFile
	}
	if redisAddr == "" {
		redisAddr = s.GetRedisAddr()
	}
	if !cmd.Flags().Changed("redis-db") {
		redisDB = s.GetRedisDB()
	}
}

// checkPermission enforces the access policy for the current device.
func checkPermission(perm auth.Permission, vrfName string) error {
	if permChecker == nil {
		return nil
	}
	return permChecker.Check(perm, auth.NewContext().WithDevice(deviceAddr).WithVRF(vrfName))
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// addSourceFlags registers the flags selecting where facts come from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&haveFile, "have", "", "Read current configuration from a YAML/JSON or running-config file")
	cmd.Flags().BoolVar(&fromCache, "cached", false, "Read current configuration from the Redis fact cache")
}

// addWriteFlags registers -x/--execute as a local flag.
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&executeMode, "execute", "x", false, "Execute changes (default is dry-run)")
}

// addOutputFlags registers --json as a local flag.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
}

// Color helpers delegating to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
