package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/xrvrf/pkg/audit"
	"github.com/newtron-network/xrvrf/pkg/auth"
	"github.com/newtron-network/xrvrf/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View audit logs of reconciliation runs.

Every run of a state that can change a device is logged with:
  - Timestamp
  - User who ran it
  - Device affected
  - State and generated commands
  - Success/failure status

Examples:
  xrvrf audit list --device xr1
  xrvrf audit list --last 24h
  xrvrf audit list --state overridden --failures
  xrvrf audit rotate`,
}

var (
	auditDevice   string
	auditUser     string
	auditState    string
	auditLast     string
	auditLimit    int
	auditFailures bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkPermission(auth.PermAuditView, ""); err != nil {
			return err
		}

		filter := audit.Filter{
			Device:      auditDevice,
			User:        auditUser,
			State:       auditState,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		// Parse --last duration
		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "DEVICE", "STATE", "COMMANDS", "STATUS")
		for _, event := range events {
			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Device,
				event.State,
				strconv.Itoa(len(event.Commands)),
				eventStatus(event),
			)
		}
		t.Flush()

		return nil
	},
}

var auditRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Start a new audit log file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkPermission(auth.PermAuditView, ""); err != nil {
			return err
		}
		if auditLogger == nil {
			return fmt.Errorf("audit logging is not available")
		}
		if err := auditLogger.Rotate(); err != nil {
			return fmt.Errorf("rotating audit log: %w", err)
		}
		fmt.Println("Audit log rotated.")
		return nil
	},
}

func eventStatus(event *audit.Event) string {
	switch {
	case !event.Success:
		return red("failed")
	case event.DryRun:
		return yellow("dry-run")
	case !event.Changed():
		return "unchanged"
	default:
		return green("ok")
	}
}

func init() {
	auditListCmd.Flags().StringVar(&auditDevice, "device", "", "Filter by device")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditState, "state", "", "Filter by state")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h, 90m)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed runs")

	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditRotateCmd)
}
