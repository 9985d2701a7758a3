package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yairfalse/kartta/internal/history"
	"github.com/yairfalse/kartta/pkg/types"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "List recorded architecture snapshots and their drift",
		SilenceUsage: true,
		Long: `List the drift history in append order: when each snapshot was captured,
its fingerprint, what changed against its predecessor and how it was scored.

Identical consecutive snapshots are deduplicated at capture time, so every
entry here represents a real change (or the initial snapshot).`,
		Example: `  kartta history
  kartta history --limit 5
  kartta history --format json`,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 0, "show only the most recent N entries (0 = all)")
	cmd.Flags().String("format", "", "output format (text, json)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	store, err := history.NewStore(cfg.Storage.BaseDir, log)
	if err != nil {
		return err
	}
	records, err := store.History()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && limit < len(records) {
		records = records[len(records)-limit:]
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	if format == "json" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No snapshots recorded yet. Run 'kartta discover' to capture one.")
		return nil
	}

	fmt.Printf("Drift history (%d snapshot(s), stored in %s):\n\n", len(records), store.BaseDir())
	for _, record := range records {
		fmt.Println(formatHistoryLine(&record, noColorEnabled(cmd)))
	}
	return nil
}

func formatHistoryLine(record *types.DriftRecord, noColor bool) string {
	severity := record.Severity.String()
	if !noColor {
		switch record.Severity {
		case types.SeverityHigh, types.SeverityCritical:
			severity = color.RedString(severity)
		case types.SeverityMedium:
			severity = color.YellowString(severity)
		default:
			severity = color.GreenString(severity)
		}
	}

	summary := "initial snapshot"
	if !record.Changes.Initial {
		summary = fmt.Sprintf("%d change(s)", record.Changes.ChangeCount())
	}

	return fmt.Sprintf("  %s  %.12s  score %3d  %-8s  %s  (%d services, %d deps)",
		record.Timestamp.UTC().Format(time.RFC3339),
		record.Hash,
		record.DriftScore,
		strings.TrimSpace(severity),
		summary,
		record.Metrics.TotalServices,
		record.Metrics.TotalDependencies)
}
