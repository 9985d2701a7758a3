package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yairfalse/kartta/internal/history"
	"github.com/yairfalse/kartta/internal/output"
)

func newTrendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "trend",
		Short:        "Analyze drift trends across the recorded history",
		SilenceUsage: true,
		Long: `Summarize how the architecture has evolved across the drift history:
time span covered, how many snapshots carried drift, the stability rate,
and first-to-last growth of services, dependencies, endpoints and journeys.

Needs at least two recorded snapshots.`,
		Example: `  kartta trend
  kartta trend --format json`,
		RunE: runTrend,
	}

	cmd.Flags().String("format", "", "output format (text, json)")

	return cmd
}

func runTrend(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	store, err := history.NewStore(cfg.Storage.BaseDir, log)
	if err != nil {
		return err
	}
	summary, err := store.Trend()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	if format == "json" {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(output.NewTrendFormatter().FormatTrend(summary))
	return nil
}
