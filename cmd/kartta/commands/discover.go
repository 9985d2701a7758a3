package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	karttaerrors "github.com/yairfalse/kartta/internal/errors"
	"github.com/yairfalse/kartta/internal/history"
	"github.com/yairfalse/kartta/internal/output"
	"github.com/yairfalse/kartta/internal/tracer"
	"github.com/yairfalse/kartta/pkg/types"
)

const (
	architectureFileName = "discovered_architecture.json"
	journeyDetailsName   = "journey_details.json"
	reportFileName       = "architecture_report.md"
)

func newDiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "discover",
		Short:        "Infer the service architecture from request traces",
		SilenceUsage: true,
		Long: `Fetch the trace for every known user journey, infer the service
architecture they imply, and record the result.

Reads journey correlation IDs from a JSON file, fetches each trace from the
trace store, and derives services, dependencies and endpoints from the event
sequences. Journeys whose traces cannot be fetched are skipped, never fatal.

Writes the discovered architecture, a per-journey detail file and a markdown
report, and appends the snapshot to the drift history.`,
		Example: `  # Discover using correlation_ids.json in the current directory
  kartta discover

  # Explicit journeys file and output directory
  kartta discover --journeys my_journeys.json --output-dir ./out

  # Skip the history append (pure discovery)
  kartta discover --no-history`,
		RunE: runDiscover,
	}

	cmd.Flags().String("journeys", "", "journeys file with correlation IDs (default from config)")
	cmd.Flags().String("output-dir", ".", "directory for generated files")
	cmd.Flags().String("trace-store", "", "trace store base URL (default from config)")
	cmd.Flags().Int("workers", 0, "concurrent trace fetches (default from config)")
	cmd.Flags().Bool("no-history", false, "do not append the snapshot to the drift history")

	return cmd
}

// journeysFile is the on-disk catalog of known user journeys.
type journeysFile struct {
	Journeys []types.JourneyRef `json:"journeys"`
}

func loadJourneyRefs(path string) ([]types.JourneyRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, karttaerrors.New(karttaerrors.ErrorTypeInputMissing, karttaerrors.SourceTraceStore,
				fmt.Sprintf("journeys file not found: %s", path)).
				WithCause("Discovery needs a catalog of correlation IDs to trace").
				WithSolutions(
					"Create the file with {\"journeys\": [{\"name\": ..., \"correlation_id\": ...}]}",
					"Point at an existing catalog with --journeys",
				).
				WithHelp("kartta discover --help")
		}
		return nil, karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceTraceStore,
			fmt.Sprintf("failed to read journeys file: %s", path)).WithCause(err.Error())
	}

	var catalog journeysFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, karttaerrors.New(karttaerrors.ErrorTypeParse, karttaerrors.SourceTraceStore,
			fmt.Sprintf("journeys file is not valid JSON: %s", path)).
			WithCause(err.Error()).
			WithSolutions("Fix the JSON syntax", "Check for a truncated file")
	}

	refs := make([]types.JourneyRef, 0, len(catalog.Journeys))
	for _, ref := range catalog.Journeys {
		if err := ref.Validate(); err != nil {
			return nil, karttaerrors.New(karttaerrors.ErrorTypeValidation, karttaerrors.SourceTraceStore,
				fmt.Sprintf("invalid journey entry in %s", path)).WithCause(err.Error())
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	journeysPath, _ := cmd.Flags().GetString("journeys")
	if journeysPath == "" {
		journeysPath = cfg.Discovery.JourneysFile
	}
	outputDir, _ := cmd.Flags().GetString("output-dir")
	traceStoreURL, _ := cmd.Flags().GetString("trace-store")
	if traceStoreURL == "" {
		traceStoreURL = cfg.TraceStore.URL
	}
	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		workers = cfg.Discovery.Workers
	}
	noHistory, _ := cmd.Flags().GetBool("no-history")

	refs, err := loadJourneyRefs(journeysPath)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d journey(s) from %s\n", len(refs), journeysPath)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Duplicate correlation IDs in the catalog are fetched once.
	client := tracer.NewClient(traceStoreURL, cfg.TraceStore.Timeout, log).
		WithCache(tracer.NewTraceCache(5 * time.Minute))
	if err := client.Health(ctx); err != nil {
		log.Warn(fmt.Sprintf("trace store health check failed: %v", err))
		fmt.Printf("Warning: trace store at %s is not healthy, traces may come back empty\n", traceStoreURL)
	}

	fmt.Printf("Fetching traces from %s with %d worker(s)...\n", traceStoreURL, workers)
	traces := client.FetchAll(ctx, refs, workers)

	arch := tracer.NewInferencer(log).Infer(traces)

	skipped := len(refs) - len(arch.Journeys)
	if skipped > 0 {
		fmt.Printf("Skipped %d journey(s) with empty or unavailable traces\n", skipped)
	}

	if err := writeDiscoveryFiles(outputDir, arch); err != nil {
		return err
	}

	fmt.Printf("\nDiscovered %d service(s), %d dependencies, %d endpoints from %d journey(s)\n",
		arch.Metrics.TotalServices, arch.Metrics.TotalDependencies,
		arch.Metrics.TotalEndpoints, arch.Metrics.TotalJourneys)
	fmt.Printf("Saved: %s, %s, %s\n", architectureFileName, journeyDetailsName, reportFileName)

	if noHistory {
		return nil
	}

	store, err := history.NewStore(cfg.Storage.BaseDir, log)
	if err != nil {
		return err
	}
	result, err := store.Append(arch)
	if err != nil {
		return err
	}
	if result.NoOp {
		fmt.Printf("Architecture unchanged since last snapshot (hash %.12s), history untouched\n", result.Hash)
		return nil
	}

	formatter := output.NewDriftFormatter(noColorEnabled(cmd))
	fmt.Printf("Snapshot recorded (hash %.12s): %s", result.Hash,
		formatter.FormatSummary(result.Record.Changes, result.Record.DriftScore, result.Record.Severity))
	return nil
}

// writeDiscoveryFiles persists the architecture snapshot, the journey detail
// index keyed by correlation ID, and the markdown report.
func writeDiscoveryFiles(dir string, arch *types.Architecture) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceSnapshot,
			fmt.Sprintf("failed to create output directory %s", dir)).WithCause(err.Error())
	}

	if err := writeJSON(filepath.Join(dir, architectureFileName), arch); err != nil {
		return err
	}

	details := make(map[string]types.Journey, len(arch.Journeys))
	for _, journey := range arch.Journeys {
		details[journey.CorrelationID] = journey
	}
	if err := writeJSON(filepath.Join(dir, journeyDetailsName), details); err != nil {
		return err
	}

	report := output.NewMarkdownRenderer().RenderReport(arch)
	if err := os.WriteFile(filepath.Join(dir, reportFileName), []byte(report), 0o644); err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceSnapshot,
			"failed to write architecture report").WithCause(err.Error())
	}
	return nil
}

func writeJSON(path string, data interface{}) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceSnapshot,
			fmt.Sprintf("failed to encode %s", filepath.Base(path))).WithCause(err.Error())
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceSnapshot,
			fmt.Sprintf("failed to write %s", path)).WithCause(err.Error())
	}
	return nil
}
