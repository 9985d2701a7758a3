package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yairfalse/kartta/internal/differ"
	karttaerrors "github.com/yairfalse/kartta/internal/errors"
	"github.com/yairfalse/kartta/internal/output"
	"github.com/yairfalse/kartta/pkg/types"
	"gopkg.in/yaml.v3"
)

func newDriftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "drift <baseline> <current>",
		Short:        "Compare two architecture snapshots (like 'git diff' for your service map)",
		SilenceUsage: true,
		Long: `Compare two architecture snapshot files and score the drift between them.

Changes are weighted by risk: removals score higher than additions, service
changes higher than dependency changes, dependency changes higher than
endpoint changes. The total is capped at 100 and mapped to a severity tier.

Exit codes: 0 for NO_CHANGE, LOW and MEDIUM drift; 1 for HIGH and CRITICAL,
so CI pipelines can gate on significant drift.`,
		Example: `  # Compare a committed baseline against the latest discovery
  kartta drift baseline_architecture.json discovered_architecture.json

  # Machine-readable output
  kartta drift old.json new.json --format json

  # Gate a pipeline on drift severity
  if ! kartta drift baseline.json current.json --quiet; then
    echo "Significant architecture drift detected!"
  fi`,
		Args: cobra.ExactArgs(2),
		RunE: runDrift,
	}

	cmd.Flags().String("format", "", "output format (text, json, yaml, markdown)")
	cmd.Flags().BoolP("quiet", "q", false, "suppress output, exit with status only")

	return cmd
}

// driftResult is the machine-readable shape of one comparison.
type driftResult struct {
	Baseline   string           `json:"baseline" yaml:"baseline"`
	Current    string           `json:"current" yaml:"current"`
	Changes    *types.ChangeSet `json:"changes" yaml:"changes"`
	DriftScore int              `json:"drift_score" yaml:"drift_score"`
	Severity   types.Severity   `json:"severity" yaml:"severity"`
}

func loadArchitectureFile(path string) (*types.Architecture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, karttaerrors.New(karttaerrors.ErrorTypeInputMissing, karttaerrors.SourceSnapshot,
				fmt.Sprintf("architecture file not found: %s", path)).
				WithSolutions(
					"Check the file path and spelling",
					"Run 'kartta discover' to produce a current snapshot",
				).
				WithHelp("kartta drift --help")
		}
		return nil, karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceSnapshot,
			fmt.Sprintf("failed to read architecture file: %s", path)).WithCause(err.Error())
	}

	var arch types.Architecture
	if err := json.Unmarshal(data, &arch); err != nil {
		return nil, karttaerrors.New(karttaerrors.ErrorTypeParse, karttaerrors.SourceSnapshot,
			fmt.Sprintf("architecture file is not valid JSON: %s", path)).
			WithCause(err.Error()).
			WithSolutions("Ensure the file was produced by 'kartta discover'")
	}
	arch.Normalize()
	return &arch, nil
}

func runDrift(cmd *cobra.Command, args []string) error {
	baselinePath, currentPath := args[0], args[1]

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	quiet, _ := cmd.Flags().GetBool("quiet")

	validFormats := []string{"text", "json", "yaml", "markdown"}
	valid := false
	for _, f := range validFormats {
		if format == f {
			valid = true
			break
		}
	}
	if !valid {
		return karttaerrors.New(karttaerrors.ErrorTypeValidation, karttaerrors.SourceUnknown,
			fmt.Sprintf("invalid format %q", format)).
			WithSolutions("Valid formats: " + strings.Join(validFormats, ", "))
	}

	baseline, err := loadArchitectureFile(baselinePath)
	if err != nil {
		return err
	}
	current, err := loadArchitectureFile(currentPath)
	if err != nil {
		return err
	}

	changes := differ.NewComparator().Compare(baseline, current)
	score, severity := differ.Score(changes)

	if !quiet {
		rendered, err := renderDrift(cmd, baselinePath, currentPath, changes, score, severity, format)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
	}

	if code := karttaerrors.DriftExitCode(severity); code != 0 {
		os.Exit(code) // Significant drift gates the pipeline, like git diff
	}
	return nil
}

func renderDrift(cmd *cobra.Command, baselinePath, currentPath string, changes *types.ChangeSet, score int, severity types.Severity, format string) (string, error) {
	switch format {
	case "json":
		result := driftResult{
			Baseline:   baselinePath,
			Current:    currentPath,
			Changes:    changes,
			DriftScore: score,
			Severity:   severity,
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		result := driftResult{
			Baseline:   baselinePath,
			Current:    currentPath,
			Changes:    changes,
			DriftScore: score,
			Severity:   severity,
		}
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "markdown":
		return renderDriftMarkdown(baselinePath, currentPath, changes, score, severity), nil

	default:
		formatter := output.NewDriftFormatter(noColorEnabled(cmd))
		return formatter.FormatDriftReport(baselinePath, currentPath, changes, score, severity), nil
	}
}

func renderDriftMarkdown(baselinePath, currentPath string, changes *types.ChangeSet, score int, severity types.Severity) string {
	var sb strings.Builder
	sb.WriteString("# Architecture Drift Report\n\n")
	sb.WriteString(fmt.Sprintf("- Baseline: `%s`\n", baselinePath))
	sb.WriteString(fmt.Sprintf("- Current: `%s`\n", currentPath))
	sb.WriteString(fmt.Sprintf("- Drift score: **%d/100**\n", score))
	sb.WriteString(fmt.Sprintf("- Severity: **%s**\n\n", severity))

	if changes.IsEmpty() {
		sb.WriteString("No drift detected.\n")
		return sb.String()
	}

	writeMarkdownFacet(&sb, "Services added", changes.ServicesAdded)
	writeMarkdownFacet(&sb, "Services removed", changes.ServicesRemoved)
	writeMarkdownFacet(&sb, "Dependencies added", edgeNames(changes.DependenciesAdded))
	writeMarkdownFacet(&sb, "Dependencies removed", edgeNames(changes.DependenciesRemoved))
	writeMarkdownFacet(&sb, "Endpoints added", refNames(changes.EndpointsAdded))
	writeMarkdownFacet(&sb, "Endpoints removed", refNames(changes.EndpointsRemoved))
	return sb.String()
}

func writeMarkdownFacet(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- `%s`\n", item))
	}
	sb.WriteString("\n")
}

func edgeNames(edges []types.DependencyEdge) []string {
	out := make([]string, len(edges))
	for i, edge := range edges {
		out[i] = edge.String()
	}
	return out
}

func refNames(refs []types.EndpointRef) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ref.String()
	}
	return out
}
