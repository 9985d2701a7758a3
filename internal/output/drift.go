// Package output renders architecture and drift data for humans. Everything
// here is presentation over the core data model and derived deterministically
// from it.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/yairfalse/kartta/pkg/types"
)

// DriftFormatter renders drift comparison results as text.
type DriftFormatter struct {
	noColor bool
}

// NewDriftFormatter creates a formatter; noColor disables ANSI colors.
func NewDriftFormatter(noColor bool) *DriftFormatter {
	return &DriftFormatter{noColor: noColor}
}

var severityGuidance = map[types.Severity]string{
	types.SeverityNoChange: "No changes detected",
	types.SeverityLow:      "Minor changes - document for reference",
	types.SeverityMedium:   "Moderate changes - review recommended",
	types.SeverityHigh:     "Significant changes - action required",
	types.SeverityCritical: "Critical changes - immediate review needed",
}

var severityRecommendations = map[types.Severity][]string{
	types.SeverityNoChange: {"No action required"},
	types.SeverityLow: {
		"Document changes in architecture notes",
		"Update diagrams if needed",
	},
	types.SeverityMedium: {
		"Review changes with the team",
		"Verify the changes were intended",
		"Update documentation",
	},
	types.SeverityHigh: {
		"Immediate team review required",
		"Validate all changes are authorized",
		"Update monitoring and alerts",
	},
	types.SeverityCritical: {
		"URGENT: immediate review required",
		"Validate changes are intentional",
		"Check for security implications",
		"Alert stakeholders",
	},
}

func (f *DriftFormatter) severityColor(severity types.Severity) *color.Color {
	if f.noColor {
		return color.New()
	}
	switch severity {
	case types.SeverityNoChange:
		return color.New(color.FgGreen)
	case types.SeverityLow:
		return color.New(color.FgGreen)
	case types.SeverityMedium:
		return color.New(color.FgYellow)
	case types.SeverityHigh:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// FormatDriftReport renders a full drift report: score, severity, per-facet
// changes and recommendations.
func (f *DriftFormatter) FormatDriftReport(baseline, current string, cs *types.ChangeSet, score int, severity types.Severity) string {
	var sb strings.Builder
	rule := strings.Repeat("=", 60)

	sb.WriteString(rule + "\n")
	sb.WriteString("ARCHITECTURE DRIFT REPORT\n")
	sb.WriteString(rule + "\n\n")
	if baseline != "" {
		sb.WriteString(fmt.Sprintf("Baseline:  %s\n", baseline))
	}
	if current != "" {
		sb.WriteString(fmt.Sprintf("Current:   %s\n", current))
	}
	sb.WriteString(fmt.Sprintf("Timestamp: %s\n\n", time.Now().UTC().Format(time.RFC3339)))

	sb.WriteString(fmt.Sprintf("Drift Score: %d/100\n", score))
	sb.WriteString(fmt.Sprintf("Severity:    %s\n", f.severityColor(severity).Sprint(severity.String())))
	sb.WriteString(fmt.Sprintf("Impact:      %s\n\n", severityGuidance[severity]))

	if cs.Initial {
		sb.WriteString("Initial snapshot - no baseline to compare against.\n\n")
	} else if cs.IsEmpty() {
		sb.WriteString("Architecture is stable - no drift from baseline.\n\n")
	} else {
		f.writeFacet(&sb, "Service Changes",
			cs.ServicesAdded, cs.ServicesRemoved)
		f.writeFacet(&sb, "Dependency Changes",
			edgeStrings(cs.DependenciesAdded), edgeStrings(cs.DependenciesRemoved))
		f.writeFacet(&sb, "Endpoint Changes",
			refStrings(cs.EndpointsAdded), refStrings(cs.EndpointsRemoved))
	}

	sb.WriteString("Recommendations:\n")
	for _, rec := range severityRecommendations[severity] {
		sb.WriteString(fmt.Sprintf("  • %s\n", rec))
	}

	return sb.String()
}

// FormatSummary renders a one-line drift summary for quiet-ish flows.
func (f *DriftFormatter) FormatSummary(cs *types.ChangeSet, score int, severity types.Severity) string {
	if cs.Initial {
		return "initial snapshot, drift score 0\n"
	}
	return fmt.Sprintf("%d changes, drift score %d/100, severity %s\n",
		cs.ChangeCount(), score, f.severityColor(severity).Sprint(severity.String()))
}

func (f *DriftFormatter) writeFacet(sb *strings.Builder, title string, added, removed []string) {
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for _, item := range added {
		line := fmt.Sprintf("  + %s\n", item)
		if f.noColor {
			sb.WriteString(line)
		} else {
			sb.WriteString(color.GreenString(line))
		}
	}
	for _, item := range removed {
		line := fmt.Sprintf("  - %s\n", item)
		if f.noColor {
			sb.WriteString(line)
		} else {
			sb.WriteString(color.RedString(line))
		}
	}
	sb.WriteString("\n")
}

func edgeStrings(edges []types.DependencyEdge) []string {
	out := make([]string, len(edges))
	for i, edge := range edges {
		out[i] = edge.String()
	}
	return out
}

func refStrings(refs []types.EndpointRef) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ref.String()
	}
	return out
}
