package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yairfalse/kartta/internal/analyzer"
	"github.com/yairfalse/kartta/pkg/types"
)

// MarkdownRenderer produces architecture reports and mermaid diagrams.
// Output ordering is deterministic so reports can be committed and diffed.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// RenderReport builds a markdown report for an architecture: summary metrics,
// a mermaid diagram, per-service endpoint tables and journey descriptions.
func (m *MarkdownRenderer) RenderReport(arch *types.Architecture) string {
	freq := analyzer.CallFrequencies(arch.Journeys)

	var sb strings.Builder
	sb.WriteString("# Discovered Architecture\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", arch.Timestamp.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Discovery method: `%s`\n\n", arch.DiscoveryMethod))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Count |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Services | %d |\n", arch.Metrics.TotalServices))
	sb.WriteString(fmt.Sprintf("| Dependencies | %d |\n", arch.Metrics.TotalDependencies))
	sb.WriteString(fmt.Sprintf("| Endpoints | %d |\n", arch.Metrics.TotalEndpoints))
	sb.WriteString(fmt.Sprintf("| Journeys | %d |\n\n", arch.Metrics.TotalJourneys))

	sb.WriteString("## Service Map\n\n")
	sb.WriteString("```mermaid\n")
	sb.WriteString(m.RenderMermaid(arch, freq))
	sb.WriteString("```\n\n")

	m.writeServices(&sb, arch, freq)
	m.writeJourneys(&sb, arch.Journeys)

	return sb.String()
}

// RenderMermaid builds a left-to-right mermaid flowchart. A User entry node
// points at each journey's starting service; edges are annotated with call
// counts when frequencies are available.
func (m *MarkdownRenderer) RenderMermaid(arch *types.Architecture, freq *analyzer.FrequencyReport) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    User((User))\n")

	for _, svc := range arch.Services {
		sb.WriteString(fmt.Sprintf("    %s[%s]\n", nodeID(svc), svc))
	}

	entries := make(map[string]struct{})
	for _, journey := range arch.Journeys {
		if journey.StartService != "" {
			entries[journey.StartService] = struct{}{}
		}
	}
	for _, svc := range sortedKeys(entries) {
		sb.WriteString(fmt.Sprintf("    User --> %s\n", nodeID(svc)))
	}

	for _, edge := range arch.DependencyEdges() {
		calls := 0
		if freq != nil {
			calls = freq.Calls(edge)
		}
		if calls > 0 {
			sb.WriteString(fmt.Sprintf("    %s -->|%d calls| %s\n", nodeID(edge.Source), calls, nodeID(edge.Target)))
		} else {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeID(edge.Source), nodeID(edge.Target)))
		}
	}
	return sb.String()
}

func (m *MarkdownRenderer) writeServices(sb *strings.Builder, arch *types.Architecture, freq *analyzer.FrequencyReport) {
	if len(arch.Services) == 0 {
		return
	}
	sb.WriteString("## Services\n\n")
	for _, svc := range arch.Services {
		sb.WriteString(fmt.Sprintf("### %s\n\n", svc))
		if freq != nil {
			if calls := freq.ServiceCalls[svc]; calls > 0 {
				sb.WriteString(fmt.Sprintf("Observed in %d journey traversal(s).\n\n", calls))
			}
		}
		if deps := arch.Dependencies[svc]; len(deps) > 0 {
			sb.WriteString(fmt.Sprintf("Calls: %s\n\n", strings.Join(deps, ", ")))
		}
		if endpoints := arch.Endpoints[svc]; len(endpoints) > 0 {
			sb.WriteString("| Endpoint | Calls |\n|----------|-------|\n")
			for _, endpoint := range endpoints {
				calls := 0
				if freq != nil {
					calls = freq.EndpointCalls[types.EndpointRef{Service: svc, Endpoint: endpoint}]
				}
				sb.WriteString(fmt.Sprintf("| `%s` | %d |\n", endpoint, calls))
			}
			sb.WriteString("\n")
		}
	}
}

func (m *MarkdownRenderer) writeJourneys(sb *strings.Builder, journeys []types.Journey) {
	if len(journeys) == 0 {
		return
	}
	sb.WriteString("## User Journeys\n\n")
	for _, journey := range journeys {
		name := journey.JourneyName
		if name == "" {
			name = journey.CorrelationID
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", name))
		sb.WriteString(fmt.Sprintf("- Correlation ID: `%s`\n", journey.CorrelationID))
		sb.WriteString(fmt.Sprintf("- Flow: %s\n", strings.Join(journey.Services, " -> ")))
		sb.WriteString(fmt.Sprintf("- Services touched: %d\n\n", journey.ServiceCount))
	}
}

// nodeID turns a service name into a mermaid-safe node identifier.
func nodeID(service string) string {
	var sb strings.Builder
	for _, r := range service {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
