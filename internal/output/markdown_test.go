package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yairfalse/kartta/internal/analyzer"
	"github.com/yairfalse/kartta/pkg/types"
)

func sampleArch() *types.Architecture {
	arch := &types.Architecture{
		Timestamp:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		DiscoveryMethod: "correlation_tracing",
		Services:        []string{"auth-service", "product-service"},
		Dependencies:    map[string][]string{"auth-service": {"product-service"}},
		Endpoints: map[string][]string{
			"auth-service":    {"/login"},
			"product-service": {"/search"},
		},
		Journeys: []types.Journey{
			{
				CorrelationID: "corr-1",
				JourneyName:   "login_then_search",
				Services:      []string{"auth-service", "product-service"},
				Endpoints: []types.EndpointCall{
					{Service: "auth-service", Endpoint: "/login"},
					{Service: "product-service", Endpoint: "/search"},
				},
				StartService: "auth-service",
				EndService:   "product-service",
				ServiceCount: 2,
			},
		},
	}
	arch.Normalize()
	return arch
}

func TestRenderReport(t *testing.T) {
	report := NewMarkdownRenderer().RenderReport(sampleArch())

	assert.Contains(t, report, "# Discovered Architecture")
	assert.Contains(t, report, "| Services | 2 |")
	assert.Contains(t, report, "```mermaid")
	assert.Contains(t, report, "### auth-service")
	assert.Contains(t, report, "| `/login` | 1 |")
	assert.Contains(t, report, "### login_then_search")
	assert.Contains(t, report, "Flow: auth-service -> product-service")
}

func TestRenderMermaid(t *testing.T) {
	arch := sampleArch()
	diagram := NewMarkdownRenderer().RenderMermaid(arch, analyzer.CallFrequencies(arch.Journeys))

	assert.Contains(t, diagram, "graph LR")
	assert.Contains(t, diagram, "User((User))")
	assert.Contains(t, diagram, "auth_service[auth-service]")
	assert.Contains(t, diagram, "User --> auth_service")
	assert.Contains(t, diagram, "auth_service -->|1 calls| product_service")
}

func TestRenderMermaid_NoFrequencies(t *testing.T) {
	arch := sampleArch()
	arch.Journeys = nil

	diagram := NewMarkdownRenderer().RenderMermaid(arch, nil)

	assert.Contains(t, diagram, "auth_service --> product_service")
	assert.NotContains(t, diagram, "calls|")
	assert.NotContains(t, diagram, "User --> ")
}

func TestRenderReport_Deterministic(t *testing.T) {
	renderer := NewMarkdownRenderer()
	first := renderer.RenderReport(sampleArch())
	second := renderer.RenderReport(sampleArch())
	assert.Equal(t, first, second)
}

func TestNodeID(t *testing.T) {
	assert.Equal(t, "auth_service", nodeID("auth-service"))
	assert.Equal(t, "svc_v2", nodeID("svc.v2"))
	assert.Equal(t, "_", nodeID(""))
}
