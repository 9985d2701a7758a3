package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yairfalse/kartta/pkg/types"
)

func sampleArchitecture(ts time.Time) *types.Architecture {
	return &types.Architecture{
		Timestamp: ts,
		Services:  []string{"auth", "cart", "product"},
		Dependencies: map[string][]string{
			"auth":    {"product"},
			"product": {"cart"},
		},
		Endpoints: map[string][]string{
			"auth":    {"/login"},
			"product": {"/search", "/view"},
		},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	now := time.Now()
	a := sampleArchitecture(now)

	first, err := Fingerprint(a)
	require.NoError(t, err)
	second, err := Fingerprint(a)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFingerprint_IgnoresTimestampAndJourneys(t *testing.T) {
	a := sampleArchitecture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := sampleArchitecture(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	b.Journeys = []types.Journey{{CorrelationID: "corr-1", Services: []string{"auth"}}}
	b.Metrics = types.ArchitectureMetrics{TotalJourneys: 1}

	ha, err := Fingerprint(a)
	require.NoError(t, err)
	hb, err := Fingerprint(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestFingerprint_IgnoresInputOrdering(t *testing.T) {
	a := sampleArchitecture(time.Now())

	b := sampleArchitecture(time.Now())
	b.Services = []string{"product", "auth", "cart"}
	b.Endpoints["product"] = []string{"/view", "/search"}

	ha, err := Fingerprint(a)
	require.NoError(t, err)
	hb, err := Fingerprint(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestFingerprint_SensitiveToFacetChanges(t *testing.T) {
	base, err := Fingerprint(sampleArchitecture(time.Now()))
	require.NoError(t, err)

	withService := sampleArchitecture(time.Now())
	withService.Services = append(withService.Services, "payment")
	hs, err := Fingerprint(withService)
	require.NoError(t, err)
	assert.NotEqual(t, base, hs)

	withEdge := sampleArchitecture(time.Now())
	withEdge.Dependencies["cart"] = []string{"auth"}
	he, err := Fingerprint(withEdge)
	require.NoError(t, err)
	assert.NotEqual(t, base, he)

	withEndpoint := sampleArchitecture(time.Now())
	withEndpoint.Endpoints["auth"] = []string{"/login", "/logout"}
	hp, err := Fingerprint(withEndpoint)
	require.NoError(t, err)
	assert.NotEqual(t, base, hp)
}

func TestFingerprint_NilArchitecture(t *testing.T) {
	_, err := Fingerprint(nil)
	assert.Error(t, err)
}

func TestFingerprint_EmptyArchitecture(t *testing.T) {
	empty := &types.Architecture{
		Services:     []string{},
		Dependencies: map[string][]string{},
		Endpoints:    map[string][]string{},
	}
	h, err := Fingerprint(empty)
	require.NoError(t, err)
	assert.Len(t, h, 64)
}
