// Package fingerprint computes the deterministic content hash used for
// no-op detection when appending architecture snapshots to history.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/yairfalse/kartta/pkg/types"
)

// canonicalArchitecture is the hashed projection of a snapshot: identity
// facets only. Timestamp and journeys are deliberately absent so two
// captures of the same architecture hash identically.
type canonicalArchitecture struct {
	Services     []string            `json:"services"`
	Dependencies map[string][]string `json:"service_dependencies"`
	Endpoints    map[string][]string `json:"service_endpoints"`
}

// Fingerprint returns a stable hex digest of the snapshot's identity facets.
// Input ordering is irrelevant: every list is sorted before serialization and
// encoding/json emits map keys in sorted order.
func Fingerprint(arch *types.Architecture) (string, error) {
	if arch == nil {
		return "", fmt.Errorf("cannot fingerprint nil architecture")
	}

	canonical := canonicalArchitecture{
		Services:     sortedCopy(arch.Services),
		Dependencies: make(map[string][]string, len(arch.Dependencies)),
		Endpoints:    make(map[string][]string, len(arch.Endpoints)),
	}
	for src, targets := range arch.Dependencies {
		canonical.Dependencies[src] = sortedCopy(targets)
	}
	for svc, eps := range arch.Endpoints {
		canonical.Endpoints[svc] = sortedCopy(eps)
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to serialize architecture for hashing: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
