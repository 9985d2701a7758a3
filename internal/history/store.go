// Package history owns the append-only sequence of architecture snapshots
// and their derived drift records.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/yairfalse/kartta/internal/differ"
	karttaerrors "github.com/yairfalse/kartta/internal/errors"
	"github.com/yairfalse/kartta/internal/fingerprint"
	"github.com/yairfalse/kartta/internal/logger"
	"github.com/yairfalse/kartta/pkg/types"
)

const (
	historyFileName = "drift_history.json"
	snapshotsDir    = "snapshots"
)

// Store persists the drift history on the local filesystem: one aggregate
// drift_history.json plus one time-ordered file per appended snapshot.
// Appends are serialized through a mutex so a drift record is never computed
// against a stale baseline. Prior entries are never reordered or mutated.
type Store struct {
	mu         sync.Mutex
	baseDir    string
	comparator *differ.Comparator
	log        logger.Logger
}

// AppendResult reports the outcome of one append attempt.
type AppendResult struct {
	// NoOp is true when the snapshot's fingerprint matched the most recent
	// entry and nothing was appended.
	NoOp   bool               `json:"no_op"`
	Hash   string             `json:"hash"`
	Record *types.DriftRecord `json:"record,omitempty"`
}

// NewStore creates a history store rooted at baseDir, creating directories
// as needed.
func NewStore(baseDir string, log logger.Logger) (*Store, error) {
	for _, dir := range []string{baseDir, filepath.Join(baseDir, snapshotsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceHistory,
				fmt.Sprintf("failed to create history directory %s", dir)).
				WithCause(err.Error()).
				WithSolutions("Check directory permissions", "Pick another --storage-dir")
		}
	}
	return &Store{
		baseDir:    baseDir,
		comparator: differ.NewComparator(),
		log:        log,
	}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Append fingerprints the snapshot, dedups against the most recent entry,
// diffs and scores against the stored baseline, and persists a new drift
// record. The snapshot is normalized first; any closure repair is logged.
func (s *Store) Append(arch *types.Architecture) (*AppendResult, error) {
	if arch == nil {
		return nil, karttaerrors.New(karttaerrors.ErrorTypeValidation, karttaerrors.SourceHistory,
			"cannot append nil architecture")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if repaired := arch.Normalize(); len(repaired) > 0 {
		s.log.WithField("services", repaired).Warn("closure invariant repaired before append")
	}

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	hash, err := fingerprint.Fingerprint(arch)
	if err != nil {
		return nil, karttaerrors.New(karttaerrors.ErrorTypeValidation, karttaerrors.SourceHistory,
			"failed to fingerprint architecture").WithCause(err.Error())
	}

	if len(records) > 0 && records[len(records)-1].Hash == hash {
		s.log.WithField("hash", hash).Info("architecture unchanged, nothing appended")
		return &AppendResult{NoOp: true, Hash: hash}, nil
	}

	var changes *types.ChangeSet
	if len(records) == 0 {
		changes = differ.InitialChangeSet()
	} else {
		changes = s.comparator.Compare(records[len(records)-1].Architecture, arch)
	}
	score, severity := differ.Score(changes)

	record := types.DriftRecord{
		ID:           uuid.NewString(),
		Timestamp:    arch.Timestamp,
		Hash:         hash,
		Architecture: arch,
		Changes:      changes,
		DriftScore:   score,
		Severity:     severity,
		Metrics:      arch.Metrics,
	}
	if err := record.Validate(); err != nil {
		return nil, karttaerrors.New(karttaerrors.ErrorTypeValidation, karttaerrors.SourceHistory,
			"drift record failed validation").WithCause(err.Error())
	}

	records = append(records, record)
	if err := s.saveJSON(filepath.Join(s.baseDir, historyFileName), records); err != nil {
		return nil, err
	}

	snapshotFile := filepath.Join(s.baseDir, snapshotsDir,
		fmt.Sprintf("snapshot-%s.json", record.Timestamp.UTC().Format("20060102T150405")))
	if err := s.saveJSON(snapshotFile, record); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"hash":        hash,
		"drift_score": score,
		"severity":    severity.String(),
	}).Info("snapshot appended to history")

	return &AppendResult{Hash: hash, Record: &record}, nil
}

// History returns all stored records in append order.
func (s *Store) History() ([]types.DriftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Latest returns the most recent record, or nil when the history is empty.
func (s *Store) Latest() (*types.DriftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[len(records)-1], nil
}

// load reads the aggregate history file. An absent file means "no history
// yet" and returns an empty list; a file that exists but fails to parse is a
// fatal parse error, never silently treated as empty.
func (s *Store) load() ([]types.DriftRecord, error) {
	path := filepath.Join(s.baseDir, historyFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.DriftRecord{}, nil
		}
		return nil, karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceHistory,
			"failed to read history file").WithCause(err.Error())
	}

	var records []types.DriftRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, karttaerrors.New(karttaerrors.ErrorTypeParse, karttaerrors.SourceHistory,
			fmt.Sprintf("history file is corrupt: %s", path)).
			WithCause(err.Error()).
			WithSolutions(
				"Inspect the file and restore it from a snapshot under snapshots/",
				"Move the corrupt file aside to start a fresh history",
			)
	}
	return records, nil
}

// saveJSON writes data atomically: temp file in the target directory, then
// rename.
func (s *Store) saveJSON(path string, data interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kartta-*.tmp")
	if err != nil {
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceHistory,
			"failed to create temp file").WithCause(err.Error())
	}
	tmpName := tmp.Name()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceHistory,
			"failed to encode history JSON").WithCause(err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceHistory,
			"failed to flush history file").WithCause(err.Error())
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return karttaerrors.New(karttaerrors.ErrorTypeStorage, karttaerrors.SourceHistory,
			fmt.Sprintf("failed to write %s", path)).WithCause(err.Error())
	}
	return nil
}
