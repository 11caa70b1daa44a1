package anomaly

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"bizhealth/internal/storage"
	"bizhealth/pkg/domain"
	"bizhealth/pkg/platform/sentinel"
)

// ArtifactSource loads one checkpoint's identifier → value map for a run.
// Implementations return sentinel.ErrNotFound for absent artifacts and
// sentinel.ErrCorrupt for unreadable ones.
type ArtifactSource interface {
	Load(ctx context.Context, runID domain.RunID, stage Stage) (map[string]float64, error)
}

// ArtifactNames maps each checkpoint to its document name within a run.
type ArtifactNames map[Stage]string

// DefaultArtifactNames returns the names written by the upstream phases.
func DefaultArtifactNames() ArtifactNames {
	return ArtifactNames{
		StageRaw:        "raw_responses.json",
		StageFirstStage: "normalized_scores.json",
		StageFinal:      "final_scores.json",
	}
}

// StoreArtifacts reads artifacts from a per-run document store.
type StoreArtifacts struct {
	open  func(domain.RunID) storage.DocumentStore
	names ArtifactNames
}

// NewStoreArtifacts reads through open(runID). Nil names use the defaults.
func NewStoreArtifacts(open func(domain.RunID) storage.DocumentStore, names ArtifactNames) *StoreArtifacts {
	if names == nil {
		names = DefaultArtifactNames()
	}
	return &StoreArtifacts{open: open, names: names}
}

// NewFileArtifacts reads <root>/<runID>/<name>.
func NewFileArtifacts(root string, names ArtifactNames) *StoreArtifacts {
	return NewStoreArtifacts(func(runID domain.RunID) storage.DocumentStore {
		return storage.NewFileStore(filepath.Join(root, runID.String()))
	}, names)
}

func (a *StoreArtifacts) Load(ctx context.Context, runID domain.RunID, stage Stage) (map[string]float64, error) {
	name, ok := a.names[stage]
	if !ok {
		return nil, fmt.Errorf("no artifact configured for stage %s", stage)
	}
	var raw json.RawMessage
	if err := a.open(runID).Get(ctx, name, &raw); err != nil {
		return nil, err
	}
	values, err := ExtractValues(raw)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w: %v", name, sentinel.ErrCorrupt, err)
	}
	return values, nil
}
