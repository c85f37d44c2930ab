package modelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"
)

const artifactVersion = 1

type artifact struct {
	Version   int                           `json:"version"`
	TrainedAt time.Time                     `json:"trained_at"`
	Models    map[string]domain.FittedModel `json:"models"`
}

// FileStore keeps the commodity -> model mapping in one JSON file.
type FileStore struct {
	Path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, now: time.Now}
}

func (s *FileStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Save writes the mapping atomically: a temp file in the same directory is
// renamed over the artifact, so readers never see a partial file.
func (s *FileStore) Save(models map[string]domain.FittedModel) error {
	if models == nil {
		models = map[string]domain.FittedModel{}
	}

	data, err := json.MarshalIndent(artifact{
		Version:   artifactVersion,
		TrainedAt: s.clock().UTC(),
		Models:    models,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode models: %v", domain.ErrPersistence, err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrPersistence, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write models: %v", domain.ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync models: %v", domain.ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close models: %v", domain.ErrPersistence, err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("%w: replace artifact: %v", domain.ErrPersistence, err)
	}

	return nil
}

// Load reads the mapping back. A missing file is ErrModelNotFound, anything
// unreadable as an artifact is ErrModelCorrupt.
func (s *FileStore) Load() (map[string]domain.FittedModel, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, s.Path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrPersistence, s.Path, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrModelCorrupt, s.Path, err)
	}

	if a.Version != artifactVersion {
		return nil, fmt.Errorf("%w: unsupported artifact version %d", domain.ErrModelCorrupt, a.Version)
	}
	if a.Models == nil {
		return nil, fmt.Errorf("%w: artifact has no models section", domain.ErrModelCorrupt)
	}

	for name, m := range a.Models {
		if m.CommodityName != name {
			return nil, fmt.Errorf("%w: model key %q holds commodity %q", domain.ErrModelCorrupt, name, m.CommodityName)
		}
		if !finite(m.Slope) || !finite(m.Intercept) {
			return nil, fmt.Errorf("%w: non-finite parameters for %q", domain.ErrModelCorrupt, name)
		}
	}

	return a.Models, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
