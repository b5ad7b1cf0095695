// Package artifactstore persists the trained valuation pipeline as a gob file.
package artifactstore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"valuation-service/internal/core/domain"
	"valuation-service/pkg/ml/boosting"
	"valuation-service/pkg/ml/pipeline"

	"github.com/google/uuid"
)

// FormatVersion is bumped whenever the envelope or the pipeline state changes shape.
const FormatVersion = 1

type envelope struct {
	FormatVersion int
	ModelID       string
	TrainedAt     time.Time
	Target        string
	Params        boosting.Params
	Pipeline      *pipeline.Pipeline
}

// FileStore keeps a single artifact at a fixed path.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Location() string { return s.path }

// Save writes to a temporary file in the same directory and renames it into
// place, so readers never observe a partial artifact.
func (s *FileStore) Save(ctx context.Context, model *domain.TrainedModel) error {
	if model == nil || model.Pipeline == nil {
		return fmt.Errorf("%w: nothing to save", domain.ErrIO)
	}

	var buf bytes.Buffer
	env := envelope{
		FormatVersion: FormatVersion,
		ModelID:       model.ID.String(),
		TrainedAt:     model.TrainedAt.UTC(),
		Target:        model.Target,
		Params:        model.Params,
		Pipeline:      model.Pipeline,
	}
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return fmt.Errorf("%w: encode artifact: %v", domain.ErrIO, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create artifact directory %s: %v", domain.ErrIO, dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp artifact: %v", domain.ErrIO, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write artifact: %v", domain.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close artifact: %v", domain.ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: move artifact into place: %v", domain.ErrIO, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (*domain.TrainedModel, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: read artifact %s: %v", domain.ErrIO, s.path, err)
	}

	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode artifact %s: %v", domain.ErrIO, s.path, err)
	}
	if env.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: artifact %s has format version %d, expected %d", domain.ErrIO, s.path, env.FormatVersion, FormatVersion)
	}
	if env.Pipeline == nil || env.Pipeline.Transformer == nil || env.Pipeline.Model == nil {
		return nil, fmt.Errorf("%w: artifact %s holds no pipeline", domain.ErrIO, s.path)
	}

	id, err := uuid.Parse(env.ModelID)
	if err != nil {
		return nil, fmt.Errorf("%w: artifact %s has invalid model id: %v", domain.ErrIO, s.path, err)
	}

	return &domain.TrainedModel{
		ID:        id,
		TrainedAt: env.TrainedAt,
		Target:    env.Target,
		Params:    env.Params,
		Pipeline:  env.Pipeline,
	}, nil
}
