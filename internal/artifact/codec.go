package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/rugby-predictor/internal/models"
)

type header struct {
	Format        string `json:"format"`
	SchemaVersion int    `json:"schema_version"`
}

// Encode serializes the artifact as an indented JSON bundle
func Encode(a *Artifact) ([]byte, error) {
	if a.Format == "" {
		a.Format = Format
	}
	if a.SchemaVersion == 0 {
		a.SchemaVersion = SchemaVersion
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}
	return data, nil
}

// Decode parses a bundle read from path. Unparseable or structurally broken
// bundles are reported as corrupted, foreign formats and versions as incompatible.
func Decode(path string, data []byte) (*Artifact, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, &models.DeserializationError{Path: path, Reason: "not a JSON model bundle", Err: err}
	}
	if h.Format != Format {
		return nil, &models.DeserializationError{
			Path:         path,
			Reason:       fmt.Sprintf("unknown bundle format %q", h.Format),
			Incompatible: true,
		}
	}
	if h.SchemaVersion < 1 || h.SchemaVersion > SchemaVersion {
		return nil, &models.DeserializationError{
			Path:         path,
			Reason:       fmt.Sprintf("schema version %d is not supported (max %d)", h.SchemaVersion, SchemaVersion),
			Incompatible: true,
		}
	}

	a := &Artifact{}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, &models.DeserializationError{Path: path, Reason: "malformed bundle body", Err: err}
	}
	if err := a.check(); err != nil {
		return nil, &models.DeserializationError{Path: path, Reason: err.Error()}
	}
	return a, nil
}

func (a *Artifact) check() error {
	dims := len(a.FeatureColumns)
	switch {
	case a.LeagueID <= 0:
		return fmt.Errorf("missing league id")
	case dims == 0:
		return fmt.Errorf("missing feature columns")
	case len(a.Classifier.Weights) != dims || len(a.Classifier.Means) != dims || len(a.Classifier.Scales) != dims:
		return fmt.Errorf("classifier expects %d features, bundle lists %d", len(a.Classifier.Weights), dims)
	}
	for _, s := range a.Classifier.Scales {
		if s == 0 {
			return fmt.Errorf("classifier has a zero scale")
		}
	}
	for _, r := range []LinearRegressor{a.RegHome, a.RegAway} {
		if len(r.Inputs) != len(r.Coefficients) {
			return fmt.Errorf("regressor %s has %d inputs and %d coefficients", r.Target, len(r.Inputs), len(r.Coefficients))
		}
		for _, idx := range r.Inputs {
			if idx < 0 || idx >= dims {
				return fmt.Errorf("regressor %s references column %d of %d", r.Target, idx, dims)
			}
		}
	}
	return nil
}

// Save writes the bundle to path, replacing any existing file atomically
func Save(path string, a *Artifact) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bundle-*")
	if err != nil {
		return fmt.Errorf("failed to create temp bundle: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close bundle: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move bundle into place: %w", err)
	}
	return nil
}

// Load reads and decodes the bundle at path
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return Decode(path, data)
}
