package imgcluster

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Results collects the output of every pipeline stage. Images and
// Standardized are never serialized.
type Results struct {
	ImagesFilenameList []string      `json:"imagesFilenameList"`
	Images             []image.Image `json:"-"`
	Standardized       *mat.Dense    `json:"-"`

	DeviceContext   string      `json:"device_context,omitempty"`
	ImageClustersDB int         `json:"imageClusters_db"`
	CountsDB        []int       `json:"counts_db"`
	BinsDB          []float64   `json:"bins_db"`
	Counts          []int       `json:"counts"`
	Bins            []float64   `json:"bins"`
	ImageClusters   int         `json:"imageClusters"`
	KMLabels        []int       `json:"km_labels"`
	DBLabels        []int       `json:"db_labels"`
	PCAFitTransform [][]float64 `json:"PCA_fit_transform"`

	ExplainedVarianceRatio []float64 `json:"PCA_explained_variance_ratio,omitempty"`
	DominantColors         []string  `json:"imageDominantColors,omitempty"`
	ClusterColors          []string  `json:"clusterColors,omitempty"`
}

// WriteResults serializes r to path, creating the parent directory and
// replacing any existing file.
func WriteResults(r *Results, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	log.Debug().Str("path", path).Int("bytes", len(b)).Msg("results written")
	return nil
}

// ReadResults loads a results file into a generic mapping. Arrays come back
// as []any and numbers as float64.
func ReadResults(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

// ReadResultsInto loads a results file into a Results record.
func ReadResultsInto(path string) (*Results, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := &Results{}
	if err := json.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return r, nil
}
