package imgcluster

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/setanarut/imgcluster/device"
	"github.com/setanarut/imgcluster/utils"
)

type Pipeline struct {
	Options Options
	Load    LoadOptions
	Devices *device.Registry
	// JSON destination. Empty skips the write.
	ResultsPath string
	// Cluster colour swatch. Empty skips the swatch.
	PalettePath string
}

func NewPipeline(dir string) *Pipeline {
	return &Pipeline{
		Options:     DefaultOptions(),
		Load:        LoadOptions{Dir: dir},
		Devices:     device.Default(),
		ResultsPath: DefaultResultsPath,
	}
}

// Run selects the execution context, loads the images, clusters them and
// persists the results. Device selection happens first, so a missing
// acceleration library stops the run before any image is read.
func (p *Pipeline) Run() (*Results, error) {
	d, err := p.Devices.Select()
	if err != nil {
		return nil, err
	}
	log.Info().Str("state", d.State.String()).Str("device", d.Kind.String()).Msg("execution context selected")

	r, err := LoadImages(p.Load)
	if err != nil {
		return nil, err
	}
	if err := Cluster(r, d, p.Options); err != nil {
		return nil, err
	}

	if p.ResultsPath != "" {
		if err := WriteResults(r, p.ResultsPath); err != nil {
			return nil, err
		}
	}
	if p.PalettePath != "" {
		if palette := Palette(r.ClusterColors); len(palette) > 0 {
			utils.SortPaletteByBrightness(palette)
			if err := utils.SavePalette(palette, 64, p.PalettePath); err != nil {
				return nil, fmt.Errorf("save palette: %w", err)
			}
		}
	}
	log.Info().Ints("counts", r.Counts).Floats64("bins", r.Bins).Msg("kmeans histogram")
	return r, nil
}

// Cluster runs PCA, DBSCAN and KMeans on r.Standardized inside the decided
// execution context and fills in the derived fields of r.
func Cluster(r *Results, d device.Decision, opt Options) error {
	if r.Standardized == nil {
		return fmt.Errorf("cluster: %w", ErrNoImages)
	}
	log.Info().Str("device", d.Kind.String()).Msg("running PCA and clustering")

	var (
		pca    *PCA
		km, db []int
	)
	err := device.Run(d, func(device.Context) error {
		var err error
		pca, err = Reduce(r.Standardized, opt.NComponents)
		if err != nil {
			return err
		}
		rows := Rows(pca.Projected)
		db = DBSCAN(rows, opt.EPS, opt.NSamples)
		km, err = KMeans(rows, opt.Knee)
		return err
	})
	if err != nil {
		return err
	}

	r.DeviceContext = d.Kind.String()
	r.ImageClustersDB = UniqueCount(db)
	// The DBSCAN histogram uses the radius as its bin count, mirroring the
	// KMeans branch which uses the cluster count.
	if r.CountsDB, r.BinsDB, err = Histogram(db, int(opt.EPS)); err != nil {
		return err
	}
	if r.Counts, r.Bins, err = Histogram(km, opt.Knee); err != nil {
		return err
	}
	r.ImageClusters = UniqueCount(km)
	r.KMLabels = km
	r.DBLabels = db
	r.PCAFitTransform = Rows(pca.Projected)
	r.ExplainedVarianceRatio = pca.ExplainedVarianceRatio

	if len(r.Images) > 0 && len(r.Images) == len(km) {
		r.DominantColors = DominantColors(r.Images)
		r.ClusterColors = ClusterColors(r.DominantColors, km, opt.Knee)
	}
	log.Info().
		Int("kmeans_clusters", r.ImageClusters).
		Int("dbscan_clusters", r.ImageClustersDB).
		Msg("clustering done")
	return nil
}
