package imgcluster

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/imgcluster/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContext struct{ kind device.Kind }

func (c fakeContext) Kind() device.Kind { return c.kind }
func (c fakeContext) Close() error      { return nil }

type fakeGPU struct{ opened []device.Kind }

func (l *fakeGPU) Name() string { return "fake-gpu" }

func (l *fakeGPU) Open(kind device.Kind) (device.Context, error) {
	l.opened = append(l.opened, kind)
	return fakeContext{kind: kind}, nil
}

func writeDataset(t *testing.T, n, w, h int) string {
	t.Helper()
	dir := t.TempDir()
	for i := range n {
		writeJPEG(t, dir, fmt.Sprintf("image_%03d.jpg", i), w, h, uint64(i+1))
	}
	return dir
}

func TestPipelineEndToEnd(t *testing.T) {
	data := writeDataset(t, 20, 64, 64)
	out := t.TempDir()

	p := NewPipeline(data)
	p.ResultsPath = filepath.Join(out, "results", "resultsDict.json")
	p.PalettePath = filepath.Join(out, "results", "clusterPalette.png")

	r, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, "cpu", r.DeviceContext)

	m, err := ReadResults(p.ResultsPath)
	require.NoError(t, err)

	assert.Len(t, m["km_labels"], 20)
	assert.Len(t, m["db_labels"], 20)
	assert.Len(t, m["imagesFilenameList"], 20)
	assert.Equal(t, "cpu", m["device_context"])

	clusters, ok := m["imageClusters"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, clusters, 1.0)
	assert.LessOrEqual(t, clusters, 6.0)

	pcaRows, ok := m["PCA_fit_transform"].([]any)
	require.True(t, ok)
	require.Len(t, pcaRows, 20)
	for _, row := range pcaRows {
		assert.Len(t, row, 6)
	}

	assert.Len(t, m["counts"], 6)
	assert.Len(t, m["bins"], 7)
	assert.Len(t, m["counts_db"], 350)
	assert.Len(t, m["bins_db"], 351)
	assert.NotContains(t, m, "list_PIL_Images")
	assert.NotContains(t, m, "NP_images_STD")

	assert.Len(t, r.DominantColors, 20)
	assert.Len(t, r.ClusterColors, 6)
	_, err = os.Stat(p.PalettePath)
	assert.NoError(t, err)
}

func TestPipelineRowOrder(t *testing.T) {
	data := writeDataset(t, 8, 16, 16)

	p := NewPipeline(data)
	p.ResultsPath = ""
	r, err := p.Run()
	require.NoError(t, err)

	files, err := ListImages(data)
	require.NoError(t, err)
	assert.Equal(t, files, r.ImagesFilenameList)
	assert.Len(t, r.KMLabels, len(files))
	assert.Len(t, r.DBLabels, len(files))
	assert.Len(t, r.PCAFitTransform, len(files))
}

func TestPipelineAbortsWithoutLibraries(t *testing.T) {
	data := writeDataset(t, 3, 8, 8)
	out := filepath.Join(t.TempDir(), "resultsDict.json")

	p := NewPipeline(data)
	p.Devices = &device.Registry{}
	p.ResultsPath = out

	r, err := p.Run()
	assert.ErrorIs(t, err, device.ErrUnavailable)
	assert.Nil(t, r)
	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestPipelinePrimaryLibraryRunsOnGPU(t *testing.T) {
	data := writeDataset(t, 7, 8, 8)
	lib := &fakeGPU{}

	p := NewPipeline(data)
	p.Devices = &device.Registry{}
	p.Devices.Register(device.Primary, lib)
	p.ResultsPath = ""

	r, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, "gpu", r.DeviceContext)
	assert.Equal(t, []device.Kind{device.GPU}, lib.opened)
}

func TestClusterRequiresImages(t *testing.T) {
	d, err := device.Default().Select()
	require.NoError(t, err)
	assert.ErrorIs(t, Cluster(&Results{}, d, DefaultOptions()), ErrNoImages)
}
