package archive

import (
	"path/filepath"
	"testing"

	"github.com/setanarut/imgcluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRecordAndLatest(t *testing.T) {
	a := openTemp(t)

	r := &imgcluster.Results{
		ImagesFilenameList: []string{"a.jpg", "b.jpg", "c.jpg"},
		DeviceContext:      "cpu",
		ImageClusters:      2,
		ImageClustersDB:    1,
		KMLabels:           []int{1, 0, 1},
		DBLabels:           []int{0, 0, -1},
		DominantColors:     []string{"#ff0000", "#00ff00", "#0000ff"},
	}
	first, err := a.Record(r)
	require.NoError(t, err)
	second, err := a.Record(r)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	run, err := a.Latest()
	require.NoError(t, err)
	assert.Equal(t, second, run.ID)
	assert.Equal(t, "cpu", run.DeviceContext)
	assert.Equal(t, 3, run.Images)
	assert.Equal(t, 2, run.ImageClusters)
	assert.Equal(t, 1, run.ImageClustersDB)
	assert.False(t, run.CreatedAt.IsZero())

	km, db, err := a.Labels(first)
	require.NoError(t, err)
	assert.Equal(t, r.KMLabels, km)
	assert.Equal(t, r.DBLabels, db)
}

func TestRecordRejectsMisalignedLabels(t *testing.T) {
	a := openTemp(t)
	_, err := a.Record(&imgcluster.Results{
		ImagesFilenameList: []string{"a.jpg", "b.jpg"},
		KMLabels:           []int{0},
		DBLabels:           []int{0, 0},
	})
	assert.Error(t, err)

	_, err = a.Latest()
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestLatestEmpty(t *testing.T) {
	_, err := openTemp(t).Latest()
	assert.ErrorIs(t, err, ErrNoRuns)
}
