package imgcluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBSCAN(t *testing.T) {
	rows := [][]float64{{0}, {0.1}, {0.2}, {5}, {5.1}, {5.2}, {100}}
	labels := DBSCAN(rows, 0.5, 3)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1, Noise}, labels)
}

func TestDBSCANBorderPoints(t *testing.T) {
	// 0 and 2.9 are not core points but are reachable from the core points 1 and 2.
	rows := [][]float64{{0}, {1}, {2}, {2.9}}
	assert.Equal(t, []int{0, 0, 0, 0}, DBSCAN(rows, 1, 3))
}

func TestDBSCANAllNoise(t *testing.T) {
	rows := [][]float64{{0, 0}, {10, 0}, {0, 10}}
	assert.Equal(t, []int{Noise, Noise, Noise}, DBSCAN(rows, 1, 2))
}

func TestDBSCANMinSamplesOne(t *testing.T) {
	rows := [][]float64{{0, 0}, {10, 0}, {0, 10}}
	assert.Equal(t, []int{0, 1, 2}, DBSCAN(rows, 1, 1))
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	rows := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1}, {0.1, 0.1}, {0.05, 0.05},
		{10, 10}, {10.1, 10}, {10, 10.1}, {10.1, 10.1}, {10.05, 10.05},
	}
	labels, err := KMeans(rows, 2)
	require.NoError(t, err)
	require.Len(t, labels, len(rows))

	for i := 1; i < 5; i++ {
		assert.Equal(t, labels[0], labels[i])
		assert.Equal(t, labels[5], labels[5+i])
	}
	assert.NotEqual(t, labels[0], labels[5])
}

func TestKMeansInvalidK(t *testing.T) {
	rows := [][]float64{{0}, {1}}
	_, err := KMeans(rows, 3)
	assert.Error(t, err)
	_, err = KMeans(rows, 0)
	assert.Error(t, err)
}

func TestUniqueCount(t *testing.T) {
	assert.Equal(t, 0, UniqueCount(nil))
	assert.Equal(t, 3, UniqueCount([]int{2, -1, 2, 0, -1}))

	labels := []int{3, 1, 2}
	UniqueCount(labels)
	assert.Equal(t, []int{3, 1, 2}, labels, "input must not be reordered")
}
