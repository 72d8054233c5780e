package imgcluster

// DefaultResultsPath is where the results collection is persisted, relative
// to the working directory.
const DefaultResultsPath = "results/resultsDict.json"

type Options struct {
	// Number of KMeans clusters. Also used as the bin count of the KMeans
	// label histogram.
	Knee int
	// DBSCAN neighbourhood radius in PCA space.
	// Also used as the bin count of the DBSCAN label histogram.
	EPS float64
	// Minimum neighbourhood size (the point itself included) for a DBSCAN
	// core point.
	NSamples int
	// Number of principal components kept.
	NComponents int
}

func DefaultOptions() Options {
	return Options{
		Knee:        6,
		EPS:         350,
		NSamples:    3,
		NComponents: 6,
	}
}
