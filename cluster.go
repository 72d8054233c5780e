package imgcluster

import (
	"errors"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/floats"
)

// Noise is the DBSCAN label of points that belong to no cluster.
const Noise = -1

// KMeans partitions rows into k clusters starting from randomly chosen
// centroids and returns the index of the nearest final centroid per row.
func KMeans(rows [][]float64, k int) ([]int, error) {
	if k <= 0 {
		return nil, errors.New("kmeans: k must be positive")
	}
	dataset := make(clusters.Observations, 0, len(rows))
	for _, r := range rows {
		dataset = append(dataset, clusters.Coordinates(r))
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}
	labels := make([]int, len(rows))
	for i, r := range rows {
		labels[i] = cc.Nearest(clusters.Coordinates(r))
	}
	return labels, nil
}

// DBSCAN labels rows by density. A row is a core point when at least
// minSamples rows, itself included, lie within Euclidean distance eps.
// Clusters are numbered from 0 in the order their first core point appears;
// rows reachable from no core point get Noise.
func DBSCAN(rows [][]float64, eps float64, minSamples int) []int {
	n := len(rows)
	neighbors := make([][]int, n)
	core := make([]bool, n)
	for i := range rows {
		neighbors[i] = regionQuery(rows, i, eps)
		core[i] = len(neighbors[i]) >= minSamples
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	cluster := 0
	var stack []int
	for i := 0; i < n; i++ {
		if labels[i] != Noise || !core[i] {
			continue
		}
		labels[i] = cluster
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !core[p] {
				continue
			}
			for _, q := range neighbors[p] {
				if labels[q] == Noise {
					labels[q] = cluster
					stack = append(stack, q)
				}
			}
		}
		cluster++
	}
	return labels
}

func regionQuery(rows [][]float64, idx int, eps float64) []int {
	var out []int
	for i, r := range rows {
		if floats.Distance(rows[idx], r, 2) <= eps {
			out = append(out, i)
		}
	}
	return out
}

// UniqueCount returns the number of distinct labels.
func UniqueCount(labels []int) int {
	s := slices.Clone(labels)
	slices.Sort(s)
	return len(slices.Compact(s))
}
