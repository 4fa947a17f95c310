// README: Density-based trajectory clustering (DBSCAN over endpoint pairs).
package discovery

import (
	"log/slog"
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"dnerve/internal/config"
)

// Flat-earth scaling factors, calibrated for the Cairo latitude. One
// degree of latitude is ~111 km everywhere; one degree of longitude is
// ~85 km at 30°N. Accuracy degrades away from the calibration latitude.
const (
	metersPerDegreeLat = 111000.0
	metersPerDegreeLon = 85000.0
)

// DBSCAN labels.
const (
	labelNoise        = -1
	labelUnclassified = -2
)

// Clusterer groups trajectories whose start and end points both lie
// close together. The feature distance sums start and end displacement,
// so the configured per-point epsilon is doubled before use.
type Clusterer struct {
	epsMeters  float64
	minSamples int
	log        *slog.Logger
}

func NewClusterer(cfg config.DiscoveryConfig) *Clusterer {
	return &Clusterer{
		epsMeters:  cfg.EpsilonMeters * 2,
		minSamples: cfg.MinSamples,
		log:        slog.Default().With(slog.String("component", "trajectory_clusterer")),
	}
}

// feature is a trajectory's (start, end) pair rescaled to metres so that
// Euclidean distance approximates ground distance.
type feature [4]float64

func makeFeature(t Trajectory) feature {
	return feature{
		t.Start.Lat * metersPerDegreeLat,
		t.Start.Lon * metersPerDegreeLon,
		t.End.Lat * metersPerDegreeLat,
		t.End.Lon * metersPerDegreeLon,
	}
}

func (a feature) distanceTo(b feature) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Cluster runs DBSCAN over the batch and returns cluster id → member
// trajectory indices. Noise points are dropped. The result is
// deterministic for a fixed input order; border points equidistant
// between two clusters go to whichever cluster expands first.
func (c *Clusterer) Cluster(trajectories []Trajectory) map[int][]int {
	if len(trajectories) < c.minSamples {
		c.log.Warn("not enough trajectories for clustering",
			slog.Int("count", len(trajectories)),
			slog.Int("min_samples", c.minSamples))
		return nil
	}

	features := make([]feature, len(trajectories))
	for i, t := range trajectories {
		features[i] = makeFeature(t)
	}

	// Index rescaled start points. Any pair within eps in the full 4-D
	// space is within eps on the start components alone, so a box query
	// around the start yields a candidate superset to filter exactly.
	var tree rtree.RTree
	for i, f := range features {
		tree.Insert([2]float64{f[0], f[1]}, [2]float64{f[0], f[1]}, i)
	}

	labels := make([]int, len(features))
	for i := range labels {
		labels[i] = labelUnclassified
	}

	clusterID := 0
	for i := range features {
		if labels[i] != labelUnclassified {
			continue
		}
		neighbors := c.regionQuery(&tree, features, i)
		if len(neighbors) < c.minSamples {
			labels[i] = labelNoise
			continue
		}

		labels[i] = clusterID
		seeds := append([]int(nil), neighbors...)
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == labelNoise {
				labels[j] = clusterID // border point
			}
			if labels[j] != labelUnclassified {
				continue
			}
			labels[j] = clusterID
			next := c.regionQuery(&tree, features, j)
			if len(next) >= c.minSamples {
				seeds = append(seeds, next...)
			}
		}
		clusterID++
	}

	clusters := make(map[int][]int)
	for idx, label := range labels {
		if label >= 0 {
			clusters[label] = append(clusters[label], idx)
		}
	}
	c.log.Info("clustering complete",
		slog.Int("clusters", len(clusters)),
		slog.Int("trajectories", len(trajectories)))
	return clusters
}

// regionQuery returns the indices within epsMeters of point i in the
// 4-D feature space, including i itself, in ascending index order.
func (c *Clusterer) regionQuery(tree *rtree.RTree, features []feature, i int) []int {
	f := features[i]
	var candidates []int
	tree.Search(
		[2]float64{f[0] - c.epsMeters, f[1] - c.epsMeters},
		[2]float64{f[0] + c.epsMeters, f[1] + c.epsMeters},
		func(min, max [2]float64, data interface{}) bool {
			if j, ok := data.(int); ok {
				candidates = append(candidates, j)
			}
			return true
		},
	)

	var neighbors []int
	for _, j := range candidates {
		if f.distanceTo(features[j]) <= c.epsMeters {
			neighbors = append(neighbors, j)
		}
	}
	sort.Ints(neighbors)
	return neighbors
}
