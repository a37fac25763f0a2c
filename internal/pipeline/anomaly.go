package pipeline

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Default anomaly model parameters. The seed is fixed so repeated uploads of
// the same batch produce identical labels.
const (
	DefaultContamination = 0.1
	DefaultSeed          = 42
	DefaultTrees         = 100
	defaultSubsample     = 256
)

// IsolationForest is an unsupervised outlier ensemble: random binary trees
// isolate samples, and samples with short average path lengths score as
// anomalous. Construct a fresh forest per dataset; Fit consumes the seeded
// random source, so a forest must not be reused across requests.
type IsolationForest struct {
	Trees         int
	SubsampleSize int
	Contamination float64

	rng   *rand.Rand
	roots []*isoNode
	psi   int
}

// NewIsolationForest creates a forest with the given contamination target
// and deterministic seed.
func NewIsolationForest(trees int, contamination float64, seed int64) *IsolationForest {
	if trees <= 0 {
		trees = DefaultTrees
	}
	return &IsolationForest{
		Trees:         trees,
		SubsampleSize: defaultSubsample,
		Contamination: contamination,
		rng:           rand.New(rand.NewSource(seed)),
	}
}

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int // samples reaching this leaf; inner nodes keep 0
}

// Fit builds the ensemble over the standardized feature matrix.
func (f *IsolationForest) Fit(features [][2]float64) error {
	n := len(features)
	if n == 0 {
		return fmt.Errorf("isolation forest: empty feature matrix")
	}

	f.psi = f.SubsampleSize
	if f.psi > n {
		f.psi = n
	}
	heightLimit := int(math.Ceil(math.Log2(float64(f.psi))))
	if heightLimit < 1 {
		heightLimit = 1
	}

	f.roots = make([]*isoNode, f.Trees)
	for t := 0; t < f.Trees; t++ {
		sample := f.rng.Perm(n)[:f.psi]
		f.roots[t] = f.buildTree(features, sample, 0, heightLimit)
	}
	return nil
}

func (f *IsolationForest) buildTree(features [][2]float64, idx []int, depth, limit int) *isoNode {
	if depth >= limit || len(idx) <= 1 {
		return &isoNode{size: len(idx)}
	}

	dim := f.rng.Intn(2)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		v := features[i][dim]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		// No spread on the chosen dimension; try the other one.
		dim = 1 - dim
		lo, hi = math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			v := features[i][dim]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if lo == hi {
			return &isoNode{size: len(idx)}
		}
	}

	split := lo + f.rng.Float64()*(hi-lo)
	var left, right []int
	for _, i := range idx {
		if features[i][dim] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isoNode{size: len(idx)}
	}

	return &isoNode{
		feature: dim,
		split:   split,
		left:    f.buildTree(features, left, depth+1, limit),
		right:   f.buildTree(features, right, depth+1, limit),
	}
}

// Scores returns the anomaly score per sample in [0, 1]; higher is more
// anomalous.
func (f *IsolationForest) Scores(features [][2]float64) []float64 {
	c := avgPathLength(f.psi)
	scores := make([]float64, len(features))
	for i, x := range features {
		total := 0.0
		for _, root := range f.roots {
			total += pathLength(root, x, 0)
		}
		mean := total / float64(len(f.roots))
		scores[i] = math.Pow(2, -mean/c)
	}
	return scores
}

// Labels marks round(contamination*n) samples with the highest scores as
// anomalous. Ties break by row order so the labeling is stable.
func (f *IsolationForest) Labels(features [][2]float64) []bool {
	scores := f.Scores(features)
	n := len(scores)
	k := int(math.Round(f.Contamination * float64(n)))
	if k > n {
		k = n
	}

	labels := make([]bool, n)
	if k == 0 {
		return labels
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	for _, i := range order[:k] {
		labels[i] = true
	}
	return labels
}

func pathLength(node *isoNode, x [2]float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if x[node.feature] < node.split {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// avgPathLength is c(m), the expected path length of an unsuccessful BST
// search over m samples; it normalizes tree depths.
func avgPathLength(m int) float64 {
	const eulerGamma = 0.5772156649
	switch {
	case m > 2:
		h := math.Log(float64(m-1)) + eulerGamma
		return 2*h - 2*float64(m-1)/float64(m)
	case m == 2:
		return 1
	default:
		return 0
	}
}

// AnomalyStage scales the (amount, gst_amount) features and labels the
// configured fraction of records as anomalies. On any internal failure the
// input dataset comes back untouched: no is_anomaly column is added and
// downstream consumers must tolerate its absence.
type AnomalyStage struct {
	Trees         int
	Contamination float64
	Seed          int64
}

func (s *AnomalyStage) Name() string { return "anomaly_detection" }

func (s *AnomalyStage) Apply(ds Dataset) (Dataset, error) {
	features, err := featureMatrix(ds)
	if err != nil {
		return ds, fmt.Errorf("anomaly detection: %w", err)
	}
	if len(features) == 0 {
		return ds, fmt.Errorf("anomaly detection: no records to score")
	}

	scaled := NewStandardScaler().FitTransform(features)

	forest := NewIsolationForest(s.Trees, s.Contamination, s.Seed)
	if err := forest.Fit(scaled); err != nil {
		return ds, fmt.Errorf("anomaly detection: %w", err)
	}
	labels := forest.Labels(scaled)

	out := ds.withColumn(ColIsAnomaly)
	for i, rec := range out.Records {
		rec[ColIsAnomaly] = labels[i]
	}
	return out, nil
}
