package scoring

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// GBMParams configures the gradient-boosted tree regressor.
type GBMParams struct {
	NumRounds       int     `mapstructure:"num_rounds"`
	MaxDepth        int     `mapstructure:"max_depth"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	Subsample       float64 `mapstructure:"subsample"`
	ColSampleByTree float64 `mapstructure:"colsample_bytree"`
	Lambda          float64 `mapstructure:"lambda"`
	MinChildWeight  float64 `mapstructure:"min_child_weight"`
	Seed            int64   `mapstructure:"seed"`
}

// DefaultGBMParams mirrors the hyper-parameters the scoring model has always used.
func DefaultGBMParams() GBMParams {
	return GBMParams{
		NumRounds:       300,
		MaxDepth:        4,
		LearningRate:    0.07,
		Subsample:       0.9,
		ColSampleByTree: 0.8,
		Lambda:          1,
		MinChildWeight:  1,
		Seed:            42,
	}
}

// withDefaults fills zero fields from DefaultGBMParams.
func (p GBMParams) withDefaults() GBMParams {
	d := DefaultGBMParams()
	if p.NumRounds <= 0 {
		p.NumRounds = d.NumRounds
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = d.MaxDepth
	}
	if p.LearningRate <= 0 {
		p.LearningRate = d.LearningRate
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		p.Subsample = d.Subsample
	}
	if p.ColSampleByTree <= 0 || p.ColSampleByTree > 1 {
		p.ColSampleByTree = d.ColSampleByTree
	}
	if p.Lambda < 0 {
		p.Lambda = d.Lambda
	}
	if p.MinChildWeight < 0 {
		p.MinChildWeight = d.MinChildWeight
	}
	if p.Seed == 0 {
		p.Seed = d.Seed
	}
	return p
}

// TreeNode is a node of a regression tree. Feature is -1 for leaves.
// Cover is the number of training rows that reached the node.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Cover     float64
}

func (n *TreeNode) IsLeaf() bool {
	return n.Feature < 0
}

// Tree is a binary regression tree rooted at Nodes[0].
type Tree struct {
	Nodes []TreeNode
}

// next returns the child x falls into. Missing values go left.
func (t *Tree) next(n *TreeNode, x FeatureVector) int {
	v := x[n.Feature]
	if math.IsNaN(v) || v < n.Threshold {
		return n.Left
	}
	return n.Right
}

func (t *Tree) Predict(x FeatureVector) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		i = t.next(n, x)
	}
}

// Depth is the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}

// ExpectedValue is the cover-weighted mean leaf value.
func (t *Tree) ExpectedValue() float64 {
	var walk func(i int) float64
	walk = func(i int) float64 {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		l, r := &t.Nodes[n.Left], &t.Nodes[n.Right]
		return (l.Cover*walk(n.Left) + r.Cover*walk(n.Right)) / n.Cover
	}
	return walk(0)
}

// TreeEnsemble is any additive tree model: BaseScore plus the sum of tree outputs.
type TreeEnsemble interface {
	BaseScore() float64
	Trees() []Tree
}

// Regressor is a fitted gradient-boosted tree ensemble.
type Regressor struct {
	baseScore float64
	trees     []Tree
	params    GBMParams
}

func (r *Regressor) BaseScore() float64 { return r.baseScore }
func (r *Regressor) Trees() []Tree      { return r.trees }
func (r *Regressor) Params() GBMParams  { return r.params }

// Predict returns the raw, unclipped model output.
func (r *Regressor) Predict(x FeatureVector) float64 {
	out := r.baseScore
	for i := range r.trees {
		out += r.trees[i].Predict(x)
	}
	return out
}

// FitRegressor fits squared-error gradient boosting with exact greedy splits.
func FitRegressor(X []FeatureVector, y []float64, params GBMParams) (*Regressor, error) {
	if len(X) == 0 {
		return nil, ErrInsufficientData
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature rows (%d) and labels (%d) differ", len(X), len(y))
	}
	params = params.withDefaults()
	rng := rand.New(rand.NewSource(params.Seed))

	n := len(X)
	base := mean(y)
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = base
	}
	grad := make([]float64, n)

	numCols := int(float64(NumFeatures) * params.ColSampleByTree)
	if numCols < 1 {
		numCols = 1
	}

	reg := &Regressor{baseScore: base, params: params, trees: make([]Tree, 0, params.NumRounds)}
	for round := 0; round < params.NumRounds; round++ {
		for i := range grad {
			grad[i] = pred[i] - y[i]
		}

		rows := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if rng.Float64() < params.Subsample {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			for i := 0; i < n; i++ {
				rows = append(rows, i)
			}
		}
		cols := rng.Perm(NumFeatures)[:numCols]
		sort.Ints(cols)

		b := treeBuilder{X: X, grad: grad, cols: cols, params: params}
		b.build(rows, 0)
		tree := Tree{Nodes: b.nodes}
		reg.trees = append(reg.trees, tree)

		for i := range pred {
			pred[i] += tree.Predict(X[i])
		}
	}
	return reg, nil
}

type treeBuilder struct {
	X      []FeatureVector
	grad   []float64
	cols   []int
	params GBMParams
	nodes  []TreeNode
}

// build grows a node over rows and returns its index. Hessians are 1 for squared error.
func (b *treeBuilder) build(rows []int, depth int) int {
	var g float64
	for _, r := range rows {
		g += b.grad[r]
	}
	h := float64(len(rows))

	idx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{
		Feature: -1,
		Value:   -g / (h + b.params.Lambda) * b.params.LearningRate,
		Cover:   h,
	})
	if depth >= b.params.MaxDepth || len(rows) < 2 {
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows, g, h)
	if !ok {
		return idx
	}

	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if b.X[r][feature] < threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.build(left, depth+1)
	rt := b.build(right, depth+1)
	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = rt
	return idx
}

func (b *treeBuilder) bestSplit(rows []int, g, h float64) (int, float64, bool) {
	lambda := b.params.Lambda
	parent := g * g / (h + lambda)

	bestGain := 1e-12
	bestFeature := -1
	var bestThreshold float64

	sorted := make([]int, len(rows))
	for _, f := range b.cols {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.X[sorted[i]][f] < b.X[sorted[j]][f]
		})

		var gl, hl float64
		for k := 0; k < len(sorted)-1; k++ {
			gl += b.grad[sorted[k]]
			hl++
			lo, hi := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			hr := h - hl
			if hl < b.params.MinChildWeight || hr < b.params.MinChildWeight {
				continue
			}
			gr := g - gl
			gain := gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
				if bestThreshold <= lo {
					bestThreshold = hi
				}
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
