package scoring

import "math"

// Attribution is an additive decomposition of one prediction:
// Baseline + sum(Contributions) equals the raw model output.
type Attribution struct {
	Baseline      float64
	Contributions [NumFeatures]float64
}

// Total is Baseline plus every contribution.
func (a Attribution) Total() float64 {
	sum := a.Baseline
	for _, c := range a.Contributions {
		sum += c
	}
	return sum
}

// Rounded returns contributions keyed by feature name, truncated to 3 decimals.
func (a Attribution) Rounded() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, name := range FeatureNames {
		out[name] = round(a.Contributions[i], 3)
	}
	return out
}

// Explainer decomposes single predictions of a fitted model.
type Explainer interface {
	Baseline() float64
	Attribute(x FeatureVector) Attribution
}

// TreeExplainer computes exact per-instance Shapley values for a tree ensemble
// using the path-dependent TreeSHAP recursion over node covers.
type TreeExplainer struct {
	ensemble TreeEnsemble
	baseline float64
	maxDepth int
}

func NewTreeExplainer(ensemble TreeEnsemble) *TreeExplainer {
	baseline := ensemble.BaseScore()
	maxDepth := 0
	trees := ensemble.Trees()
	for i := range trees {
		baseline += trees[i].ExpectedValue()
		if d := trees[i].Depth(); d > maxDepth {
			maxDepth = d
		}
	}
	return &TreeExplainer{ensemble: ensemble, baseline: baseline, maxDepth: maxDepth}
}

func (e *TreeExplainer) Baseline() float64 {
	return e.baseline
}

func (e *TreeExplainer) Attribute(x FeatureVector) Attribution {
	attr := Attribution{Baseline: e.baseline}
	phi := attr.Contributions[:]
	trees := e.ensemble.Trees()
	for i := range trees {
		w := shapWalker{tree: &trees[i], x: x, phi: phi}
		w.recurse(0, 0, nil, 1, 1, -1)
	}
	return attr
}

type pathElement struct {
	feature      int
	zeroFraction float64
	oneFraction  float64
	weight       float64
}

type shapWalker struct {
	tree *Tree
	x    FeatureVector
	phi  []float64
}

func (w *shapWalker) recurse(node, depth int, parent []pathElement, zeroFraction, oneFraction float64, feature int) {
	path := make([]pathElement, depth+1)
	copy(path, parent)
	extendPath(path, depth, zeroFraction, oneFraction, feature)

	n := &w.tree.Nodes[node]
	if n.IsLeaf() {
		for i := 1; i <= depth; i++ {
			weight := unwoundPathSum(path, depth, i)
			el := path[i]
			w.phi[el.feature] += weight * (el.oneFraction - el.zeroFraction) * n.Value
		}
		return
	}

	hot := w.tree.next(n, w.x)
	cold := n.Right
	if hot == n.Right {
		cold = n.Left
	}
	hotZero := w.tree.Nodes[hot].Cover / n.Cover
	coldZero := w.tree.Nodes[cold].Cover / n.Cover

	incomingZero, incomingOne := 1.0, 1.0
	k := 0
	for ; k <= depth; k++ {
		if path[k].feature == n.Feature {
			break
		}
	}
	if k != depth+1 {
		incomingZero = path[k].zeroFraction
		incomingOne = path[k].oneFraction
		unwindPath(path, depth, k)
		depth--
	}

	w.recurse(hot, depth+1, path, hotZero*incomingZero, incomingOne, n.Feature)
	w.recurse(cold, depth+1, path, coldZero*incomingZero, 0, n.Feature)
}

func extendPath(path []pathElement, depth int, zeroFraction, oneFraction float64, feature int) {
	path[depth] = pathElement{feature: feature, zeroFraction: zeroFraction, oneFraction: oneFraction}
	if depth == 0 {
		path[depth].weight = 1
	}
	d := float64(depth + 1)
	for i := depth - 1; i >= 0; i-- {
		path[i+1].weight += oneFraction * path[i].weight * float64(i+1) / d
		path[i].weight = zeroFraction * path[i].weight * float64(depth-i) / d
	}
}

func unwindPath(path []pathElement, depth, index int) {
	one := path[index].oneFraction
	zero := path[index].zeroFraction
	next := path[depth].weight
	d := float64(depth + 1)
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := path[i].weight
			path[i].weight = next * d / (float64(i+1) * one)
			next = tmp - path[i].weight*zero*float64(depth-i)/d
		} else {
			path[i].weight = path[i].weight * d / (zero * float64(depth-i))
		}
	}
	for i := index; i < depth; i++ {
		path[i].feature = path[i+1].feature
		path[i].zeroFraction = path[i+1].zeroFraction
		path[i].oneFraction = path[i+1].oneFraction
	}
}

func unwoundPathSum(path []pathElement, depth, index int) float64 {
	one := path[index].oneFraction
	zero := path[index].zeroFraction
	next := path[depth].weight
	d := float64(depth + 1)
	var total float64
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := next * d / (float64(i+1) * one)
			total += tmp
			next = path[i].weight - tmp*zero*float64(depth-i)/d
		} else if zero != 0 {
			total += path[i].weight / zero / (float64(depth-i) / d)
		}
	}
	return total
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
