package ml

import (
	"errors"
	"math"
	"sort"
)

// decisionTree is a weighted CART-style tree over sparse vectors, stored as
// a flat node slice. It is the building block for the bagged and boosted
// ensembles; candidate split columns are chosen by the caller so each
// ensemble controls its own feature sampling.
type decisionTree struct {
	nodes []treeNode
}

type treeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func trainTree(X []Vector, y []int, sampleWeights []float64, candidates []int, maxDepth int) (*decisionTree, error) {
	if len(X) == 0 || len(y) == 0 {
		return nil, errors.New("vectors or labels empty")
	}
	if len(X) != len(y) {
		return nil, errors.New("vectors and labels size mismatch")
	}
	if sampleWeights == nil {
		sampleWeights = make([]float64, len(X))
		for i := range sampleWeights {
			sampleWeights[i] = 1
		}
	}
	if maxDepth <= 0 {
		maxDepth = 3
	}

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	tree := &decisionTree{}
	tree.nodes = buildTreeNodes(X, y, sampleWeights, indices, candidates, 0, maxDepth)
	return tree, nil
}

func (dt *decisionTree) predict(x Vector) (int, error) {
	if len(dt.nodes) == 0 {
		return 0, ErrNotTrained
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if x[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func buildTreeNodes(X []Vector, y []int, w []float64, indices, candidates []int, depth, maxDepth int) []treeNode {
	label := weightedMajority(y, w, indices)
	if depth >= maxDepth || isPureSubset(y, indices) {
		return []treeNode{leafNode(label)}
	}

	feature, threshold, ok := bestWeightedSplit(X, y, w, indices, candidates)
	if !ok {
		return []treeNode{leafNode(label)}
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return []treeNode{leafNode(label)}
	}

	leftNodes := buildTreeNodes(X, y, w, left, candidates, depth+1, maxDepth)
	rightNodes := buildTreeNodes(X, y, w, right, candidates, depth+1, maxDepth)

	root := treeNode{
		FeatureIdx: feature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		ClassLabel: label,
	}

	nodes := make([]treeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

func leafNode(label int) treeNode {
	return treeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: label, IsLeaf: true}
}

// bestWeightedSplit scans the candidate columns, thresholds each at the
// median of its values over the subset, and keeps the split with the lowest
// weighted gini impurity.
func bestWeightedSplit(X []Vector, y []int, w []float64, indices, candidates []int) (int, float64, bool) {
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	values := make([]float64, len(indices))
	for _, feature := range candidates {
		for j, i := range indices {
			values[j] = X[i][feature]
		}
		threshold := medianValue(values)

		var leftCounts, rightCounts [NumClasses]float64
		var leftTotal, rightTotal float64
		for _, i := range indices {
			if X[i][feature] <= threshold {
				leftCounts[y[i]] += w[i]
				leftTotal += w[i]
			} else {
				rightCounts[y[i]] += w[i]
				rightTotal += w[i]
			}
		}
		if leftTotal == 0 || rightTotal == 0 {
			continue
		}

		total := leftTotal + rightTotal
		impurity := (leftTotal/total)*giniImpurity(leftCounts, leftTotal) +
			(rightTotal/total)*giniImpurity(rightCounts, rightTotal)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = feature
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func giniImpurity(counts [NumClasses]float64, total float64) float64 {
	impurity := 1.0
	for _, count := range counts {
		p := count / total
		impurity -= p * p
	}
	return impurity
}

func weightedMajority(y []int, w []float64, indices []int) int {
	var counts [NumClasses]float64
	for _, i := range indices {
		counts[y[i]] += w[i]
	}
	best := 0
	for c := 1; c < NumClasses; c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func isPureSubset(y []int, indices []int) bool {
	if len(indices) == 0 {
		return true
	}
	first := y[indices[0]]
	for _, i := range indices[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}

func medianValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
