package ml

import (
	"errors"
	"math"
	"math/rand"
)

// ForestConfig holds the bagged-tree ensemble hyperparameters.
type ForestConfig struct {
	NumTrees int
	MaxDepth int
	Seed     int64
}

// DefaultForestConfig returns the bank's fixed hyperparameters.
func DefaultForestConfig(seed int64) ForestConfig {
	return ForestConfig{NumTrees: 40, MaxDepth: 8, Seed: seed}
}

// RandomForest bags decision trees over bootstrap samples, each tree seeing
// a random sqrt-sized subset of columns. Bootstrap draws and feature
// subsets depend only on the recorded seed.
type RandomForest struct {
	spaceRef
	config  ForestConfig
	trees   []*decisionTree
	trained bool
}

// NewRandomForest creates an untrained ensemble bound to a space.
func NewRandomForest(space *FeatureSpace, config ForestConfig) *RandomForest {
	if config.NumTrees <= 0 {
		config.NumTrees = 40
	}
	return &RandomForest{spaceRef: newSpaceRef(space), config: config}
}

func (rf *RandomForest) Kind() ModelKind { return KindRandomForest }

func (rf *RandomForest) Seed() int64 { return rf.config.Seed }

func (rf *RandomForest) Train(X []Vector, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(rf.config.Seed))
	rf.trees = make([]*decisionTree, 0, rf.config.NumTrees)

	for t := 0; t < rf.config.NumTrees; t++ {
		bootX := make([]Vector, len(X))
		bootY := make([]int, len(y))
		for i := range bootX {
			pick := rng.Intn(len(X))
			bootX[i] = X[pick]
			bootY[i] = y[pick]
		}

		candidates := sampleColumns(rng, rf.numFeatures)
		tree, err := trainTree(bootX, bootY, nil, candidates, rf.config.MaxDepth)
		if err != nil {
			return err
		}
		rf.trees = append(rf.trees, tree)
	}

	if len(rf.trees) == 0 {
		return errors.New("no trees trained")
	}
	rf.trained = true
	return nil
}

// Predict returns the majority vote; scores are vote fractions.
func (rf *RandomForest) Predict(x Vector) (int, []float64, error) {
	if !rf.trained {
		return 0, nil, ErrNotTrained
	}
	scores := make([]float64, NumClasses)
	for _, tree := range rf.trees {
		label, err := tree.predict(x)
		if err != nil {
			return 0, nil, err
		}
		scores[label]++
	}
	for c := range scores {
		scores[c] /= float64(len(rf.trees))
	}
	return argmax(scores), scores, nil
}

// sampleColumns draws a sqrt-sized sample of distinct column indices in
// ascending order so tree construction stays deterministic under one rng.
func sampleColumns(rng *rand.Rand, numFeatures int) []int {
	if numFeatures <= 0 {
		return nil
	}
	size := int(math.Ceil(math.Sqrt(float64(numFeatures))))
	if size < 1 {
		size = 1
	}
	if size > numFeatures {
		size = numFeatures
	}
	perm := rng.Perm(numFeatures)[:size]
	columns := append([]int(nil), perm...)
	// ascending scan order keeps split ties stable
	sortInts(columns)
	return columns
}

func sortInts(values []int) {
	for i := 1; i < len(values); i++ {
		j := i
		for j > 0 && values[j-1] > values[j] {
			values[j-1], values[j] = values[j], values[j-1]
			j--
		}
	}
}
