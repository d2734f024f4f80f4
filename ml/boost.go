package ml

import (
	"errors"
	"math"
	"math/rand"
)

// BoostConfig holds the boosted-tree ensemble hyperparameters.
type BoostConfig struct {
	Rounds   int
	MaxDepth int
	Seed     int64
}

// DefaultBoostConfig returns the bank's fixed hyperparameters.
func DefaultBoostConfig(seed int64) BoostConfig {
	return BoostConfig{Rounds: 40, MaxDepth: 2, Seed: seed}
}

// GradientBoost is a SAMME-boosted ensemble of shallow trees: each round
// reweights the samples the previous trees got wrong. Feature subsampling
// per round depends only on the recorded seed.
type GradientBoost struct {
	spaceRef
	config BoostConfig
	trees  []*decisionTree
	alphas []float64
	trained bool
}

// NewGradientBoost creates an untrained ensemble bound to a space.
func NewGradientBoost(space *FeatureSpace, config BoostConfig) *GradientBoost {
	if config.Rounds <= 0 {
		config.Rounds = 40
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 2
	}
	return &GradientBoost{spaceRef: newSpaceRef(space), config: config}
}

func (gb *GradientBoost) Kind() ModelKind { return KindGradientBoost }

func (gb *GradientBoost) Seed() int64 { return gb.config.Seed }

func (gb *GradientBoost) Train(X []Vector, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(gb.config.Seed))
	weights := make([]float64, len(X))
	for i := range weights {
		weights[i] = 1 / float64(len(X))
	}

	gb.trees = gb.trees[:0]
	gb.alphas = gb.alphas[:0]

	for round := 0; round < gb.config.Rounds; round++ {
		candidates := sampleColumns(rng, gb.numFeatures)
		tree, err := trainTree(X, y, weights, candidates, gb.config.MaxDepth)
		if err != nil {
			return err
		}

		var weightedErr float64
		predictions := make([]int, len(X))
		for i, x := range X {
			label, err := tree.predict(x)
			if err != nil {
				return err
			}
			predictions[i] = label
			if label != y[i] {
				weightedErr += weights[i]
			}
		}

		// SAMME requires a learner better than random guessing over K
		// classes; rounds that are not stop contributing.
		if weightedErr >= 1-1.0/NumClasses {
			continue
		}
		if weightedErr < 1e-10 {
			weightedErr = 1e-10
		}
		alpha := math.Log((1-weightedErr)/weightedErr) + math.Log(NumClasses-1)

		gb.trees = append(gb.trees, tree)
		gb.alphas = append(gb.alphas, alpha)

		var sum float64
		for i := range weights {
			if predictions[i] != y[i] {
				weights[i] *= math.Exp(alpha)
			}
			sum += weights[i]
		}
		for i := range weights {
			weights[i] /= sum
		}
	}

	if len(gb.trees) == 0 {
		return errors.New("boosting produced no usable rounds")
	}
	gb.trained = true
	return nil
}

// Predict returns the alpha-weighted vote; scores are normalized vote mass.
func (gb *GradientBoost) Predict(x Vector) (int, []float64, error) {
	if !gb.trained {
		return 0, nil, ErrNotTrained
	}
	scores := make([]float64, NumClasses)
	var total float64
	for t, tree := range gb.trees {
		label, err := tree.predict(x)
		if err != nil {
			return 0, nil, err
		}
		scores[label] += gb.alphas[t]
		total += gb.alphas[t]
	}
	if total > 0 {
		for c := range scores {
			scores[c] /= total
		}
	}
	return argmax(scores), scores, nil
}
