package ml

import "math"

// NaiveBayes is a multinomial naive generative classifier over TF-IDF
// weights with Laplace smoothing. It has no internal randomness.
type NaiveBayes struct {
	spaceRef
	alpha     float64
	logPrior  []float64
	logLike   [][]float64
	trained   bool
}

// NewNaiveBayes creates an untrained model bound to a space.
func NewNaiveBayes(space *FeatureSpace) *NaiveBayes {
	return &NaiveBayes{spaceRef: newSpaceRef(space), alpha: 1.0}
}

func (nb *NaiveBayes) Kind() ModelKind { return KindNaiveBayes }

func (nb *NaiveBayes) Train(X []Vector, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	classCounts := make([]float64, NumClasses)
	featureSums := make([][]float64, NumClasses)
	totals := make([]float64, NumClasses)
	for c := range featureSums {
		featureSums[c] = make([]float64, nb.numFeatures)
	}

	for i, x := range X {
		c := y[i]
		classCounts[c]++
		for col, value := range x {
			featureSums[c][col] += value
		}
	}
	// Totals come from the dense sums in column order; accumulating them
	// inside the map range above would depend on iteration order.
	for c := 0; c < NumClasses; c++ {
		for col := 0; col < nb.numFeatures; col++ {
			totals[c] += featureSums[c][col]
		}
	}

	nb.logPrior = make([]float64, NumClasses)
	nb.logLike = make([][]float64, NumClasses)
	n := float64(len(X))
	for c := 0; c < NumClasses; c++ {
		nb.logPrior[c] = math.Log((classCounts[c] + nb.alpha) / (n + nb.alpha*NumClasses))
		nb.logLike[c] = make([]float64, nb.numFeatures)
		denom := totals[c] + nb.alpha*float64(nb.numFeatures)
		for col := 0; col < nb.numFeatures; col++ {
			nb.logLike[c][col] = math.Log((featureSums[c][col] + nb.alpha) / denom)
		}
	}

	nb.trained = true
	return nil
}

// Predict returns the class with the highest posterior. Scores are log
// joint probabilities; a zero vector falls back to the class priors.
func (nb *NaiveBayes) Predict(x Vector) (int, []float64, error) {
	if !nb.trained {
		return 0, nil, ErrNotTrained
	}
	cols := x.Columns()
	scores := make([]float64, NumClasses)
	for c := 0; c < NumClasses; c++ {
		scores[c] = nb.logPrior[c]
		for _, col := range cols {
			if col >= 0 && col < nb.numFeatures {
				scores[c] += x[col] * nb.logLike[c][col]
			}
		}
	}
	return argmax(scores), scores, nil
}
