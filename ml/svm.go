package ml

import "math/rand"

// SVMConfig holds the linear max-margin classifier hyperparameters.
type SVMConfig struct {
	Epochs       int
	LearningRate float64
	Lambda       float64
	Seed         int64
}

// DefaultSVMConfig returns the bank's fixed hyperparameters.
func DefaultSVMConfig(seed int64) SVMConfig {
	return SVMConfig{Epochs: 60, LearningRate: 0.5, Lambda: 1e-4, Seed: seed}
}

// LinearSVM trains one hinge-loss binary separator per class (one vs rest)
// with SGD and predicts the class with the largest margin.
type LinearSVM struct {
	spaceRef
	config  SVMConfig
	weights [][]float64
	bias    []float64
	trained bool
}

// NewLinearSVM creates an untrained model bound to a space.
func NewLinearSVM(space *FeatureSpace, config SVMConfig) *LinearSVM {
	return &LinearSVM{spaceRef: newSpaceRef(space), config: config}
}

func (svm *LinearSVM) Kind() ModelKind { return KindLinearSVM }

func (svm *LinearSVM) Seed() int64 { return svm.config.Seed }

func (svm *LinearSVM) Train(X []Vector, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	svm.weights = make([][]float64, NumClasses)
	for c := range svm.weights {
		svm.weights[c] = make([]float64, svm.numFeatures)
	}
	svm.bias = make([]float64, NumClasses)

	rng := rand.New(rand.NewSource(svm.config.Seed))
	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < svm.config.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		eta := svm.config.LearningRate / (1 + 0.1*float64(epoch))
		for _, idx := range order {
			for c := 0; c < NumClasses; c++ {
				target := -1.0
				if y[idx] == c {
					target = 1.0
				}
				margin := target * (X[idx].Dot(svm.weights[c]) + svm.bias[c])
				if margin >= 1 {
					continue
				}
				for col, value := range X[idx] {
					w := svm.weights[c][col]
					svm.weights[c][col] = w + eta*(target*value-svm.config.Lambda*w)
				}
				svm.bias[c] += eta * target
			}
		}
	}

	svm.trained = true
	return nil
}

// Predict returns the class with the largest decision value. Scores are raw
// margins, not probabilities.
func (svm *LinearSVM) Predict(x Vector) (int, []float64, error) {
	if !svm.trained {
		return 0, nil, ErrNotTrained
	}
	scores := make([]float64, NumClasses)
	for c := 0; c < NumClasses; c++ {
		scores[c] = x.Dot(svm.weights[c]) + svm.bias[c]
	}
	return argmax(scores), scores, nil
}

// Coefficients exposes the per-class weight rows for n-gram extraction.
func (svm *LinearSVM) Coefficients() [][]float64 {
	return svm.weights
}
