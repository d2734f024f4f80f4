package ml

import "errors"

// NumClasses is fixed by the stance taxonomy {pro, neutral, anti}.
const NumClasses = 3

// ModelKind names one of the six classifier kinds in the bank.
type ModelKind string

const (
	KindLogistic      ModelKind = "logistic"
	KindLinearSVM     ModelKind = "linear_svm"
	KindNaiveBayes    ModelKind = "naive_bayes"
	KindMLP           ModelKind = "mlp"
	KindRandomForest  ModelKind = "random_forest"
	KindGradientBoost ModelKind = "gradient_boost"
)

// KindPriority is the fixed tie-break order used by the model selector when
// two kinds match on both macro F1 and accuracy. Linear models come first
// because their coefficients feed the interpretability extractor.
var KindPriority = []ModelKind{
	KindLogistic,
	KindLinearSVM,
	KindNaiveBayes,
	KindMLP,
	KindRandomForest,
	KindGradientBoost,
}

var (
	// ErrNotTrained is returned by Predict before Train has run.
	ErrNotTrained = errors.New("model not trained")
	// ErrNoCandidates is returned by SelectBest when no classifier
	// produced a successful evaluation report. Fatal for the run.
	ErrNoCandidates = errors.New("no candidate models to select from")
	// ErrFeatureSpaceMismatch is returned when a classifier is applied to
	// vectors from a FeatureSpace other than the one it was trained with.
	ErrFeatureSpaceMismatch = errors.New("feature space mismatch")
)

// TextClassifier consumes vectors in FeatureSpace coordinates and produces
// a class index plus per-class scores. Scores are comparable within one
// prediction only; kinds that expose probabilities return them, others
// return raw decision values.
type TextClassifier interface {
	Kind() ModelKind
	Train(X []Vector, y []int) error
	Predict(x Vector) (int, []float64, error)
}

// LinearModel is implemented by kinds with per-class coefficient rows over
// the feature space, which the interpretability extractor consumes.
type LinearModel interface {
	TextClassifier
	Coefficients() [][]float64
}

// Seeded is implemented by kinds with internal randomness; the recorded
// seed makes their evaluation reports reproducible.
type Seeded interface {
	Seed() int64
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func validateTrainingSet(X []Vector, y []int) error {
	if len(X) == 0 || len(y) == 0 {
		return errors.New("training set is empty")
	}
	if len(X) != len(y) {
		return errors.New("vectors and labels size mismatch")
	}
	for _, label := range y {
		if label < 0 || label >= NumClasses {
			return errors.New("label out of range")
		}
	}
	return nil
}

func maxColumn(X []Vector) int {
	max := -1
	for _, x := range X {
		for col := range x {
			if col > max {
				max = col
			}
		}
	}
	return max
}
