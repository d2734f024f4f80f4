package ml

import (
	"fmt"
	"sync"
)

// ModelResult is the outcome of training and evaluating one classifier
// kind. Err is set when the fit failed or panicked; a failed kind never
// aborts the rest of the bank.
type ModelResult struct {
	Kind       ModelKind
	Classifier TextClassifier
	Report     *EvaluationReport
	Err        error
}

// BuildBank constructs the six classifier kinds in fixed priority order,
// all bound to the shared FeatureSpace and seeded with the same base seed.
func BuildBank(space *FeatureSpace, seed int64) []TextClassifier {
	return []TextClassifier{
		NewLogisticRegression(space, DefaultLogisticConfig(seed)),
		NewLinearSVM(space, DefaultSVMConfig(seed)),
		NewNaiveBayes(space),
		NewMLP(space, DefaultMLPConfig(seed)),
		NewRandomForest(space, DefaultForestConfig(seed)),
		NewGradientBoost(space, DefaultBoostConfig(seed)),
	}
}

// TrainAll fits and evaluates every classifier independently. The kinds
// share no mutable state and the FeatureSpace is read-only, so they train
// in parallel; results come back in the input order regardless.
func TrainAll(classifiers []TextClassifier, trainX []Vector, trainY []int, testX []Vector, testY []int) []ModelResult {
	results := make([]ModelResult, len(classifiers))

	var wg sync.WaitGroup
	for i, clf := range classifiers {
		wg.Add(1)
		go func(i int, clf TextClassifier) {
			defer wg.Done()
			results[i] = trainOne(clf, trainX, trainY, testX, testY)
		}(i, clf)
	}
	wg.Wait()

	return results
}

// trainOne is the per-model failure boundary: fit errors and panics become
// the result's Err.
func trainOne(clf TextClassifier, trainX []Vector, trainY []int, testX []Vector, testY []int) (result ModelResult) {
	result.Kind = clf.Kind()

	defer func() {
		if r := recover(); r != nil {
			result.Classifier = nil
			result.Report = nil
			result.Err = fmt.Errorf("training %s panicked: %v", clf.Kind(), r)
		}
	}()

	if err := clf.Train(trainX, trainY); err != nil {
		result.Err = fmt.Errorf("training %s: %w", clf.Kind(), err)
		return result
	}

	report, err := Evaluate(clf, testX, testY)
	if err != nil {
		result.Err = fmt.Errorf("evaluating %s: %w", clf.Kind(), err)
		return result
	}

	result.Classifier = clf
	result.Report = report
	return result
}
