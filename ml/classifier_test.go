package ml

import (
	"fmt"
	"reflect"
	"testing"
)

// trainingFixture builds a small separable three-class corpus and its
// vectorized train/test sets.
func trainingFixture(t *testing.T) (*FeatureSpace, []Vector, []int, []Vector, []int) {
	t.Helper()

	var corpus []string
	var labels []int
	for i := 0; i < 12; i++ {
		corpus = append(corpus, fmt.Sprintf("vaccines safe effective protect community trial %d", i))
		labels = append(labels, 0)
		corpus = append(corpus, fmt.Sprintf("undecided waiting more data unsure reading %d", i))
		labels = append(labels, 1)
		corpus = append(corpus, fmt.Sprintf("dangerous injury refuse mandate harm distrust %d", i))
		labels = append(labels, 2)
	}

	config := VectorizerConfig{MinNgram: 1, MaxNgram: 2, MinDF: 2, MaxDF: 0.95, Stopwords: defaultStopwords()}
	space, err := FitFeatureSpace(corpus, config)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	X := space.Transform(corpus)

	trainX, trainY, testX, testY, err := StratifiedSplit(X, labels, 0.25, 7)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	return space, trainX, trainY, testX, testY
}

func TestAllKindsLearnSeparableCorpus(t *testing.T) {
	space, trainX, trainY, testX, testY := trainingFixture(t)

	for _, clf := range BuildBank(space, 42) {
		clf := clf
		t.Run(string(clf.Kind()), func(t *testing.T) {
			if err := clf.Train(trainX, trainY); err != nil {
				t.Fatalf("train: %v", err)
			}
			report, err := Evaluate(clf, testX, testY)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			// Random guessing over three balanced classes sits at 1/3.
			if report.Accuracy < 0.5 {
				t.Fatalf("accuracy %f too low for separable data", report.Accuracy)
			}
		})
	}
}

func TestPredictBeforeTrain(t *testing.T) {
	space, _, _, _, _ := trainingFixture(t)
	for _, clf := range BuildBank(space, 1) {
		if _, _, err := clf.Predict(Vector{}); err == nil {
			t.Fatalf("%s: expected ErrNotTrained", clf.Kind())
		}
	}
}

func TestTrainRejectsMismatchedLabels(t *testing.T) {
	space, trainX, trainY, _, _ := trainingFixture(t)
	for _, clf := range BuildBank(space, 1) {
		if err := clf.Train(trainX, trainY[:len(trainY)-1]); err == nil {
			t.Fatalf("%s: expected size mismatch error", clf.Kind())
		}
		if err := clf.Train(nil, nil); err == nil {
			t.Fatalf("%s: expected empty set error", clf.Kind())
		}
	}
}

func TestSeededKindsAreReproducible(t *testing.T) {
	space, trainX, trainY, testX, testY := trainingFixture(t)

	build := func() []TextClassifier { return BuildBank(space, 99) }
	first := TrainAll(build(), trainX, trainY, testX, testY)
	second := TrainAll(build(), trainX, trainY, testX, testY)

	for i := range first {
		if first[i].Err != nil || second[i].Err != nil {
			t.Fatalf("%s: unexpected failure: %v %v", first[i].Kind, first[i].Err, second[i].Err)
		}
		if !reflect.DeepEqual(first[i].Report, second[i].Report) {
			t.Fatalf("%s: reports differ across identically seeded runs", first[i].Kind)
		}
	}
}

func TestSeedRecordedInReport(t *testing.T) {
	space, trainX, trainY, testX, testY := trainingFixture(t)
	clf := NewMLP(space, DefaultMLPConfig(1234))
	if err := clf.Train(trainX, trainY); err != nil {
		t.Fatalf("train: %v", err)
	}
	report, err := Evaluate(clf, testX, testY)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.Seed != 1234 {
		t.Fatalf("expected recorded seed 1234, got %d", report.Seed)
	}
}

func TestZeroVectorGetsPrediction(t *testing.T) {
	space, trainX, trainY, _, _ := trainingFixture(t)
	for _, clf := range BuildBank(space, 5) {
		if err := clf.Train(trainX, trainY); err != nil {
			t.Fatalf("%s: train: %v", clf.Kind(), err)
		}
		class, _, err := clf.Predict(Vector{})
		if err != nil {
			t.Fatalf("%s: zero vector must not error: %v", clf.Kind(), err)
		}
		if class < 0 || class >= NumClasses {
			t.Fatalf("%s: class %d out of range", clf.Kind(), class)
		}
	}
}

func TestLogisticSaveLoadRoundTrip(t *testing.T) {
	space, trainX, trainY, testX, _ := trainingFixture(t)
	clf := NewLogisticRegression(space, DefaultLogisticConfig(3))
	if err := clf.Train(trainX, trainY); err != nil {
		t.Fatalf("train: %v", err)
	}

	path := t.TempDir() + "/logistic.json"
	if err := clf.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := &LogisticRegression{}
	if err := restored.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.SpaceID() != space.ID {
		t.Fatal("restored model lost its space binding")
	}
	for _, x := range testX {
		a, _, err := clf.Predict(x)
		if err != nil {
			t.Fatalf("predict: %v", err)
		}
		b, _, err := restored.Predict(x)
		if err != nil {
			t.Fatalf("restored predict: %v", err)
		}
		if a != b {
			t.Fatal("restored model disagrees with original")
		}
	}
}
