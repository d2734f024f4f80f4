package ml

import (
	"reflect"
	"testing"
)

// Magnitudes far enough apart that the addition order changes the rounded
// sum; a map-order walk would produce more than one result.
func TestNormStableAcrossCalls(t *testing.T) {
	v := Vector{0: 1e8, 1: 1, 2: 1}
	first := v.Norm()
	for i := 0; i < 10000; i++ {
		if got := v.Norm(); got != first {
			t.Fatalf("Norm changed between calls on identical input: %v vs %v", first, got)
		}
	}
}

func TestDotStableAcrossCalls(t *testing.T) {
	v := Vector{0: 1e16, 1: 1, 2: 1}
	weights := []float64{1, 1, 1}
	first := v.Dot(weights)
	for i := 0; i < 10000; i++ {
		if got := v.Dot(weights); got != first {
			t.Fatalf("Dot changed between calls on identical input: %v vs %v", first, got)
		}
	}
}

func TestColumnsSortedAscending(t *testing.T) {
	v := Vector{7: 1, 0: 1, 3: 1, 12: 1}
	want := []int{0, 3, 7, 12}
	for i := 0; i < 100; i++ {
		if got := v.Columns(); !reflect.DeepEqual(got, want) {
			t.Fatalf("Columns() = %v, want %v", got, want)
		}
	}
}

func TestDotIgnoresOutOfRangeColumns(t *testing.T) {
	v := Vector{0: 2, 5: 3, -1: 7}
	if got := v.Dot([]float64{10, 0, 0}); got != 20 {
		t.Fatalf("Dot = %v, want 20", got)
	}
}

func TestTransformOneStableAcrossCalls(t *testing.T) {
	corpus := []string{
		"vaccines protect the community",
		"vaccines are safe and effective",
		"community clinics offer vaccines",
	}
	config := DefaultVectorizerConfig()
	config.MinDF = 1
	space, err := FitFeatureSpace(corpus, config)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	text := "vaccines protect the community and are safe"
	first := space.TransformOne(text)
	for i := 0; i < 1000; i++ {
		if got := space.TransformOne(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("TransformOne changed between calls:\n%v\n%v", first, got)
		}
	}
}

func TestNaiveBayesScoresStableAcrossCalls(t *testing.T) {
	corpus := []string{
		"vaccines protect community health",
		"vaccines safe effective shots",
		"mandates overreach refuse distrust",
		"harmful dangerous injection injury",
		"clinic schedule appointment opened",
		"appointment slots posted tuesday",
	}
	labels := []int{0, 0, 2, 2, 1, 1}

	config := DefaultVectorizerConfig()
	config.MinDF = 1
	space, err := FitFeatureSpace(corpus, config)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	X := space.Transform(corpus)

	nb := NewNaiveBayes(space)
	if err := nb.Train(X, labels); err != nil {
		t.Fatalf("train failed: %v", err)
	}

	x := space.TransformOne("vaccines protect the clinic schedule")
	firstLabel, firstScores, err := nb.Predict(x)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	for i := 0; i < 1000; i++ {
		label, scores, err := nb.Predict(x)
		if err != nil {
			t.Fatalf("predict failed: %v", err)
		}
		if label != firstLabel || !reflect.DeepEqual(scores, firstScores) {
			t.Fatalf("naive bayes scores changed between calls:\n%v\n%v", firstScores, scores)
		}
	}
}
