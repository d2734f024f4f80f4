package ml

import (
	"errors"
	"testing"
)

func reportResult(kind ModelKind, macroF1, accuracy float64) ModelResult {
	return ModelResult{
		Kind:       kind,
		Classifier: &scriptedClassifier{kind: kind},
		Report:     &EvaluationReport{Kind: kind, MacroF1: macroF1, Accuracy: accuracy},
	}
}

func TestSelectBestByMacroF1(t *testing.T) {
	results := []ModelResult{
		reportResult(KindLogistic, 0.70, 0.90),
		reportResult(KindRandomForest, 0.85, 0.80),
		reportResult(KindNaiveBayes, 0.60, 0.95),
	}
	best, err := SelectBest(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Kind != KindRandomForest {
		t.Fatalf("selected %s, want %s", best.Kind, KindRandomForest)
	}
	for _, result := range results {
		if result.Report.MacroF1 > best.Report.MacroF1 {
			t.Fatal("selected report is not maximal")
		}
	}
}

func TestSelectBestTieBreakAccuracy(t *testing.T) {
	results := []ModelResult{
		reportResult(KindMLP, 0.80, 0.78),
		reportResult(KindLinearSVM, 0.80, 0.82),
	}
	best, err := SelectBest(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Kind != KindLinearSVM {
		t.Fatalf("selected %s, want %s", best.Kind, KindLinearSVM)
	}
}

func TestSelectBestTieBreakPriority(t *testing.T) {
	results := []ModelResult{
		reportResult(KindGradientBoost, 0.80, 0.80),
		reportResult(KindLinearSVM, 0.80, 0.80),
		reportResult(KindMLP, 0.80, 0.80),
	}
	best, err := SelectBest(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// linear_svm outranks mlp and gradient_boost in the fixed order.
	if best.Kind != KindLinearSVM {
		t.Fatalf("selected %s, want %s", best.Kind, KindLinearSVM)
	}
}

func TestSelectBestSkipsFailures(t *testing.T) {
	results := []ModelResult{
		{Kind: KindLogistic, Err: errors.New("did not converge")},
		reportResult(KindNaiveBayes, 0.40, 0.50),
	}
	best, err := SelectBest(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best.Kind != KindNaiveBayes {
		t.Fatalf("selected %s, want %s", best.Kind, KindNaiveBayes)
	}
}

func TestSelectBestNoCandidates(t *testing.T) {
	if _, err := SelectBest(nil); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	allFailed := []ModelResult{
		{Kind: KindLogistic, Err: errors.New("boom")},
		{Kind: KindMLP, Err: errors.New("boom")},
	}
	if _, err := SelectBest(allFailed); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}
