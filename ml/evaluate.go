package ml

import (
	"errors"
	"sort"
)

// ClassMetrics are per-class precision/recall/F1 with the class's test
// support.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// EvaluationReport is the read-only outcome of evaluating one classifier
// kind against the held-out set.
type EvaluationReport struct {
	Kind      ModelKind                     `json:"kind"`
	Seed      int64                         `json:"seed"`
	Accuracy  float64                       `json:"accuracy"`
	MacroF1   float64                       `json:"macro_f1"`
	PerClass  [NumClasses]ClassMetrics      `json:"per_class"`
	Confusion [NumClasses][NumClasses]int   `json:"confusion"`
	// ROCAUC is the macro one-vs-rest AUC, present only when the test set
	// has both positives and negatives for at least one class.
	ROCAUC *float64 `json:"roc_auc,omitempty"`
}

// Evaluate runs the classifier over the held-out set and derives its
// report. Confusion rows are actual classes, columns predicted.
func Evaluate(clf TextClassifier, testX []Vector, testY []int) (*EvaluationReport, error) {
	if len(testX) == 0 {
		return nil, errors.New("test set is empty")
	}
	if len(testX) != len(testY) {
		return nil, errors.New("vectors and labels size mismatch")
	}

	report := &EvaluationReport{Kind: clf.Kind()}
	if seeded, ok := clf.(Seeded); ok {
		report.Seed = seeded.Seed()
	}

	predictions := make([]int, len(testX))
	allScores := make([][]float64, len(testX))
	correct := 0
	for i, x := range testX {
		label, scores, err := clf.Predict(x)
		if err != nil {
			return nil, err
		}
		predictions[i] = label
		allScores[i] = scores
		report.Confusion[testY[i]][label]++
		if label == testY[i] {
			correct++
		}
	}
	report.Accuracy = float64(correct) / float64(len(testX))

	var f1Sum float64
	for c := 0; c < NumClasses; c++ {
		tp := report.Confusion[c][c]
		var fp, fn, support int
		for other := 0; other < NumClasses; other++ {
			if other != c {
				fp += report.Confusion[other][c]
				fn += report.Confusion[c][other]
			}
			support += report.Confusion[c][other]
		}

		metrics := ClassMetrics{Support: support}
		if tp+fp > 0 {
			metrics.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			metrics.Recall = float64(tp) / float64(tp+fn)
		}
		if metrics.Precision+metrics.Recall > 0 {
			metrics.F1 = 2 * metrics.Precision * metrics.Recall / (metrics.Precision + metrics.Recall)
		}
		report.PerClass[c] = metrics
		f1Sum += metrics.F1
	}
	report.MacroF1 = f1Sum / NumClasses

	if auc, ok := macroROCAUC(allScores, testY); ok {
		report.ROCAUC = &auc
	}
	return report, nil
}

// macroROCAUC averages one-vs-rest AUC over the classes that have both
// positive and negative examples in the test set.
func macroROCAUC(scores [][]float64, y []int) (float64, bool) {
	var sum float64
	var counted int
	for c := 0; c < NumClasses; c++ {
		if auc, ok := binaryAUC(scores, y, c); ok {
			sum += auc
			counted++
		}
	}
	if counted == 0 {
		return 0, false
	}
	return sum / float64(counted), true
}

func binaryAUC(scores [][]float64, y []int, class int) (float64, bool) {
	type scored struct {
		value    float64
		positive bool
	}
	items := make([]scored, 0, len(y))
	var positives, negatives int
	for i, label := range y {
		if scores[i] == nil || class >= len(scores[i]) {
			return 0, false
		}
		positive := label == class
		if positive {
			positives++
		} else {
			negatives++
		}
		items = append(items, scored{value: scores[i][class], positive: positive})
	}
	if positives == 0 || negatives == 0 {
		return 0, false
	}

	sort.Slice(items, func(i, j int) bool { return items[i].value < items[j].value })

	// Mann-Whitney rank sum with average ranks for ties.
	ranks := make([]float64, len(items))
	for i := 0; i < len(items); {
		j := i
		for j < len(items) && items[j].value == items[i].value {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	var rankSum float64
	for i, item := range items {
		if item.positive {
			rankSum += ranks[i]
		}
	}
	u := rankSum - float64(positives)*float64(positives+1)/2
	return u / (float64(positives) * float64(negatives)), true
}
