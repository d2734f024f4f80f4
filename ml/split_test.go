package ml

import "testing"

func TestStratifiedSplitProportions(t *testing.T) {
	var X []Vector
	var y []int
	// 40 pro, 20 neutral, 40 anti.
	for i := 0; i < 100; i++ {
		X = append(X, Vector{i: 1})
		switch {
		case i < 40:
			y = append(y, 0)
		case i < 60:
			y = append(y, 1)
		default:
			y = append(y, 2)
		}
	}

	trainX, trainY, testX, testY, err := StratifiedSplit(X, y, 0.2, 17)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trainX)+len(testX) != 100 {
		t.Fatalf("split lost samples: %d + %d", len(trainX), len(testX))
	}

	testCounts := make([]int, NumClasses)
	for _, label := range testY {
		testCounts[label]++
	}
	if testCounts[0] != 8 || testCounts[1] != 4 || testCounts[2] != 8 {
		t.Fatalf("test partition not stratified: %v", testCounts)
	}

	trainCounts := make([]int, NumClasses)
	for _, label := range trainY {
		trainCounts[label]++
	}
	if trainCounts[0] != 32 || trainCounts[1] != 16 || trainCounts[2] != 32 {
		t.Fatalf("train partition not stratified: %v", trainCounts)
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	var X []Vector
	var y []int
	for i := 0; i < 30; i++ {
		X = append(X, Vector{i: 1})
		y = append(y, i%NumClasses)
	}

	_, _, firstTestX, _, err := StratifiedSplit(X, y, 0.3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, secondTestX, _, err := StratifiedSplit(X, y, 0.3, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(firstTestX) != len(secondTestX) {
		t.Fatal("split size differs across identical seeds")
	}
	for i := range firstTestX {
		for col := range firstTestX[i] {
			if _, ok := secondTestX[i][col]; !ok {
				t.Fatal("split membership differs across identical seeds")
			}
		}
	}
}

func TestStratifiedSplitInvalidRatio(t *testing.T) {
	X := []Vector{{0: 1}, {1: 1}}
	y := []int{0, 1}
	if _, _, _, _, err := StratifiedSplit(X, y, 0, 1); err == nil {
		t.Fatal("expected error for zero ratio")
	}
	if _, _, _, _, err := StratifiedSplit(X, y, 1, 1); err == nil {
		t.Fatal("expected error for ratio of one")
	}
}
