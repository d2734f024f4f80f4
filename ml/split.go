package ml

import (
	"errors"
	"math"
	"math/rand"
)

// StratifiedSplit partitions the labeled set so each class appears in train
// and test in proportion to its overall frequency. The shuffle within each
// class depends only on the seed.
func StratifiedSplit(X []Vector, y []int, testRatio float64, seed int64) (trainX []Vector, trainY []int, testX []Vector, testY []int, err error) {
	if err := validateTrainingSet(X, y); err != nil {
		return nil, nil, nil, nil, err
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, nil, nil, errors.New("test ratio must be in (0, 1)")
	}

	byClass := make([][]int, NumClasses)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	for c := 0; c < NumClasses; c++ {
		indices := byClass[c]
		rng.Shuffle(len(indices), func(i, j int) { indices[i], indices[j] = indices[j], indices[i] })

		testCount := int(math.Round(testRatio * float64(len(indices))))
		if testCount == 0 && len(indices) > 1 {
			testCount = 1
		}
		for i, idx := range indices {
			if i < testCount {
				testX = append(testX, X[idx])
				testY = append(testY, y[idx])
			} else {
				trainX = append(trainX, X[idx])
				trainY = append(trainY, y[idx])
			}
		}
	}

	if len(trainX) == 0 || len(testX) == 0 {
		return nil, nil, nil, nil, errors.New("split produced an empty partition")
	}
	return trainX, trainY, testX, testY, nil
}
