package ml

import (
	"errors"
	"sort"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

// NgramWeight pairs an n-gram with its coefficient weight for one class.
type NgramWeight struct {
	Ngram  string  `json:"ngram"`
	Weight float64 `json:"weight"`
}

// TopNgrams returns, for each stance, the k n-grams with the largest
// strictly positive coefficient in the linear model. Non-positive
// coefficients carry no association and never appear. Output order is
// weight-descending with term-ascending tie break, so identical fitted
// weights always yield identical output. The linear model used here need
// not be the deployed one.
func TopNgrams(space *FeatureSpace, model LinearModel, k int) (map[stance.Stance][]NgramWeight, error) {
	if space == nil {
		return nil, errors.New("feature space is nil")
	}
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}
	if bound, ok := model.(interface{ SpaceID() string }); ok && bound.SpaceID() != space.ID {
		return nil, ErrFeatureSpaceMismatch
	}

	coefficients := model.Coefficients()
	if len(coefficients) != NumClasses {
		return nil, errors.New("unexpected coefficient class count")
	}

	out := make(map[stance.Stance][]NgramWeight, NumClasses)
	for c, row := range coefficients {
		if len(row) != space.VocabSize() {
			return nil, errors.New("coefficient row does not match vocabulary size")
		}

		positive := make([]NgramWeight, 0, k)
		for col, weight := range row {
			if weight > 0 {
				positive = append(positive, NgramWeight{Ngram: space.Terms[col], Weight: weight})
			}
		}
		sort.Slice(positive, func(i, j int) bool {
			if positive[i].Weight != positive[j].Weight {
				return positive[i].Weight > positive[j].Weight
			}
			return positive[i].Ngram < positive[j].Ngram
		})
		if len(positive) > k {
			positive = positive[:k]
		}

		label, err := stance.FromIndex(c)
		if err != nil {
			return nil, err
		}
		out[label] = positive
	}
	return out, nil
}
