package ml

import (
	"encoding/json"
	"math"
	"math/rand"
	"os"
)

// spaceRef binds a classifier to the FeatureSpace it was trained with.
type spaceRef struct {
	spaceID     string
	numFeatures int
}

// SpaceID reports the bound FeatureSpace identity.
func (r spaceRef) SpaceID() string { return r.spaceID }

func newSpaceRef(space *FeatureSpace) spaceRef {
	return spaceRef{spaceID: space.ID, numFeatures: space.VocabSize()}
}

// LogisticConfig holds the multinomial logistic regression hyperparameters.
type LogisticConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

// DefaultLogisticConfig returns the bank's fixed hyperparameters.
func DefaultLogisticConfig(seed int64) LogisticConfig {
	return LogisticConfig{Epochs: 60, LearningRate: 0.5, L2: 1e-4, Seed: seed}
}

// LogisticRegression is a multinomial (softmax) linear classifier trained
// with SGD. The seed only orders sample visits; given the same seed the
// fitted weights are identical across runs.
type LogisticRegression struct {
	spaceRef
	config  LogisticConfig
	weights [][]float64
	bias    []float64
	trained bool
}

// NewLogisticRegression creates an untrained model bound to a space.
func NewLogisticRegression(space *FeatureSpace, config LogisticConfig) *LogisticRegression {
	return &LogisticRegression{spaceRef: newSpaceRef(space), config: config}
}

func (lr *LogisticRegression) Kind() ModelKind { return KindLogistic }

func (lr *LogisticRegression) Seed() int64 { return lr.config.Seed }

func (lr *LogisticRegression) Train(X []Vector, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	lr.weights = make([][]float64, NumClasses)
	for c := range lr.weights {
		lr.weights[c] = make([]float64, lr.numFeatures)
	}
	lr.bias = make([]float64, NumClasses)

	rng := rand.New(rand.NewSource(lr.config.Seed))
	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < lr.config.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		eta := lr.config.LearningRate / (1 + 0.1*float64(epoch))
		for _, idx := range order {
			probs := lr.probabilities(X[idx])
			for c := 0; c < NumClasses; c++ {
				grad := probs[c]
				if c == y[idx] {
					grad -= 1
				}
				for col, value := range X[idx] {
					w := lr.weights[c][col]
					lr.weights[c][col] = w - eta*(grad*value+lr.config.L2*w)
				}
				lr.bias[c] -= eta * grad
			}
		}
	}

	lr.trained = true
	return nil
}

func (lr *LogisticRegression) Predict(x Vector) (int, []float64, error) {
	if !lr.trained {
		return 0, nil, ErrNotTrained
	}
	probs := lr.probabilities(x)
	return argmax(probs), probs, nil
}

// Coefficients exposes the per-class weight rows for n-gram extraction.
func (lr *LogisticRegression) Coefficients() [][]float64 {
	return lr.weights
}

func (lr *LogisticRegression) probabilities(x Vector) []float64 {
	logits := make([]float64, NumClasses)
	for c := 0; c < NumClasses; c++ {
		logits[c] = x.Dot(lr.weights[c]) + lr.bias[c]
	}
	return softmax(logits)
}

func softmax(logits []float64) []float64 {
	max := logits[argmax(logits)]
	probs := make([]float64, len(logits))
	var sum float64
	for i, logit := range logits {
		probs[i] = math.Exp(logit - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

type logisticDump struct {
	SpaceID string      `json:"space_id"`
	Config  LogisticConfig `json:"config"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// Save writes the fitted model to a JSON file.
func (lr *LogisticRegression) Save(path string) error {
	if !lr.trained {
		return ErrNotTrained
	}
	payload, err := json.Marshal(logisticDump{
		SpaceID: lr.spaceID,
		Config:  lr.config,
		Weights: lr.weights,
		Bias:    lr.bias,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// Load restores a fitted model from a JSON file.
func (lr *LogisticRegression) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var dump logisticDump
	if err := json.Unmarshal(payload, &dump); err != nil {
		return err
	}
	lr.spaceID = dump.SpaceID
	lr.config = dump.Config
	lr.weights = dump.Weights
	lr.bias = dump.Bias
	if len(dump.Weights) > 0 {
		lr.numFeatures = len(dump.Weights[0])
	}
	lr.trained = true
	return nil
}
