package ml

import (
	"math"
	"math/rand"
)

// MLPConfig holds the feedforward network hyperparameters.
type MLPConfig struct {
	HiddenUnits  int
	Epochs       int
	LearningRate float64
	Seed         int64
}

// DefaultMLPConfig returns the bank's fixed hyperparameters.
func DefaultMLPConfig(seed int64) MLPConfig {
	return MLPConfig{HiddenUnits: 32, Epochs: 80, LearningRate: 0.05, Seed: seed}
}

// MLP is a small feedforward classifier: one ReLU hidden layer and a
// softmax output. Weight initialization and sample order depend only on
// the recorded seed.
type MLP struct {
	spaceRef
	config MLPConfig

	w1      [][]float64 // hidden x features
	b1      []float64
	w2      [][]float64 // classes x hidden
	b2      []float64
	trained bool
}

// NewMLP creates an untrained network bound to a space.
func NewMLP(space *FeatureSpace, config MLPConfig) *MLP {
	if config.HiddenUnits <= 0 {
		config.HiddenUnits = 32
	}
	return &MLP{spaceRef: newSpaceRef(space), config: config}
}

func (m *MLP) Kind() ModelKind { return KindMLP }

func (m *MLP) Seed() int64 { return m.config.Seed }

func (m *MLP) Train(X []Vector, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(m.config.Seed))
	hidden := m.config.HiddenUnits
	m.w1 = randomMatrix(rng, hidden, m.numFeatures)
	m.b1 = make([]float64, hidden)
	m.w2 = randomMatrix(rng, NumClasses, hidden)
	m.b2 = make([]float64, NumClasses)

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < m.config.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		eta := m.config.LearningRate / (1 + 0.05*float64(epoch))
		for _, idx := range order {
			m.step(X[idx], y[idx], eta)
		}
	}

	m.trained = true
	return nil
}

func (m *MLP) step(x Vector, label int, eta float64) {
	hidden := len(m.b1)

	preact := make([]float64, hidden)
	act := make([]float64, hidden)
	for k := 0; k < hidden; k++ {
		preact[k] = x.Dot(m.w1[k]) + m.b1[k]
		if preact[k] > 0 {
			act[k] = preact[k]
		}
	}

	logits := make([]float64, NumClasses)
	for c := 0; c < NumClasses; c++ {
		var sum float64
		for k := 0; k < hidden; k++ {
			sum += m.w2[c][k] * act[k]
		}
		logits[c] = sum + m.b2[c]
	}
	probs := softmax(logits)

	// Output layer gradient.
	outGrad := make([]float64, NumClasses)
	for c := 0; c < NumClasses; c++ {
		outGrad[c] = probs[c]
		if c == label {
			outGrad[c] -= 1
		}
	}

	// Hidden layer gradient through ReLU.
	hidGrad := make([]float64, hidden)
	for k := 0; k < hidden; k++ {
		if preact[k] <= 0 {
			continue
		}
		var sum float64
		for c := 0; c < NumClasses; c++ {
			sum += outGrad[c] * m.w2[c][k]
		}
		hidGrad[k] = sum
	}

	for c := 0; c < NumClasses; c++ {
		for k := 0; k < hidden; k++ {
			m.w2[c][k] -= eta * outGrad[c] * act[k]
		}
		m.b2[c] -= eta * outGrad[c]
	}
	for k := 0; k < hidden; k++ {
		if hidGrad[k] == 0 {
			continue
		}
		for col, value := range x {
			m.w1[k][col] -= eta * hidGrad[k] * value
		}
		m.b1[k] -= eta * hidGrad[k]
	}
}

// Predict returns the softmax class probabilities.
func (m *MLP) Predict(x Vector) (int, []float64, error) {
	if !m.trained {
		return 0, nil, ErrNotTrained
	}
	hidden := len(m.b1)
	act := make([]float64, hidden)
	for k := 0; k < hidden; k++ {
		if v := x.Dot(m.w1[k]) + m.b1[k]; v > 0 {
			act[k] = v
		}
	}
	logits := make([]float64, NumClasses)
	for c := 0; c < NumClasses; c++ {
		var sum float64
		for k := 0; k < hidden; k++ {
			sum += m.w2[c][k] * act[k]
		}
		logits[c] = sum + m.b2[c]
	}
	probs := softmax(logits)
	return argmax(probs), probs, nil
}

func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	scale := math.Sqrt(2.0 / float64(cols+1))
	matrix := make([][]float64, rows)
	for r := range matrix {
		matrix[r] = make([]float64, cols)
		for c := range matrix[r] {
			matrix[r][c] = rng.NormFloat64() * scale
		}
	}
	return matrix
}
