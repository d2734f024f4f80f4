package ml

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/google/uuid"
)

// VectorizerConfig controls n-gram extraction and vocabulary pruning.
type VectorizerConfig struct {
	MinNgram  int
	MaxNgram  int
	MinDF     int
	MaxDF     float64
	Stopwords map[string]struct{}
}

// DefaultVectorizerConfig matches the pipeline's fixed parameters:
// word 1..4-grams, terms must appear in at least 3 documents and at most
// 90% of them.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MinNgram:  1,
		MaxNgram:  4,
		MinDF:     3,
		MaxDF:     0.9,
		Stopwords: defaultStopwords(),
	}
}

// FeatureSpace is the vocabulary-to-column mapping and IDF statistics fixed
// at fit time. It is immutable: both the held-out twitter data and the
// reddit corpus are transformed through the same instance, never refit.
// ID identifies the instance so a classifier trained against one space can
// refuse vectors produced by another.
type FeatureSpace struct {
	ID       string
	Terms    []string
	Vocab    map[string]int
	IDF      []float64
	DocCount int

	config VectorizerConfig
}

// VocabSize returns the number of columns.
func (fs *FeatureSpace) VocabSize() int { return len(fs.Terms) }

// FitFeatureSpace builds a FeatureSpace from the training corpus. The
// resulting term order is lexicographic, so identical corpora always yield
// identical spaces.
func FitFeatureSpace(corpus []string, config VectorizerConfig) (*FeatureSpace, error) {
	if len(corpus) == 0 {
		return nil, errors.New("corpus is empty")
	}
	if config.MinNgram <= 0 || config.MaxNgram < config.MinNgram {
		return nil, errors.New("invalid ngram range")
	}
	if config.MinDF <= 0 {
		config.MinDF = 1
	}
	if config.MaxDF <= 0 || config.MaxDF > 1 {
		config.MaxDF = 1
	}

	docFreq := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, gram := range extractNgrams(text, config) {
			seen[gram] = struct{}{}
		}
		for gram := range seen {
			docFreq[gram]++
		}
	}

	maxDocs := int(math.Floor(config.MaxDF * float64(len(corpus))))
	terms := make([]string, 0, len(docFreq))
	for gram, df := range docFreq {
		if df < config.MinDF || df > maxDocs {
			continue
		}
		terms = append(terms, gram)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return &FeatureSpace{
		ID:       uuid.NewString(),
		Terms:    terms,
		Vocab:    vocab,
		IDF:      idf,
		DocCount: len(corpus),
		config:   config,
	}, nil
}

// Transform maps a corpus into the space's coordinate system. N-grams
// outside the vocabulary contribute nothing; an empty document yields an
// empty (zero) vector, which is valid input for every classifier.
func (fs *FeatureSpace) Transform(corpus []string) []Vector {
	vectors := make([]Vector, len(corpus))
	for i, text := range corpus {
		vectors[i] = fs.TransformOne(text)
	}
	return vectors
}

// TransformOne maps a single document.
func (fs *FeatureSpace) TransformOne(text string) Vector {
	counts := make(map[int]int)
	for _, gram := range extractNgrams(text, fs.config) {
		if col, ok := fs.Vocab[gram]; ok {
			counts[col]++
		}
	}

	vector := make(Vector, len(counts))
	for col, count := range counts {
		vector[col] = float64(count) * fs.IDF[col]
	}
	if norm := vector.Norm(); norm > 0 {
		vector.Scale(1 / norm)
	}
	return vector
}

// extractNgrams lowercases, segments on UAX#29 word boundaries, keeps
// tokens containing a letter or digit, and emits contiguous n-grams in
// [MinNgram, MaxNgram]. N-grams made solely of stopwords are dropped.
func extractNgrams(text string, config VectorizerConfig) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var grams []string
	for n := config.MinNgram; n <= config.MaxNgram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			window := tokens[i : i+n]
			if allStopwords(window, config.Stopwords) {
				continue
			}
			grams = append(grams, strings.Join(window, " "))
		}
	}
	return grams
}

func tokenize(text string) []string {
	var tokens []string
	segments := words.FromString(strings.ToLower(text))
	for segments.Next() {
		token := segments.Value()
		if hasAlphanumeric(token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func hasAlphanumeric(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

func allStopwords(tokens []string, stopwords map[string]struct{}) bool {
	if len(stopwords) == 0 {
		return false
	}
	for _, token := range tokens {
		if _, ok := stopwords[token]; !ok {
			return false
		}
	}
	return true
}

func defaultStopwords() map[string]struct{} {
	list := []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
		"from", "has", "have", "he", "her", "his", "i", "if", "in", "is",
		"it", "its", "my", "no", "not", "of", "on", "or", "our", "she",
		"so", "that", "the", "their", "them", "they", "this", "to", "was",
		"we", "were", "will", "with", "you", "your",
	}
	stopwords := make(map[string]struct{}, len(list))
	for _, word := range list {
		stopwords[word] = struct{}{}
	}
	return stopwords
}
