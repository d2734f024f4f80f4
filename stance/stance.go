package stance

import (
	"fmt"
	"time"
)

// Stance is a text's position on vaccines.
type Stance string

const (
	Pro     Stance = "pro"
	Neutral Stance = "neutral"
	Anti    Stance = "anti"
)

// All lists every stance in the fixed class order used across the pipeline.
// Class indices in feature vectors and confusion matrices follow this order.
func All() []Stance {
	return []Stance{Pro, Neutral, Anti}
}

// Index returns the class index of a stance, or -1 for an unknown value.
func Index(s Stance) int {
	switch s {
	case Pro:
		return 0
	case Neutral:
		return 1
	case Anti:
		return 2
	}
	return -1
}

// FromIndex is the inverse of Index.
func FromIndex(i int) (Stance, error) {
	all := All()
	if i < 0 || i >= len(all) {
		return "", fmt.Errorf("invalid class index %d", i)
	}
	return all[i], nil
}

// ParseStance validates a raw stance string.
func ParseStance(raw string) (Stance, error) {
	switch Stance(raw) {
	case Pro, Neutral, Anti:
		return Stance(raw), nil
	}
	return "", fmt.Errorf("unknown stance %q", raw)
}

// Platform identifies the text source.
type Platform string

const (
	PlatformTwitter Platform = "twitter"
	PlatformReddit  Platform = "reddit"
)

// LabeledText is a training record. Immutable once ingested.
type LabeledText struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Label     Stance    `json:"label"`
	Platform  Platform  `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

// Prediction is the (id, predicted label) pair written back to the store
// once per pipeline run.
type Prediction struct {
	ID    string `json:"id"`
	Label Stance `json:"label"`
}

// Filters narrows an unlabeled-text fetch. Zero values mean no filter.
type Filters struct {
	Subreddit string
	Keyword   string
	Since     time.Time
}

// UnlabeledText is a collected post awaiting a prediction.
// PredictedLabel is empty until the predictor writes it; re-running the
// predictor overwrites it wholesale.
type UnlabeledText struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Subreddit       string    `json:"subreddit"`
	MatchedKeywords []string  `json:"matched_keywords"`
	CreatedAt       time.Time `json:"created_at"`
	PredictedLabel  Stance    `json:"predicted_label,omitempty"`
}
