package pipeline

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/ingest"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

// TextRule validates or rewrites one text. Returning an error rejects the
// record; returning a different string counts as a correction.
type TextRule interface {
	Apply(text string) (string, error)
	Name() string
}

// QualityIssue records why a record was rejected.
type QualityIssue struct {
	Rule      string    `json:"rule"`
	RecordID  string    `json:"record_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// CleaningStats summarizes one cleaner's lifetime.
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Corrected      int64            `json:"corrected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// TextCleaner runs every rule over each record, in order. A record passes
// only when no rule rejects it; duplicates by ID are rejected regardless
// of rules. Labeled and unlabeled records get separate rule lists: a
// training record that cleans down to nothing carries no signal and is
// dropped, but a collected post always reaches the predictor, where the
// zero-vector path decides its label.
type TextCleaner struct {
	labelRules []TextRule
	postRules  []TextRule

	seen     map[string]struct{}
	seenLock sync.Mutex

	stats     CleaningStats
	statsLock sync.RWMutex
}

// NewTextCleaner builds a cleaner with the default rule sets.
func NewTextCleaner() *TextCleaner {
	cleaner := &TextCleaner{
		seen:  make(map[string]struct{}),
		stats: CleaningStats{Issues: make(map[string]int64)},
	}
	normalize := NewNormalizeRule()
	truncate := NewMaxLengthRule(10000)
	cleaner.labelRules = []TextRule{normalize, NewMinLengthRule(3), truncate}
	cleaner.postRules = []TextRule{normalize, truncate}
	return cleaner
}

// AddRule appends a rule to both rule lists. Rules run in insertion order.
func (tc *TextCleaner) AddRule(rule TextRule) {
	tc.labelRules = append(tc.labelRules, rule)
	tc.postRules = append(tc.postRules, rule)
}

// CleanLabeled filters a labeled batch, returning the survivors with their
// cleaned text and the issues for everything rejected.
func (tc *TextCleaner) CleanLabeled(texts []stance.LabeledText) ([]stance.LabeledText, []QualityIssue) {
	var cleaned []stance.LabeledText
	var issues []QualityIssue
	for _, text := range texts {
		out, issue := tc.cleanOne(text.ID, text.Text, tc.labelRules)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		text.Text = out
		cleaned = append(cleaned, text)
	}
	return cleaned, issues
}

// CleanUnlabeled is CleanLabeled for collected posts, minus the minimum
// length rejection.
func (tc *TextCleaner) CleanUnlabeled(texts []*stance.UnlabeledText) ([]*stance.UnlabeledText, []QualityIssue) {
	var cleaned []*stance.UnlabeledText
	var issues []QualityIssue
	for _, text := range texts {
		out, issue := tc.cleanOne(text.ID, text.Text, tc.postRules)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		text.Text = out
		cleaned = append(cleaned, text)
	}
	return cleaned, issues
}

func (tc *TextCleaner) cleanOne(id, text string, rules []TextRule) (string, *QualityIssue) {
	tc.statsLock.Lock()
	tc.stats.TotalProcessed++
	tc.stats.LastClean = time.Now().UTC()
	tc.statsLock.Unlock()

	if tc.isDuplicate(id) {
		tc.reject("duplicate_detection")
		return "", &QualityIssue{
			Rule:      "duplicate_detection",
			RecordID:  id,
			Message:   fmt.Sprintf("duplicate record id %s", id),
			Timestamp: time.Now().UTC(),
		}
	}

	original := text
	for _, rule := range rules {
		out, err := rule.Apply(text)
		if err != nil {
			tc.reject(rule.Name())
			return "", &QualityIssue{
				Rule:      rule.Name(),
				RecordID:  id,
				Message:   err.Error(),
				Timestamp: time.Now().UTC(),
			}
		}
		text = out
	}

	tc.statsLock.Lock()
	tc.stats.Passed++
	if text != original {
		tc.stats.Corrected++
	}
	tc.statsLock.Unlock()
	return text, nil
}

func (tc *TextCleaner) isDuplicate(id string) bool {
	tc.seenLock.Lock()
	defer tc.seenLock.Unlock()
	if _, ok := tc.seen[id]; ok {
		return true
	}
	tc.seen[id] = struct{}{}
	return false
}

func (tc *TextCleaner) reject(rule string) {
	tc.statsLock.Lock()
	tc.stats.Rejected++
	tc.stats.Issues[rule]++
	tc.statsLock.Unlock()
}

// Stats returns a snapshot of the cleaning counters.
func (tc *TextCleaner) Stats() CleaningStats {
	tc.statsLock.RLock()
	defer tc.statsLock.RUnlock()

	stats := tc.stats
	stats.Issues = make(map[string]int64, len(tc.stats.Issues))
	for k, v := range tc.stats.Issues {
		stats.Issues[k] = v
	}
	return stats
}

// NormalizeRule applies the shared text normalization: Unicode NFC, HTML
// entity decoding, URL stripping, whitespace collapsing.
type NormalizeRule struct{}

func NewNormalizeRule() *NormalizeRule { return &NormalizeRule{} }

func (r *NormalizeRule) Name() string { return "normalize" }

func (r *NormalizeRule) Apply(text string) (string, error) {
	return ingest.Clean(text), nil
}

// MinLengthRule rejects texts shorter than Min runes after normalization.
type MinLengthRule struct {
	Min int
}

func NewMinLengthRule(min int) *MinLengthRule { return &MinLengthRule{Min: min} }

func (r *MinLengthRule) Name() string { return "min_length" }

func (r *MinLengthRule) Apply(text string) (string, error) {
	if utf8.RuneCountInString(text) < r.Min {
		return "", fmt.Errorf("text shorter than %d characters", r.Min)
	}
	return text, nil
}

// MaxLengthRule truncates oversized texts instead of rejecting them; some
// self posts run to tens of thousands of characters and the tail adds
// nothing to an n-gram model.
type MaxLengthRule struct {
	Max int
}

func NewMaxLengthRule(max int) *MaxLengthRule { return &MaxLengthRule{Max: max} }

func (r *MaxLengthRule) Name() string { return "max_length" }

func (r *MaxLengthRule) Apply(text string) (string, error) {
	runes := []rune(text)
	if len(runes) <= r.Max {
		return text, nil
	}
	return string(runes[:r.Max]), nil
}
