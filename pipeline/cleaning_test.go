package pipeline

import (
	"strings"
	"testing"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

func TestNewTextCleaner(t *testing.T) {
	cleaner := NewTextCleaner()
	if cleaner == nil {
		t.Fatal("NewTextCleaner returned nil")
	}
	if len(cleaner.labelRules) == 0 || len(cleaner.postRules) == 0 {
		t.Error("no default rules added")
	}
}

func TestMinLengthRule(t *testing.T) {
	rule := NewMinLengthRule(3)

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "long enough", text: "vaccine", wantErr: false},
		{name: "exactly min", text: "flu", wantErr: false},
		{name: "too short", text: "ok", wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rule.Apply(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("MinLengthRule.Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaxLengthRuleTruncates(t *testing.T) {
	rule := NewMaxLengthRule(10)

	out, err := rule.Apply(strings.Repeat("a", 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 10 {
		t.Errorf("expected truncation to 10 runes, got %d", len(out))
	}

	short, err := rule.Apply("short")
	if err != nil || short != "short" {
		t.Errorf("short text should pass unchanged, got %q, %v", short, err)
	}
}

func TestNormalizeRuleAppliesSharedCleaning(t *testing.T) {
	rule := NewNormalizeRule()
	out, err := rule.Apply("vaccines &amp;   boosters https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "vaccines & boosters" {
		t.Errorf("unexpected normalized text: %q", out)
	}
}

func TestCleanLabeledRejectsAndCounts(t *testing.T) {
	cleaner := NewTextCleaner()

	texts := []stance.LabeledText{
		{ID: "1", Text: "vaccines save lives", Label: stance.Pro},
		{ID: "2", Text: "x", Label: stance.Anti},
		{ID: "3", Text: "boosters   are &amp; fine", Label: stance.Neutral},
	}
	cleaned, issues := cleaner.CleanLabeled(texts)

	if len(cleaned) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(cleaned))
	}
	if len(issues) != 1 || issues[0].RecordID != "2" || issues[0].Rule != "min_length" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if cleaned[1].Text != "boosters are & fine" {
		t.Errorf("normalization not applied: %q", cleaned[1].Text)
	}

	stats := cleaner.Stats()
	if stats.TotalProcessed != 3 || stats.Passed != 2 || stats.Rejected != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Corrected != 1 {
		t.Errorf("expected 1 corrected record, got %d", stats.Corrected)
	}
	if stats.Issues["min_length"] != 1 {
		t.Errorf("issue counter missing: %+v", stats.Issues)
	}
}

func TestCleanUnlabeledRejectsDuplicates(t *testing.T) {
	cleaner := NewTextCleaner()

	texts := []*stance.UnlabeledText{
		{ID: "p1", Text: "first post about vaccines"},
		{ID: "p1", Text: "same id seen again"},
		{ID: "p2", Text: "second post about boosters"},
	}
	cleaned, issues := cleaner.CleanUnlabeled(texts)

	if len(cleaned) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(cleaned))
	}
	if len(issues) != 1 || issues[0].Rule != "duplicate_detection" {
		t.Fatalf("expected a duplicate rejection, got %+v", issues)
	}
}

func TestCleanUnlabeledKeepsShortAndEmptyPosts(t *testing.T) {
	cleaner := NewTextCleaner()

	texts := []*stance.UnlabeledText{
		{ID: "p1", Text: "x"},
		{ID: "p2", Text: "https://example.com/only-a-link"},
		{ID: "p3", Text: "a normal length vaccine post"},
	}
	cleaned, issues := cleaner.CleanUnlabeled(texts)

	// Short or empty-after-cleaning posts still flow to the predictor,
	// which handles them as zero vectors.
	if len(cleaned) != 3 {
		t.Fatalf("expected all 3 posts to survive, got %d", len(cleaned))
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected rejections: %+v", issues)
	}
	if cleaned[1].Text != "" {
		t.Errorf("link-only post should clean to empty text, got %q", cleaned[1].Text)
	}
}

func TestCleanLabeledStillRejectsShortRecords(t *testing.T) {
	cleaner := NewTextCleaner()

	cleaned, issues := cleaner.CleanLabeled([]stance.LabeledText{{ID: "1", Text: "x", Label: stance.Pro}})
	if len(cleaned) != 0 || len(issues) != 1 {
		t.Fatalf("short training record should be rejected, got %+v, %+v", cleaned, issues)
	}
}

func TestCleanerDeduplicatesAcrossBatches(t *testing.T) {
	cleaner := NewTextCleaner()

	first, _ := cleaner.CleanUnlabeled([]*stance.UnlabeledText{{ID: "p1", Text: "vaccine post"}})
	if len(first) != 1 {
		t.Fatalf("first batch rejected: %+v", first)
	}
	second, issues := cleaner.CleanUnlabeled([]*stance.UnlabeledText{{ID: "p1", Text: "vaccine post again"}})
	if len(second) != 0 || len(issues) != 1 {
		t.Fatalf("expected cross-batch duplicate rejection, got %+v, %+v", second, issues)
	}
}
