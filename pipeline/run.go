package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/db"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/ml"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/report"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

// Store is the persistence surface a run needs. *db.Store satisfies it;
// tests substitute an in-memory fake.
type Store interface {
	FetchLabeledTexts(platform stance.Platform) ([]stance.LabeledText, error)
	FetchUnlabeledTexts(filters stance.Filters) ([]*stance.UnlabeledText, error)
	PersistPredictions(runID string, predictions []stance.Prediction) error
	SaveTrainingLog(logs []db.TrainingLog) error
}

// Config holds a run's tunables.
type Config struct {
	Seed       int64
	TestRatio  float64
	TopK       int
	Vectorizer ml.VectorizerConfig
	Filters    stance.Filters
}

// DefaultConfig returns the standard run settings.
func DefaultConfig() Config {
	return Config{
		Seed:       42,
		TestRatio:  0.2,
		TopK:       20,
		Vectorizer: ml.DefaultVectorizerConfig(),
	}
}

// RunReport is everything one batch run produced.
type RunReport struct {
	RunID        string
	Seed         int64
	StartedAt    time.Time
	Duration     time.Duration
	TrainSize    int
	TestSize     int
	VocabSize    int
	Models       []ml.ModelResult
	SelectedKind ml.ModelKind
	Selected     *ml.EvaluationReport
	TopNgrams    map[stance.Stance][]ml.NgramWeight
	Predicted    int
	BySubreddit  *report.GroupCounts
	ByKeyword    *report.GroupCounts
	Cleaning     CleaningStats
}

// Run executes one full batch: fetch and clean the labeled corpus, fit the
// feature space once, train and evaluate every classifier kind, select the
// best by macro F1, predict the collected posts with it, persist the
// predictions and the training scoreboard, and aggregate the results.
func Run(ctx context.Context, store Store, config Config, logger *zap.Logger) (*RunReport, error) {
	start := time.Now().UTC()
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	labeled, err := store.FetchLabeledTexts(stance.PlatformTwitter)
	if err != nil {
		return nil, fmt.Errorf("fetch labeled corpus: %w", err)
	}
	if len(labeled) == 0 {
		return nil, errors.New("labeled corpus is empty")
	}

	cleaner := NewTextCleaner()
	labeled, labeledIssues := cleaner.CleanLabeled(labeled)
	if len(labeledIssues) > 0 {
		logger.Warn("rejected labeled records", zap.Int("count", len(labeledIssues)))
	}
	if len(labeled) == 0 {
		return nil, errors.New("labeled corpus is empty after cleaning")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	corpus := make([]string, len(labeled))
	labels := make([]int, len(labeled))
	for i, text := range labeled {
		corpus[i] = text.Text
		labels[i] = stance.Index(text.Label)
	}

	space, err := ml.FitFeatureSpace(corpus, config.Vectorizer)
	if err != nil {
		return nil, fmt.Errorf("fit feature space: %w", err)
	}
	logger.Info("fitted feature space",
		zap.Int("documents", len(corpus)), zap.Int("vocabulary", space.VocabSize()))

	X := space.Transform(corpus)
	trainX, trainY, testX, testY, err := ml.StratifiedSplit(X, labels, config.TestRatio, config.Seed)
	if err != nil {
		return nil, fmt.Errorf("split corpus: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := ml.TrainAll(ml.BuildBank(space, config.Seed), trainX, trainY, testX, testY)
	for _, result := range results {
		if result.Err != nil {
			logger.Warn("model failed", zap.String("kind", string(result.Kind)), zap.Error(result.Err))
			continue
		}
		logger.Info("model trained",
			zap.String("kind", string(result.Kind)),
			zap.Float64("accuracy", result.Report.Accuracy),
			zap.Float64("macro_f1", result.Report.MacroF1))
	}

	best, err := ml.SelectBest(results)
	if err != nil {
		return nil, fmt.Errorf("select model: %w", err)
	}
	logger.Info("selected model",
		zap.String("kind", string(best.Kind)), zap.Float64("macro_f1", best.Report.MacroF1))

	runReport := &RunReport{
		RunID:        runID,
		Seed:         config.Seed,
		StartedAt:    start,
		TrainSize:    len(trainX),
		TestSize:     len(testX),
		VocabSize:    space.VocabSize(),
		Models:       results,
		SelectedKind: best.Kind,
		Selected:     best.Report,
	}

	if linear, ok := best.Classifier.(ml.LinearModel); ok {
		topNgrams, err := ml.TopNgrams(space, linear, config.TopK)
		if err != nil {
			return nil, fmt.Errorf("extract top ngrams: %w", err)
		}
		runReport.TopNgrams = topNgrams
	} else {
		logger.Info("selected model has no linear coefficients, skipping ngram extraction",
			zap.String("kind", string(best.Kind)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlabeled, err := store.FetchUnlabeledTexts(config.Filters)
	if err != nil {
		return nil, fmt.Errorf("fetch collected posts: %w", err)
	}
	unlabeled, postIssues := cleaner.CleanUnlabeled(unlabeled)
	if len(postIssues) > 0 {
		logger.Warn("rejected collected posts", zap.Int("count", len(postIssues)))
	}

	if len(unlabeled) > 0 {
		if err := ml.PredictStances(space, best.Classifier, unlabeled); err != nil {
			return nil, fmt.Errorf("predict stances: %w", err)
		}
		predictions := make([]stance.Prediction, len(unlabeled))
		for i, item := range unlabeled {
			predictions[i] = stance.Prediction{ID: item.ID, Label: item.PredictedLabel}
		}
		if err := store.PersistPredictions(runID, predictions); err != nil {
			return nil, fmt.Errorf("persist predictions: %w", err)
		}
	}
	runReport.Predicted = len(unlabeled)
	runReport.BySubreddit = report.Aggregate(unlabeled, report.BySubreddit)
	runReport.ByKeyword = report.Aggregate(unlabeled, report.ByKeyword)

	var scoreboard []db.TrainingLog
	trainedAt := time.Now().UTC()
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		scoreboard = append(scoreboard, db.TrainingLog{
			RunID:      runID,
			ModelKind:  string(result.Kind),
			Seed:       result.Report.Seed,
			Accuracy:   result.Report.Accuracy,
			MacroF1:    result.Report.MacroF1,
			Selected:   result.Kind == best.Kind,
			DataPoints: len(trainX),
			TrainedAt:  trainedAt,
		})
	}
	if err := store.SaveTrainingLog(scoreboard); err != nil {
		return nil, fmt.Errorf("save training log: %w", err)
	}

	runReport.Cleaning = cleaner.Stats()
	runReport.Duration = time.Since(start)
	logger.Info("run complete",
		zap.Int("predicted", runReport.Predicted),
		zap.Duration("duration", runReport.Duration))
	return runReport, nil
}
