package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/db"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/ml"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/pipeline"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

func main() {
	dbPath := flag.String("db", "./stance.db", "database path")
	seed := flag.Int64("seed", 42, "random seed")
	testRatio := flag.Float64("test_ratio", 0.2, "test ratio")
	topK := flag.Int("top", 20, "top n-grams per stance")
	modelPath := flag.String("model_path", "", "save the selected model here when it is logistic")
	flag.Parse()

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	store, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	config := pipeline.DefaultConfig()
	config.Seed = *seed
	config.TestRatio = *testRatio
	config.TopK = *topK

	runReport, err := pipeline.Run(context.Background(), store, config, zlog)
	if err != nil {
		log.Fatalf("run failed: %v", err)
	}

	for _, result := range runReport.Models {
		if result.Err != nil {
			log.Printf("%s failed: %v", result.Kind, result.Err)
			continue
		}
		log.Printf("%s accuracy=%.3f macro_f1=%.3f", result.Kind, result.Report.Accuracy, result.Report.MacroF1)
	}
	log.Printf("selected %s (macro_f1=%.3f)", runReport.SelectedKind, runReport.Selected.MacroF1)

	if runReport.TopNgrams != nil {
		for _, label := range stance.All() {
			fmt.Printf("%s:\n", label)
			for _, ngram := range runReport.TopNgrams[label] {
				fmt.Printf("  %-30s %.4f\n", ngram.Ngram, ngram.Weight)
			}
		}
	}

	if *modelPath != "" {
		saveSelected(runReport, *modelPath)
	}
}

func saveSelected(runReport *pipeline.RunReport, path string) {
	for _, result := range runReport.Models {
		if result.Kind != runReport.SelectedKind || result.Err != nil {
			continue
		}
		logistic, ok := result.Classifier.(*ml.LogisticRegression)
		if !ok {
			log.Printf("selected model %s has no JSON persistence, skipping save", result.Kind)
			return
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Fatalf("failed to create model dir: %v", err)
		}
		if err := logistic.Save(path); err != nil {
			log.Fatalf("failed to save model: %v", err)
		}
		fmt.Printf("model saved to %s\n", path)
		return
	}
}
