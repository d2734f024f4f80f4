package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v2"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/db"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/ingest"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/logger"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/pipeline"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log     logger.Config `yaml:"log"`
	Dataset struct {
		Name   string `yaml:"name"`
		Subset string `yaml:"subset"`
	} `yaml:"dataset"`
	Pipeline struct {
		Seed      int64   `yaml:"seed"`
		TestRatio float64 `yaml:"test_ratio"`
		TopNgrams int     `yaml:"top_ngrams"`
		Subreddit string  `yaml:"subreddit"`
		Keyword   string  `yaml:"keyword"`
	} `yaml:"pipeline"`
	Vectorizer struct {
		MinNgram int     `yaml:"min_ngram"`
		MaxNgram int     `yaml:"max_ngram"`
		MinDF    int     `yaml:"min_df"`
		MaxDF    float64 `yaml:"max_df"`
	} `yaml:"vectorizer"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	ingestCorpus := flag.Bool("ingest", false, "fetch the labeled corpus before running")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	store, err := db.Open(config.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *ingestCorpus {
		client := ingest.NewDatasetClient(zlog)
		texts, stats, err := client.FetchDataset(ctx, config.Dataset.Name, config.Dataset.Subset)
		if err != nil {
			log.Fatalf("Failed to fetch labeled corpus: %v", err)
		}
		if err := store.SaveLabeledTexts(texts); err != nil {
			log.Fatalf("Failed to save labeled corpus: %v", err)
		}
		log.Printf("Ingested %d labeled records (%d skipped)", stats.Fetched, stats.Skipped)
	}

	runReport, err := pipeline.Run(ctx, store, runConfig(config), zlog)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	printReport(runReport)
}

func runConfig(config *Config) pipeline.Config {
	run := pipeline.DefaultConfig()
	if config.Pipeline.Seed != 0 {
		run.Seed = config.Pipeline.Seed
	}
	if config.Pipeline.TestRatio != 0 {
		run.TestRatio = config.Pipeline.TestRatio
	}
	if config.Pipeline.TopNgrams != 0 {
		run.TopK = config.Pipeline.TopNgrams
	}
	run.Filters = stance.Filters{
		Subreddit: config.Pipeline.Subreddit,
		Keyword:   config.Pipeline.Keyword,
	}
	if config.Vectorizer.MinNgram != 0 {
		run.Vectorizer.MinNgram = config.Vectorizer.MinNgram
	}
	if config.Vectorizer.MaxNgram != 0 {
		run.Vectorizer.MaxNgram = config.Vectorizer.MaxNgram
	}
	if config.Vectorizer.MinDF != 0 {
		run.Vectorizer.MinDF = config.Vectorizer.MinDF
	}
	if config.Vectorizer.MaxDF != 0 {
		run.Vectorizer.MaxDF = config.Vectorizer.MaxDF
	}
	return run
}

func printReport(runReport *pipeline.RunReport) {
	fmt.Printf("run %s finished in %s\n", runReport.RunID, runReport.Duration.Round(0))
	fmt.Printf("corpus: %d train / %d test, vocabulary %d\n",
		runReport.TrainSize, runReport.TestSize, runReport.VocabSize)

	fmt.Println("\nmodel scoreboard:")
	for _, result := range runReport.Models {
		if result.Err != nil {
			fmt.Printf("  %-14s FAILED: %v\n", result.Kind, result.Err)
			continue
		}
		marker := " "
		if result.Kind == runReport.SelectedKind {
			marker = "*"
		}
		fmt.Printf("%s %-14s accuracy=%.3f macro_f1=%.3f\n",
			marker, result.Kind, result.Report.Accuracy, result.Report.MacroF1)
	}

	if runReport.TopNgrams != nil {
		fmt.Println("\ntop n-grams per stance:")
		for _, label := range stance.All() {
			fmt.Printf("  %s:\n", label)
			for _, ngram := range runReport.TopNgrams[label] {
				fmt.Printf("    %-30s %.4f\n", ngram.Ngram, ngram.Weight)
			}
		}
	}

	fmt.Printf("\npredicted %d collected posts\n", runReport.Predicted)
	printShares("by subreddit", runReport.BySubreddit)
	printShares("by keyword", runReport.ByKeyword)
}

func printShares(title string, counts interface {
	Groups() []string
	GroupTotal(string) int
	Count(string, stance.Stance) int
}) {
	groups := counts.Groups()
	if len(groups) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, group := range groups {
		total := counts.GroupTotal(group)
		fmt.Printf("  %-20s total=%d", group, total)
		for _, label := range stance.All() {
			count := counts.Count(group, label)
			share := 0.0
			if total > 0 {
				share = float64(count) / float64(total)
			}
			fmt.Printf("  %s=%d (%.1f%%)", label, count, share*100)
		}
		fmt.Println()
	}
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
