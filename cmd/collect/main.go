package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/db"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/ingest"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/logger"
)

type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log    logger.Config `yaml:"log"`
	Reddit struct {
		Subreddits   []string `yaml:"subreddits"`
		UserAgent    string   `yaml:"user_agent"`
		Interval     string   `yaml:"interval"`
		KeywordsPath string   `yaml:"keywords_path"`
		CacheSize    int      `yaml:"cache_size"`
	} `yaml:"reddit"`
}

func pollInterval(raw string) time.Duration {
	if raw == "" {
		return 5 * time.Minute
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		log.Printf("Invalid interval %q, using 5m", raw)
		return 5 * time.Minute
	}
	return interval
}

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(config.Reddit.Subreddits) == 0 {
		log.Fatal("No subreddits configured")
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

	watcher, err := ingest.NewKeywordWatcher(config.Reddit.KeywordsPath, zlog)
	if err != nil {
		log.Fatalf("Failed to load keywords: %v", err)
	}
	defer watcher.Close()

	interval := pollInterval(config.Reddit.Interval)
	collector, err := ingest.NewCollector(
		ingest.CollectorConfig{
			Subreddits: config.Reddit.Subreddits,
			Interval:   interval,
			CacheSize:  config.Reddit.CacheSize,
		},
		ingest.NewRedditClient(config.Reddit.UserAgent, zlog),
		watcher,
		store,
		zlog,
	)
	if err != nil {
		log.Fatalf("Failed to build collector: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go watcher.Run(ctx)

	log.Printf("Collecting %d subreddits every %s", len(config.Reddit.Subreddits), interval)
	collector.Run(ctx)

	stats := collector.Stats()
	log.Printf("Shutting down: fetched=%d saved=%d skipped=%d", stats.Fetched, stats.Saved, stats.Skipped)
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
