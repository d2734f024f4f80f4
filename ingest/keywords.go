// Package ingest brings text into the pipeline: the keyword filter and its
// hot-reloading file watcher, text cleaning, the Reddit listing client, and
// the labeled-dataset provider client.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Keywords is a fixed, case-insensitive keyword list. Matching is plain
// substring search over the concatenated title+body text, so "covid-19"
// matches "COVID-19 is spreading".
type Keywords struct {
	terms []string
}

// NewKeywords lowercases and keeps non-empty terms.
func NewKeywords(terms []string) *Keywords {
	kept := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			kept = append(kept, term)
		}
	}
	return &Keywords{terms: kept}
}

// Match reports whether at least one keyword occurs in the text. An empty
// keyword list or empty text matches nothing.
func (k *Keywords) Match(text string) bool {
	return len(k.Matching(text)) > 0
}

// Matching returns every keyword occurring in the text, in list order.
func (k *Keywords) Matching(text string) []string {
	if text == "" || len(k.terms) == 0 {
		return nil
	}
	lowered := strings.ToLower(text)
	var matched []string
	for _, term := range k.terms {
		if strings.Contains(lowered, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// Terms returns a copy of the keyword list.
func (k *Keywords) Terms() []string {
	return append([]string(nil), k.terms...)
}

type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywords reads a YAML keyword list file.
func LoadKeywords(path string) (*Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file keywordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse keywords file: %w", err)
	}
	if len(file.Keywords) == 0 {
		return nil, errors.New("keywords file lists no keywords")
	}
	return NewKeywords(file.Keywords), nil
}

// KeywordWatcher serves the current keyword list and reloads it when the
// backing file changes, so the long-running collector picks up curation
// edits without a restart.
type KeywordWatcher struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	current *Keywords

	watcher *fsnotify.Watcher
}

// NewKeywordWatcher loads the file once and begins watching it.
func NewKeywordWatcher(path string, logger *zap.Logger) (*KeywordWatcher, error) {
	keywords, err := LoadKeywords(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	return &KeywordWatcher{
		path:    path,
		logger:  logger,
		current: keywords,
		watcher: watcher,
	}, nil
}

// Current returns the active keyword list.
func (kw *KeywordWatcher) Current() *Keywords {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	return kw.current
}

// Run processes file events until the context is canceled. A reload that
// fails keeps the previous list.
func (kw *KeywordWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-kw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			keywords, err := LoadKeywords(kw.path)
			if err != nil {
				kw.logger.Warn("keyword reload failed, keeping previous list",
					zap.String("path", kw.path), zap.Error(err))
				continue
			}
			kw.mu.Lock()
			kw.current = keywords
			kw.mu.Unlock()
			kw.logger.Info("keywords reloaded",
				zap.String("path", kw.path), zap.Int("count", len(keywords.terms)))
		case err, ok := <-kw.watcher.Errors:
			if !ok {
				return
			}
			kw.logger.Warn("keyword watcher error", zap.Error(err))
		}
	}
}

// Close stops the underlying file watcher.
func (kw *KeywordWatcher) Close() error {
	return kw.watcher.Close()
}
