// Package report tabulates predicted stances into counts and proportion
// views consumed by the plotting notebooks.
package report

import (
	"sort"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

// GroupKeyFunc extracts zero or more grouping keys from a predicted item.
// An item contributes one count per key it yields.
type GroupKeyFunc func(*stance.UnlabeledText) []string

// BySubreddit groups by the item's subreddit.
func BySubreddit(item *stance.UnlabeledText) []string {
	if item.Subreddit == "" {
		return nil
	}
	return []string{item.Subreddit}
}

// ByKeyword groups by every keyword the item matched at collection time.
func ByKeyword(item *stance.UnlabeledText) []string {
	return item.MatchedKeywords
}

// GroupCounts holds predicted-stance counts per group. Every group carries
// all three stances, zero-filled, so proportion views are always
// well-formed distributions.
type GroupCounts struct {
	counts map[string]map[stance.Stance]int
}

// Aggregate counts predicted labels per group. Items without a predicted
// label are skipped.
func Aggregate(items []*stance.UnlabeledText, keyFn GroupKeyFunc) *GroupCounts {
	gc := &GroupCounts{counts: make(map[string]map[stance.Stance]int)}
	for _, item := range items {
		if stance.Index(item.PredictedLabel) == -1 {
			continue
		}
		for _, key := range keyFn(item) {
			gc.ensureGroup(key)
			gc.counts[key][item.PredictedLabel]++
		}
	}
	return gc
}

// AddGroup registers a group with zero counts so empty groups appear in
// every view.
func (gc *GroupCounts) AddGroup(group string) {
	gc.ensureGroup(group)
}

func (gc *GroupCounts) ensureGroup(group string) {
	if _, ok := gc.counts[group]; ok {
		return
	}
	row := make(map[stance.Stance]int, len(stance.All()))
	for _, s := range stance.All() {
		row[s] = 0
	}
	gc.counts[group] = row
}

// Groups lists the group keys in sorted order.
func (gc *GroupCounts) Groups() []string {
	groups := make([]string, 0, len(gc.counts))
	for group := range gc.counts {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// Count returns the count for one group and stance; unknown groups are 0.
func (gc *GroupCounts) Count(group string, s stance.Stance) int {
	return gc.counts[group][s]
}

// GroupTotal returns the total count within a group.
func (gc *GroupCounts) GroupTotal(group string) int {
	var total int
	for _, count := range gc.counts[group] {
		total += count
	}
	return total
}

// GroupShares returns, per group, the distribution of its counts across
// stances. Non-empty groups sum to 1; empty groups are all zeros.
func (gc *GroupCounts) GroupShares() map[string]map[stance.Stance]float64 {
	shares := make(map[string]map[stance.Stance]float64, len(gc.counts))
	for group, row := range gc.counts {
		total := gc.GroupTotal(group)
		dist := make(map[stance.Stance]float64, len(row))
		for _, s := range stance.All() {
			if total > 0 {
				dist[s] = float64(row[s]) / float64(total)
			} else {
				dist[s] = 0
			}
		}
		shares[group] = dist
	}
	return shares
}

// StanceShares returns, per stance, the distribution of its counts across
// groups. Stances with no counts anywhere are all zeros.
func (gc *GroupCounts) StanceShares() map[stance.Stance]map[string]float64 {
	totals := make(map[stance.Stance]int, len(stance.All()))
	for _, row := range gc.counts {
		for s, count := range row {
			totals[s] += count
		}
	}

	shares := make(map[stance.Stance]map[string]float64, len(stance.All()))
	for _, s := range stance.All() {
		dist := make(map[string]float64, len(gc.counts))
		for group, row := range gc.counts {
			if totals[s] > 0 {
				dist[group] = float64(row[s]) / float64(totals[s])
			} else {
				dist[group] = 0
			}
		}
		shares[s] = dist
	}
	return shares
}
