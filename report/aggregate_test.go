package report_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/report"
	"github.com/LuciaIllari/vaccine-pipeline-twitter-reddit/stance"
)

func item(subreddit string, keywords []string, label stance.Stance) *stance.UnlabeledText {
	return &stance.UnlabeledText{
		Subreddit:       subreddit,
		MatchedKeywords: keywords,
		PredictedLabel:  label,
	}
}

func TestAggregateBySubreddit(t *testing.T) {
	items := []*stance.UnlabeledText{
		item("r/health", nil, stance.Pro),
		item("r/health", nil, stance.Pro),
		item("r/health", nil, stance.Anti),
		item("r/news", nil, stance.Neutral),
	}

	counts := report.Aggregate(items, report.BySubreddit)
	require.Equal(t, []string{"r/health", "r/news"}, counts.Groups())
	require.Equal(t, 2, counts.Count("r/health", stance.Pro))
	require.Equal(t, 1, counts.Count("r/health", stance.Anti))
	// Zero-count cells exist as 0, not as missing values.
	require.Equal(t, 0, counts.Count("r/health", stance.Neutral))
	require.Equal(t, 0, counts.Count("r/news", stance.Pro))
}

func TestAggregateByKeywordCountsOncePerKeyword(t *testing.T) {
	items := []*stance.UnlabeledText{
		item("r/health", []string{"covid-19", "pfizer"}, stance.Anti),
		item("r/health", []string{"covid-19"}, stance.Pro),
	}
	counts := report.Aggregate(items, report.ByKeyword)
	require.Equal(t, 1, counts.Count("covid-19", stance.Anti))
	require.Equal(t, 1, counts.Count("covid-19", stance.Pro))
	require.Equal(t, 1, counts.Count("pfizer", stance.Anti))
}

func TestAggregateSkipsUnpredictedItems(t *testing.T) {
	items := []*stance.UnlabeledText{
		item("r/health", nil, stance.Pro),
		item("r/health", nil, ""),
	}
	counts := report.Aggregate(items, report.BySubreddit)
	require.Equal(t, 1, counts.GroupTotal("r/health"))
}

func TestGroupSharesSumToOne(t *testing.T) {
	items := []*stance.UnlabeledText{
		item("r/health", nil, stance.Pro),
		item("r/health", nil, stance.Neutral),
		item("r/health", nil, stance.Anti),
		item("r/news", nil, stance.Anti),
	}
	counts := report.Aggregate(items, report.BySubreddit)

	for group, dist := range counts.GroupShares() {
		var sum float64
		for _, share := range dist {
			sum += share
		}
		require.InDeltaf(t, 1.0, sum, 1e-9, "group %s", group)
	}
}

func TestGroupSharesEmptyGroupIsZero(t *testing.T) {
	counts := report.Aggregate(nil, report.BySubreddit)
	counts.AddGroup("r/empty")

	dist := counts.GroupShares()["r/empty"]
	var sum float64
	for _, share := range dist {
		sum += share
	}
	require.Zero(t, sum)
	require.Len(t, dist, 3)
}

func TestStanceShares(t *testing.T) {
	items := []*stance.UnlabeledText{
		item("r/health", nil, stance.Anti),
		item("r/health", nil, stance.Anti),
		item("r/news", nil, stance.Anti),
		item("r/news", nil, stance.Pro),
	}
	counts := report.Aggregate(items, report.BySubreddit)
	shares := counts.StanceShares()

	require.InDelta(t, 2.0/3.0, shares[stance.Anti]["r/health"], 1e-9)
	require.InDelta(t, 1.0/3.0, shares[stance.Anti]["r/news"], 1e-9)
	require.Equal(t, 1.0, shares[stance.Pro]["r/news"])

	// No neutral predictions anywhere: all zeros, never NaN.
	for group, share := range shares[stance.Neutral] {
		require.Zerof(t, share, "group %s", group)
		require.False(t, math.IsNaN(share))
	}
}
