package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKeywordsMatch(t *testing.T) {
	keywords := NewKeywords([]string{"covid-19"})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "case insensitive", text: "COVID-19 is spreading", want: true},
		{name: "no match", text: "unrelated text", want: false},
		{name: "empty text", text: "", want: false},
		{name: "substring inside word", text: "post-covid-19-era recap", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, keywords.Match(tt.text))
		})
	}
}

func TestKeywordsEmptySetMatchesNothing(t *testing.T) {
	keywords := NewKeywords(nil)
	require.False(t, keywords.Match("covid-19 vaccine news"))
}

func TestKeywordsMatching(t *testing.T) {
	keywords := NewKeywords([]string{"vaccine", "pfizer", "moderna"})
	got := keywords.Matching("The Pfizer vaccine rollout")
	require.Equal(t, []string{"vaccine", "pfizer"}, got)
}

func TestKeywordsTitleAndBodyConcatenated(t *testing.T) {
	keywords := NewKeywords([]string{"booster"})
	post := RedditPost{Title: "my second shot", SelfText: "thinking about the Booster next"}
	require.True(t, keywords.Match(post.FullText()))
}

func TestLoadKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := "keywords:\n  - COVID-19\n  - vaccine\n  - \"  \"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	keywords, err := LoadKeywords(path)
	require.NoError(t, err)
	require.Equal(t, []string{"covid-19", "vaccine"}, keywords.Terms())
}

func TestLoadKeywordsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: []\n"), 0o644))
	_, err := LoadKeywords(path)
	require.Error(t, err)
}

func TestKeywordWatcherServesInitialList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords: [vaccine]\n"), 0o644))

	watcher, err := NewKeywordWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Close()

	require.True(t, watcher.Current().Match("vaccine mandates"))
	require.False(t, watcher.Current().Match("unrelated"))
}
