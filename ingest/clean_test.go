package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "collapse whitespace", input: "shot\n\n scheduled\t today", want: "shot scheduled today"},
		{name: "strip urls", input: "read this https://example.com/a?b=c first", want: "read this first"},
		{name: "html entities", input: "vaccines &amp; boosters", want: "vaccines & boosters"},
		{name: "trim", input: "   hello   ", want: "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestCleanDeterministic(t *testing.T) {
	input := "Café &amp; the Café https://x.test are the same"
	require.Equal(t, Clean(input), Clean(input))
}

func TestCleanNormalizesComposition(t *testing.T) {
	// Decomposed e + combining accent normalizes to the composed form.
	require.Equal(t, Clean("Caf\u00e9"), Clean("Cafe\u0301"))
}
