package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCommand(t *testing.T) {
	t.Run("ranked hits", func(t *testing.T) {
		out, err := runCLI(t, nil, "search", "computer", "science", "--limit", "3")
		require.NoError(t, err)

		var res searchOutput
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "computer science", res.Query)
		require.NotEmpty(t, res.Hits)
		assert.LessOrEqual(t, len(res.Hits), 3)
		assert.Equal(t, 1, res.Hits[0].Rank)
	})

	t.Run("no hits prints an empty list", func(t *testing.T) {
		out, err := runCLI(t, nil, "search", "zzzzqqq")
		require.NoError(t, err)
		assert.Contains(t, out, `"hits": []`)
	})

	tests := []struct {
		name string
		args []string
	}{
		{"blank query", []string{"search", "  "}},
		{"zero limit", []string{"search", "law", "--limit", "0"}},
		{"limit above cap", []string{"search", "law", "--limit", "101"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, nil, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitInvalidInput, exitCode(err))
		})
	}

	t.Run("requires a query", func(t *testing.T) {
		_, err := runCLI(t, nil, "search")
		assert.Error(t, err)
	})
}
