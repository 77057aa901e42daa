package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote_Stats(t *testing.T) {
	env := newTestEnv(t)
	srv := newFixtureServer(t, "Hello world. This is a sentence. This is another one.")
	env.run("source", "add", docURL(srv))

	out := env.run("--output", "json", "quote", docURL(srv), "stats")

	var res struct {
		Mode  string `json:"Mode"`
		Stats struct {
			SentenceCount int `json:"SentenceCount"`
		} `json:"Stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(lastJSONLine(out)), &res))
	assert.Equal(t, "stats", res.Mode)
	assert.Equal(t, 3, res.Stats.SentenceCount)
}

func TestQuote_UnknownURLFails(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr("quote", "https://example.com/missing", "stats")
	assert.Error(t, err)
}

func TestQuote_HumanOutputRenders(t *testing.T) {
	env := newTestEnv(t)
	srv := newFixtureServer(t, "First paragraph of the document.")
	env.run("source", "add", docURL(srv))

	out := env.run("quote", docURL(srv), "first", "paragraph")
	assert.NotEmpty(t, out)
}
