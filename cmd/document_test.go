package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentList_ReturnsActiveVersionOnly(t *testing.T) {
	env := newTestEnv(t)
	srv := newFixtureServer(t, "Document body for listing.")

	addOut := env.run("--output", "json", "source", "add", docURL(srv))
	var resp struct {
		SourceID string `json:"sourceId"`
	}
	require.NoError(t, json.Unmarshal([]byte(lastJSONLine(addOut)), &resp))

	listOut := env.run("--output", "json", "document", "list", resp.SourceID)
	env.contains(listOut, docURL(srv))
}

func TestDocumentRemove_DeletesByURL(t *testing.T) {
	env := newTestEnv(t)
	srv := newFixtureServer(t, "Removable document.")

	env.run("source", "add", docURL(srv))
	env.run("document", "remove", docURL(srv))

	listOut := env.run("--output", "json", "document", "list")
	assert.NotContains(t, listOut, docURL(srv))
}
