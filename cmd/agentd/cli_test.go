package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["ingest"])
	assert.True(t, names["create-index"])
}

func TestIngestCmd_RequiresInput(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "agent.db"))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"ingest"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--manifest")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	t.Setenv("RETRIEVAL_BACKEND", "pinecone")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"create-index"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETRIEVAL_BACKEND")
}

func TestCreateIndexCmd_Chromem(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "agent.db"))
	t.Setenv("RETRIEVAL_BACKEND", "chromem")
	t.Setenv("CHROMEM_DIR", filepath.Join(dir, "vectors"))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"create-index"})
	require.NoError(t, root.Execute())
}

func TestNewLogger_Levels(t *testing.T) {
	assert.True(t, newLogger("debug").Enabled(t.Context(), -4))
	assert.False(t, newLogger("info").Enabled(t.Context(), -4))
	assert.False(t, newLogger("error").Enabled(t.Context(), 0))
}

func TestWriteTimeout_CoversUpstreamCalls(t *testing.T) {
	assert.Equal(t, 70*time.Second, writeTimeout(30*time.Second))
	assert.Greater(t, writeTimeout(5*time.Second), 2*5*time.Second)
}
