package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdStructure(t *testing.T) {
	root := NewRootCmd()

	assert.Equal(t, "ragdex", root.Use)

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"add", "remove", "list", "search", "stats", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestRootCmdPersistentFlags(t *testing.T) {
	root := NewRootCmd()

	assert.NotNil(t, root.PersistentFlags().Lookup("storage"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestSearchCmdFlags(t *testing.T) {
	search := newSearchCmd()

	limit := search.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "10", limit.DefValue)

	format := search.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	assert.NotNil(t, search.Flags().Lookup("doc-id"))
}

func TestSearchCmdInvalidFormat(t *testing.T) {
	t.Setenv("RAGDEX_STORAGE_PATH", t.TempDir())

	root := NewRootCmd()
	root.SetArgs([]string{"search", "query", "--format", "xml"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestAddCmdRequiresArg(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"add"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}
