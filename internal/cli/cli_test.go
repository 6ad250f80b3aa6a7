package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/foliage/internal/present"
	"github.com/mithrel/foliage/pkg/api"
)

func newOutCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

func TestWriteConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	t.Run("init writes defaults", func(t *testing.T) {
		cmd, out := newOutCmd()
		require.NoError(t, writeConfigFile(cmd, path, false, false))
		assert.Contains(t, out.String(), "Wrote ")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "[cms]")
		assert.Contains(t, string(data), "base_url")
	})

	t.Run("refuses to clobber without overwrite", func(t *testing.T) {
		cmd, _ := newOutCmd()
		err := writeConfigFile(cmd, path, false, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("overwrite keeps a backup", func(t *testing.T) {
		cmd, out := newOutCmd()
		require.NoError(t, writeConfigFile(cmd, path, true, false))
		assert.Contains(t, out.String(), "Backup: ")
		_, err := os.Stat(path + ".bak")
		require.NoError(t, err)
	})

	t.Run("update comments out unknown keys", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("mystery_key = 1\n"), 0o600))
		cmd, _ := newOutCmd()
		require.NoError(t, writeConfigFile(cmd, path, false, true))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# OUTDATED")
		assert.Contains(t, string(data), "# Added by config update")
	})

	t.Run("update without a config errors", func(t *testing.T) {
		cmd, _ := newOutCmd()
		err := writeConfigFile(cmd, filepath.Join(dir, "missing.toml"), false, true)
		require.Error(t, err)
	})
}

func TestFilterPublished(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	articles := []api.Article{
		{ID: "old", PublishedAt: base},
		{ID: "mid", PublishedAt: base.AddDate(0, 0, 10)},
		{ID: "new", PublishedAt: base.AddDate(0, 0, 20)},
	}

	got := filterPublished(articles, base.AddDate(0, 0, 5), base.AddDate(0, 0, 15))
	require.Len(t, got, 1)
	assert.Equal(t, "mid", got[0].ID)

	got = filterPublished(articles, time.Time{}, time.Time{})
	assert.Len(t, got, 3)

	got = filterPublished(articles, base.AddDate(0, 0, 15), time.Time{})
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestOutputOptions(t *testing.T) {
	opts, err := outputOptions("json", false)
	require.NoError(t, err)
	assert.Equal(t, present.ModeJSON, opts.Mode)
	assert.True(t, opts.Headers)

	opts, err = outputOptions("PLAIN", true)
	require.NoError(t, err)
	assert.Equal(t, present.ModePlain, opts.Mode)
	assert.False(t, opts.Headers)

	_, err = outputOptions("sideways", false)
	require.Error(t, err)
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "articles", "render", "config", "completion"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
