package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "leaddesk version "+Version+"\n", out)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "export", "leads", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format must be csv or xlsx")
}

func TestSeedThenExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "leaddesk.db"))
	t.Setenv("BLOB_DRIVER", "fs")
	t.Setenv("BLOB_FS_ROOT", filepath.Join(dir, "blobs"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 3 users, 3 spare parts, 1 templates\n", out)

	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 0 users, 0 spare parts, 0 templates\n", out)

	out, err = execute(t, "export", "leads")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Company,Contact Person,"))

	file := filepath.Join(dir, "proposals.xlsx")
	_, err = execute(t, "export", "proposals", "--format", "xlsx", "--out", file)
	require.NoError(t, err)
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("PK")))
}
