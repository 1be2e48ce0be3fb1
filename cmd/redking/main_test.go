package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/redking/cost"
	"github.com/lixenwraith/redking/store"
)

// execute runs the CLI with args against a TOML store in dir
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--store", "toml", "--store-path", filepath.Join(dir, "runs.toml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func seed(t *testing.T, dir string, records ...store.RunRecord) {
	t.Helper()
	ctx := context.Background()
	s := store.NewTOMLStore(filepath.Join(dir, "runs.toml"))
	require.NoError(t, s.Init(ctx))
	for _, rec := range records {
		require.NoError(t, s.Append(ctx, rec))
	}
}

func TestSampleCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "sample")
	require.NoError(t, err)

	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.Len(t, fields[0], 32)
	p, err := cost.Decode(fields[1])
	require.NoError(t, err)
	assert.True(t, p.Viable())
}

func TestVoteCommand(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, store.RunRecord{ID: "r1", Params: cost.Encode(cost.Defaults)})

	_, err := execute(t, dir, "vote", "r1", "--up", "3", "--down", "1")
	require.NoError(t, err)
	out, err := execute(t, dir, "vote", "r1", "--down", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "+3 -2")
	assert.Contains(t, out, "fitness 1")
}

func TestVoteCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	_, err := execute(t, dir, "vote", "missing", "--up", "1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = execute(t, dir, "vote", "missing")
	assert.Error(t, err)
}

func TestFitnessCommand(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir,
		store.RunRecord{ID: "a", Upvotes: 2},
		store.RunRecord{ID: "b"},
	)

	out, err := execute(t, dir, "fitness")
	require.NoError(t, err)
	assert.Contains(t, out, "updated 1 records")
}

func TestLineageCommand(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir,
		store.RunRecord{ID: "root", ParentID: "gone"},
		store.RunRecord{ID: "child", ParentID: "root"},
	)

	out, err := execute(t, dir, "lineage", "child")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "0  child"))
	assert.True(t, strings.HasPrefix(lines[1], "1  root"))
	assert.Equal(t, "parent gone no longer exists", lines[2])
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir,
		store.RunRecord{ID: "a", BaseName: "aaa"},
		store.RunRecord{ID: "b", ParentID: "a"},
	)
	outPath := filepath.Join(dir, "export.yaml")

	_, err := execute(t, dir, "export", "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc exportDoc
	require.NoError(t, yaml.Unmarshal(data, &doc))

	require.Len(t, doc.Runs, 2)
	assert.Equal(t, "aaa", doc.Runs[0].BaseName)
	assert.Equal(t, []string{"b"}, doc.Children["a"])
	assert.NotContains(t, doc.Children, "")
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	_, err := execute(t, t.TempDir(), "run", "--store", "redis")
	assert.ErrorContains(t, err, "store_kind")
}
