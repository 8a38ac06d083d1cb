package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	out := execute(t, "run", "testdata/two_level.yaml", "--out", dir)
	assert.Contains(t, out, "two-level")
	assert.Contains(t, out, "<sz>=")
	assert.FileExists(t, filepath.Join(dir, "two_level.csv"))
	assert.FileExists(t, filepath.Join(dir, "two_level.png"))
}

func TestSweepCommand(t *testing.T) {
	dir := t.TempDir()
	out := execute(t, "sweep", "-j", "2", "--out", dir, "testdata/two_level.yaml", "testdata/ohmic_qutrit.yaml")
	assert.Contains(t, out, "two-level")
	assert.Contains(t, out, "ohmic-qutrit")
	assert.FileExists(t, filepath.Join(dir, "ohmic_qutrit.svg"))
	assert.FileExists(t, filepath.Join(dir, "ohmic_qutrit_n.svg"))
}

func TestTensorCommand(t *testing.T) {
	out := execute(t, "tensor", "testdata/two_level.yaml", "--relaxation-only")
	assert.Contains(t, out, "relaxation tensor (4x4")
	assert.Contains(t, out, "eigenvalues:")
}
