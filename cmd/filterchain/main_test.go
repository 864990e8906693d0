package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	dotFile := filepath.Join(dir, "pipeline.dot")
	metricsFile := filepath.Join(dir, "metrics.prom")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"run",
		"--instances", "3",
		"--filters", "2",
		"--work", "10ms",
		"--timeout", "1s",
		"--log-level", "error",
		"--dot", dotFile,
		"--metrics-file", metricsFile,
	})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Main end. [")
	assert.Contains(t, out.String(), "instances=3 timeouts=0 cancellations=0 failures=0")

	dot, err := os.ReadFile(dotFile)
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"Filter1" -> "Filter2"`)

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `filterchain_logics_total{status="ok"} 3`)
}

func TestRunCommandTopologyFile(t *testing.T) {
	topoFile := filepath.Join(t.TempDir(), "topology.dot")
	require.NoError(t, os.WriteFile(topoFile, []byte(`digraph logic {
	a [work="5ms"];
	a -> b;
	a -> c;
}`), 0o600))

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"run", "--instances", "2", "--work", "5ms", "--countdown", "--log-level", "error", "--topology", topoFile})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "instances=2 timeouts=0")
}

func TestRunCommandInvalidFlags(t *testing.T) {
	tcs := map[string][]string{
		"zero instances": {"run", "--instances", "0"},
		"zero poll":      {"run", "--poll", "0s"},
		"missing file":   {"run", "--topology", "missing.dot"},
		"bad log level":  {"run", "--instances", "1", "--work", "1ms", "--log-level", "loud"},
	}

	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			cmd := rootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(args)

			assert.Error(t, cmd.Execute())
		})
	}
}

func TestLintCommand(t *testing.T) {
	topoFile := filepath.Join(t.TempDir(), "topology.dot")
	require.NoError(t, os.WriteFile(topoFile, []byte(`digraph logic {
	Filter1 [work="20ms"];
	Filter2 [work="50ms"];
	Filter1 -> Filter2;
	Filter1 -> Filter3;
}`), 0o600))

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"lint", "--work", "10ms", topoFile})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "OK: 3 filters, 2 links, critical path Filter1 -> Filter2 (70ms)\n", out.String())
}

func TestLintCommandInvalid(t *testing.T) {
	topoFile := filepath.Join(t.TempDir(), "topology.dot")
	require.NoError(t, os.WriteFile(topoFile, []byte(`digraph g { a -> b; b -> a; }`), 0o600))

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"lint", topoFile})

	assert.Error(t, cmd.Execute())
}
