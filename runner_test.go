package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerStdoutRedirect(t *testing.T) {
	r := &Runner{Sink: ioutil.Discard}
	out := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, r.Run("sh", []string{"-c", "echo hello"}, out))
	content, err := ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))

	// redirect truncates previous content
	require.NoError(t, r.Run("sh", []string{"-c", "echo hi"}, out))
	content, err = ioutil.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(content))
}

func TestRunnerNonzeroExit(t *testing.T) {
	r := &Runner{Sink: ioutil.Discard}
	err := r.Run("sh", []string{"-c", "exit 3"}, "")

	var failure *StageFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "sh", failure.Tool)
	assert.Equal(t, []string{"-c", "exit 3"}, failure.Args)
	assert.Equal(t, 3, failure.ExitCode)
	assert.Contains(t, failure.Error(), "exit status 3")
}

func TestRunnerMissingTool(t *testing.T) {
	r := &Runner{Sink: ioutil.Discard}
	err := r.Run(filepath.Join(t.TempDir(), "no-such-tool"), nil, "")

	var failure *StageFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, -1, failure.ExitCode)
}

func TestRunnerStderrGoesToSink(t *testing.T) {
	var buf bytes.Buffer
	r := &Runner{Sink: &buf}
	require.NoError(t, r.Run("sh", []string{"-c", "echo oops >&2"}, ""))
	assert.Contains(t, buf.String(), "oops")
}
