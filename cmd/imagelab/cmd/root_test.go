package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "imagelab", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	cmd := rootCmd

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	cmd.SetArgs([]string{"--help"})
	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "filtering and segmentation")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "Usage:")
}

func TestRootCommandVersion(t *testing.T) {
	cmd := rootCmd

	// The help flag value survives between in-process executions.
	if f := cmd.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
		f.Changed = false
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	cmd.SetArgs([]string{"--version"})
	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "imagelab")
}

func TestRootCommandSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, expected := range []string{"process", "serve", "techniques"} {
		assert.True(t, names[expected], "missing subcommand %s", expected)
	}
}
