package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runTechniques(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"techniques"}, args...))

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTechniquesCommandText(t *testing.T) {
	output, err := runTechniques(t)
	require.NoError(t, err)

	for _, name := range []string{
		"grayscale", "gaussian-blur", "median-blur", "sharpen",
		"otsu-threshold", "adaptive-threshold", "kmeans-cluster",
	} {
		assert.Contains(t, output, name)
	}
	assert.Contains(t, output, "filter")
	assert.Contains(t, output, "segmentation")
}

func TestTechniquesCommandJSON(t *testing.T) {
	output, err := runTechniques(t, "--format", "json")
	require.NoError(t, err)

	var listings []techniqueListing
	require.NoError(t, json.Unmarshal([]byte(output), &listings))
	require.Len(t, listings, 7)
	assert.Equal(t, "gaussian-blur", listings[0].Name)
	assert.Equal(t, "filter", listings[0].Kind)
}

func TestTechniquesCommandYAML(t *testing.T) {
	output, err := runTechniques(t, "--format", "yaml")
	require.NoError(t, err)

	var listings []techniqueListing
	require.NoError(t, yaml.Unmarshal([]byte(output), &listings))
	require.Len(t, listings, 7)

	var segmentation int
	for _, l := range listings {
		if l.Kind == "segmentation" {
			segmentation++
		}
	}
	assert.Equal(t, 3, segmentation)
}

func TestTechniquesCommandInvalidFormat(t *testing.T) {
	_, err := runTechniques(t, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
