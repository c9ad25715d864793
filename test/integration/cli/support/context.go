// Package support carries the shared state and step definitions for the
// CLI acceptance suite. Commands execute in-process against the cobra
// root command, so scenarios stay fast and need no prebuilt binary.
package support

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/cmd/imagelab/cmd"
)

// TestContext holds per-scenario state.
type TestContext struct {
	WorkDir    string
	originalWd string
	output     string
	lastErr    error
}

// NewTestContext creates an isolated working directory and moves into
// it so relative output paths stay contained.
func NewTestContext() (*TestContext, error) {
	workDir, err := os.MkdirTemp("", "imagelab-cli-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	originalWd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := os.Chdir(workDir); err != nil {
		return nil, err
	}

	return &TestContext{WorkDir: workDir, originalWd: originalWd}, nil
}

// Cleanup restores the working directory and removes scenario files.
func (testCtx *TestContext) Cleanup() error {
	if err := os.Chdir(testCtx.originalWd); err != nil {
		return err
	}
	return os.RemoveAll(testCtx.WorkDir)
}

// RegisterSteps wires every step definition into the scenario.
func (testCtx *TestContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a gradient test image "([^"]*)"$`, testCtx.aGradientTestImage)
	sc.Step(`^I run imagelab with "([^"]*)"$`, testCtx.iRunImagelabWith)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
}

// aGradientTestImage writes a small deterministic PNG into the work
// directory.
func (testCtx *TestContext) aGradientTestImage(name string) error {
	const width, height = 64, 48

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(x * 255 / (width - 1))
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}

	f, err := os.Create(filepath.Join(testCtx.WorkDir, name)) //nolint:gosec // test fixture path
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return png.Encode(f, img)
}

// resetFlags restores every flag in the command tree to its default.
// Cobra commands retain flag values between in-process executions, so
// scenarios would otherwise leak flags into each other.
func resetFlags(c *cobra.Command) {
	c.Flags().Visit(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// iRunImagelabWith executes the CLI in-process with the given
// space-separated arguments.
func (testCtx *TestContext) iRunImagelabWith(argLine string) error {
	root := cmd.GetRootCommand()
	resetFlags(root)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(strings.Fields(argLine))

	testCtx.lastErr = root.Execute()
	testCtx.output = buf.String()
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.lastErr != nil {
		return fmt.Errorf("expected success, got error: %v\noutput:\n%s", testCtx.lastErr, testCtx.output)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.lastErr == nil {
		return fmt.Errorf("expected failure, command succeeded\noutput:\n%s", testCtx.output)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(text string) error {
	if !strings.Contains(testCtx.output, text) {
		return fmt.Errorf("output does not contain %q:\n%s", text, testCtx.output)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(text string) error {
	if testCtx.lastErr == nil {
		return fmt.Errorf("expected an error mentioning %q, command succeeded", text)
	}
	if !strings.Contains(testCtx.lastErr.Error(), text) {
		return fmt.Errorf("error %q does not mention %q", testCtx.lastErr.Error(), text)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	path := filepath.Join(testCtx.WorkDir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected file %s: %w", path, err)
	}
	return nil
}
