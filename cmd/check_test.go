package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfig_Defaults(t *testing.T) {
	cfg := checkConfig()

	assert.True(t, cfg.PureGetters)
	assert.Equal(t, []string{""}, cfg.SideEffectFreeModules)
	assert.True(t, cfg.UseAnnotator)
	assert.True(t, cfg.UseMinifier)
	assert.False(t, cfg.ResolveExternals)
	assert.False(t, cfg.EmitDependencies)
	assert.False(t, cfg.Warnings)
	assert.Empty(t, cfg.Output)
}

func TestCheckConfig_DefineFlag(t *testing.T) {
	original := checkDefineFlag
	t.Cleanup(func() { checkDefineFlag = original })

	checkDefineFlag = map[string]string{"ngDevMode": "false"}

	cfg := checkConfig()
	assert.Equal(t, "false", cfg.Define["ngDevMode"])
}

func TestCheckConfig_NoMinifierFlags(t *testing.T) {
	originalAnnotator := checkNoAnnotatorFlag
	originalMinifier := checkNoMinifierFlag
	t.Cleanup(func() {
		checkNoAnnotatorFlag = originalAnnotator
		checkNoMinifierFlag = originalMinifier
	})

	checkNoAnnotatorFlag = true
	checkNoMinifierFlag = true

	cfg := checkConfig()
	assert.False(t, cfg.UseAnnotator)
	assert.False(t, cfg.UseMinifier)
}

func TestCheckCmd_PrintsResidue(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "impure.js")
	require.NoError(t, os.WriteFile(fixture, []byte("console.log(\"boot\");\n"), 0o644))

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"check", fixture})

	err := rootCmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, out.String(), "console.log")
}

func TestCheckCmd_MissingModule(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"check", filepath.Join(t.TempDir(), "absent.js")})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find modules")
}
