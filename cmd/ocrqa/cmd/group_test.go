package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/ocrqa/internal/layout"
)

func TestGroupCommand_GroupsLine(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "detections.json")
	out := filepath.Join(dir, "blocks.json")

	dets := `[
		{"text": "hello", "bbox": [0, 0, 50, 20], "confidence": 0.9},
		{"text": "world", "bbox": [60, 2, 110, 22], "confidence": 0.8}
	]`
	require.NoError(t, os.WriteFile(in, []byte(dets), 0o600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"group", in, "--width", "200", "--height", "200", "--output", out})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	blocks, err := layout.BlocksFromJSON(data)
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	assert.Equal(t, "hello world", blocks[0].Text)
	assert.InDelta(t, 0.85, blocks[0].Confidence, 1e-9)
}

func TestGroupCommand_RejectsMalformedInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "detections.json")
	require.NoError(t, os.WriteFile(in, []byte(`{not json`), 0o600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"group", in, "--width", "200", "--height", "200"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing detections")
}
