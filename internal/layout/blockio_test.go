package layout

import (
	"testing"

	"github.com/MeKo-Tech/ocrqa/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlocksRoundTrip(t *testing.T) {
	blocks := []Block{
		{Text: "hello world", Box: geometry.NewBox(0, 0, 110, 22), Confidence: 0.85},
		{Text: "second line", Box: geometry.NewBox(0, 50, 90, 70), Confidence: 0.9},
	}

	data, err := BlocksToJSON(blocks)
	require.NoError(t, err)

	parsed, err := BlocksFromJSON(data)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, blocks[0].Text, parsed[0].Text)
	assert.Equal(t, blocks[0].Box, parsed[0].Box)
	assert.InDelta(t, blocks[0].Confidence, parsed[0].Confidence, 1e-9)
	assert.Equal(t, blocks[1], parsed[1])
}

func TestBlocksFromJSON_PercentConfidence(t *testing.T) {
	data := []byte(`[{"text":"x","bbox":[0,0,10,10],"confidence":97}]`)
	blocks, err := BlocksFromJSON(data)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.InDelta(t, 0.97, blocks[0].Confidence, 1e-9)
}

func TestBlocksFromJSON_Malformed(t *testing.T) {
	_, err := BlocksFromJSON([]byte(`{"not":"a list"}`))
	require.Error(t, err)
}

func TestBlocksToJSON_Empty(t *testing.T) {
	data, err := BlocksToJSON(nil)
	require.NoError(t, err)
	parsed, err := BlocksFromJSON(data)
	require.NoError(t, err)
	assert.Empty(t, parsed)
}
