package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_DeterministicAndFixedDimension(t *testing.T) {
	e := New(32)
	ctx := context.Background()

	a, err := e.Embed(ctx, "solar powered irrigation")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "solar powered irrigation")
	require.NoError(t, err)
	c, err := e.Embed(ctx, "sign language tutor")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestEmbed_UnitLength(t *testing.T) {
	e := New(0)
	vec, err := e.Embed(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, vec, defaultDimension)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestEmbed_RejectsEmptyText(t *testing.T) {
	_, err := New(8).Embed(context.Background(), "")
	assert.Error(t, err)
}
