package summarize

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackmatch/internal/domain"
)

func TestParse(t *testing.T) {
	sum, err := Parse(`{"title":"Plant Pal","summary":"Waters plants.","features":["sensors","alerts"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Plant Pal", sum.Title)
	assert.Equal(t, "Waters plants.", sum.Summary)
	assert.Equal(t, []string{"sensors", "alerts"}, sum.Features)
}

func TestParse_TrimsCodeFences(t *testing.T) {
	sum, err := Parse("```json\n{\"title\":\"X\",\"summary\":\"y\",\"features\":[]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "X", sum.Title)
}

func TestParse_MalformedIsTyped(t *testing.T) {
	for _, content := range []string{"not json at all", "{}", `{"features": []}`} {
		_, err := Parse(content)
		assert.True(t, errors.Is(err, domain.ErrMalformedSummary), "content %q", content)
	}
}
