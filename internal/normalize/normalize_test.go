package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackmatch/internal/domain"
)

func TestProject_MergesSummaryOverRaw(t *testing.T) {
	raw := &domain.RawProject{
		Title:       "Raw Title",
		Description: "desc",
		GithubURL:   "https://github.com/acme/app",
		URL:         "https://devpost.com/software/app",
	}
	sum := &domain.ProjectSummary{
		Title:    "Clean Title",
		Summary:  "Does a thing.",
		Features: []string{"a", "b"},
	}
	hk := &domain.Hackathon{
		Title:           "HackDavis 2025",
		Location:        "Davis, CA",
		SubmissionDates: "Apr 19 - 20, 2025",
		Organization:    "HackDavis",
	}

	p := Project(raw, sum, hk)

	assert.Equal(t, "Clean Title", p.Title)
	assert.Equal(t, "Does a thing.", p.Summary)
	assert.Equal(t, []string{"a", "b"}, p.Features)
	assert.Equal(t, "HackDavis 2025", p.HackathonTitle)
	assert.Equal(t, "Davis, CA", p.HackathonLocation)
	assert.Equal(t, "Apr 19 - 20, 2025", p.HackathonSubmissionDates)
	assert.Equal(t, "HackDavis", p.HackathonOrganization)
	assert.Equal(t, "https://github.com/acme/app", p.SourceURL)
	assert.Equal(t, "https://devpost.com/software/app", p.DevpostURL)
	assert.Empty(t, p.ID)
	assert.Nil(t, p.Embedding)
}

func TestProject_KeepsRawTitleWhenSummaryFailed(t *testing.T) {
	raw := &domain.RawProject{Title: "Raw Title"}

	p := Project(raw, nil, nil)
	assert.Equal(t, "Raw Title", p.Title)

	// An empty summary title must not clobber the raw one either.
	p = Project(raw, &domain.ProjectSummary{Summary: "s"}, nil)
	assert.Equal(t, "Raw Title", p.Title)
	assert.Equal(t, "s", p.Summary)
}

func TestProject_ProvenanceDefaultsToEmpty(t *testing.T) {
	p := Project(&domain.RawProject{Title: "t"}, nil, nil)

	assert.Equal(t, "", p.HackathonTitle)
	assert.Equal(t, "", p.HackathonLocation)
	assert.Equal(t, "", p.HackathonSubmissionDates)
	assert.Equal(t, "", p.HackathonOrganization)
}

func TestEmbeddingText(t *testing.T) {
	tests := []struct {
		name     string
		summary  string
		features []string
		want     string
		ok       bool
	}{
		{"summary and features", "A chat app.", []string{"voice", "video"}, "A chat app. voice video", true},
		{"summary only", "A chat app.", nil, "A chat app.", true},
		{"features only", "", []string{"voice", "video"}, "voice video", true},
		{"both empty", "", nil, "", false},
		{"empty feature list", "", []string{}, "", false},
		{"whitespace only", "   ", []string{" ", ""}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EmbeddingText(tt.summary, tt.features)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The text embedded for a stored document and the text embedded for an
// equivalent ad-hoc query must be byte-identical: both paths go through
// EmbeddingText.
func TestEmbeddingText_ConsistentWithDocumentPath(t *testing.T) {
	p := &domain.Project{Summary: "Tracks plants.", Features: []string{"reminders", "sensors"}}

	docText, ok := ProjectEmbeddingText(p)
	require.True(t, ok)
	queryText, ok := EmbeddingText("Tracks plants.", []string{"reminders", "sensors"})
	require.True(t, ok)

	assert.Equal(t, docText, queryText)
}
