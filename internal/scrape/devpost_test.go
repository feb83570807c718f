package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const projectPage = `<!DOCTYPE html>
<html><head>
<meta property="og:title" content="Plant Pal" />
<meta property="og:description" content="An automated plant care assistant." />
</head><body>
<div class="software-list-content"><p>Submitted to <a href="https://hackdavis.devpost.com/">HackDavis 2025</a></p></div>
<div id="app-details-left">
  <div>gallery images</div>
  <div>
    <h2>Inspiration</h2>
    <p>Our plants kept dying.</p>
    <h2>What it does</h2>
    <p>Waters plants on a schedule.</p>
    <ul><li>moisture sensors</li><li>alerts</li></ul>
  </div>
  <div id="built-with"><a href="https://github.com/should/not-count">arduino</a></div>
  <a href="https://github.com/acme/plant-pal">GitHub repo</a>
</div>
</body></html>`

func parse(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestParseProject(t *testing.T) {
	raw := ParseProject(parse(t, projectPage))

	assert.Equal(t, "Plant Pal", raw.Title)
	assert.Equal(t, "An automated plant care assistant.", raw.Description)
	assert.Equal(t, "https://github.com/acme/plant-pal", raw.GithubURL)
	assert.Equal(t, "HackDavis 2025", raw.SubmittedTo)
	assert.Equal(t, "https://hackdavis.devpost.com/", raw.Hackathon)

	assert.Contains(t, raw.Story, "Inspiration: ")
	assert.Contains(t, raw.Story, "Our plants kept dying.")
	assert.Contains(t, raw.Story, "What it does: ")
	assert.Contains(t, raw.Story, "moisture sensors")
	// The built-with block is detached before anything is extracted.
	assert.NotContains(t, raw.Story, "arduino")
}

func TestParseProject_Fallbacks(t *testing.T) {
	raw := ParseProject(parse(t, `<html><head></head><body></body></html>`))

	assert.Equal(t, "No Title", raw.Title)
	assert.Equal(t, "No Description", raw.Description)
	// With no details column the description doubles as the story.
	assert.Equal(t, "No Description", raw.Story)
	assert.Empty(t, raw.GithubURL)
}

func TestParseProject_StoryNeedsSecondDiv(t *testing.T) {
	page := `<html><body><div id="app-details-left"><div><p>only one div</p></div></div></body></html>`
	raw := ParseProject(parse(t, page))

	// A single child div carries the gallery, not the story.
	assert.Equal(t, "No Description", raw.Story)
}
