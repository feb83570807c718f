// Package scrape fetches and parses devpost project pages and hackathon
// project galleries.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"hackmatch/internal/domain"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; WebScraper/1.0)"
	noSubmissions    = "There are no submissions which match your criteria."
)

var softwareLinkRe = regexp.MustCompile(`^https://devpost\.com/software/`)

// Scraper fetches devpost pages over HTTP.
type Scraper struct {
	client    *http.Client
	userAgent string
}

// New creates a scraper with the given timeout (0 picks a default).
func New(timeout time.Duration) *Scraper {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// FetchProject retrieves one software page and extracts the raw record.
func (s *Scraper) FetchProject(ctx context.Context, url string) (*domain.RawProject, error) {
	doc, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	raw := ParseProject(doc)
	raw.URL = url
	return raw, nil
}

// FetchGalleryPage lists project links on one page of a hackathon's
// project gallery. An empty result means pagination is exhausted.
func (s *Scraper) FetchGalleryPage(ctx context.Context, galleryURL string, page int) ([]string, error) {
	url := fmt.Sprintf("%s/project-gallery?page=%d", strings.TrimSuffix(galleryURL, "/"), page)
	doc, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if strings.Contains(collectText(doc), noSubmissions) {
		return nil, nil
	}
	var links []string
	seen := map[string]struct{}{}
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if softwareLinkRe.MatchString(href) {
				if _, ok := seen[href]; !ok {
					seen[href] = struct{}{}
					links = append(links, href)
				}
			}
		}
		return true
	})
	return links, nil
}

func (s *Scraper) get(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", url)
	}
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	doc, err := html.Parse(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", url)
	}
	return doc, nil
}

// ParseProject extracts the raw record from a parsed software page. The
// "built with" block is detached first so its links and labels never leak
// into the story or source link.
func ParseProject(doc *html.Node) *domain.RawProject {
	if builtWith := findByID(doc, "built-with"); builtWith != nil && builtWith.Parent != nil {
		builtWith.Parent.RemoveChild(builtWith)
	}

	raw := &domain.RawProject{
		Title:       metaProperty(doc, "og:title", "No Title"),
		Description: metaProperty(doc, "og:description", "No Description"),
	}

	if details := findByID(doc, "app-details-left"); details != nil {
		raw.Story = storyText(details)
		walk(details, func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.Data == "a" {
				if href := attr(n, "href"); strings.Contains(href, "https://github.com/") {
					raw.GithubURL = href
				}
			}
			return true
		})
	}
	if raw.Story == "" {
		raw.Story = raw.Description
	}

	// ".software-list-content > p > a" names the hackathon the project
	// was submitted to.
	if link := submissionLink(doc); link != nil {
		raw.SubmittedTo = strings.TrimSpace(collectText(link))
		raw.Hackathon = attr(link, "href")
	}
	return raw
}

// storyText rebuilds the narrative from the second direct-child div of
// the details column: h2 headings become "Heading: ", paragraphs are
// appended as-is and lists end with a comma.
func storyText(details *html.Node) string {
	var divs []*html.Node
	for c := details.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "div" {
			divs = append(divs, c)
		}
	}
	if len(divs) < 2 {
		return ""
	}
	var b strings.Builder
	for c := divs[1].FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "h2":
			b.WriteString(collectText(c) + ": ")
		case "p":
			b.WriteString(collectText(c))
		case "ul":
			b.WriteString(collectText(c) + ",")
		}
	}
	return strings.TrimSpace(b.String())
}

func submissionLink(doc *html.Node) *html.Node {
	container := findByClass(doc, "software-list-content")
	if container == nil {
		return nil
	}
	for p := container.FirstChild; p != nil; p = p.NextSibling {
		if p.Type != html.ElementNode || p.Data != "p" {
			continue
		}
		for a := p.FirstChild; a != nil; a = a.NextSibling {
			if a.Type == html.ElementNode && a.Data == "a" {
				return a
			}
		}
	}
	return nil
}

func metaProperty(doc *html.Node, property, fallback string) string {
	var content string
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" && attr(n, "property") == property {
			content = attr(n, "content")
			return false
		}
		return true
	})
	if content == "" {
		return fallback
	}
	return content
}

func findByID(doc *html.Node, id string) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func findByClass(doc *html.Node, class string) *html.Node {
	var found *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			for _, c := range strings.Fields(attr(n, "class")) {
				if c == class {
					found = n
					return false
				}
			}
		}
		return true
	})
	return found
}

// walk visits nodes depth-first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// collectText concatenates the stripped text nodes beneath n.
func collectText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(c.Data))
		}
		return true
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

var _ domain.Fetcher = (*Scraper)(nil)
