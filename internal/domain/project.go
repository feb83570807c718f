package domain

// RawProject is a scraped devpost project page before summarization.
type RawProject struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Story       string `json:"story"`
	GithubURL   string `json:"github"`
	URL         string `json:"url"`
	SubmittedTo string `json:"submitted_to,omitempty"`
	Hackathon   string `json:"hackathon,omitempty"`
}

// ProjectSummary is the structured output of the LLM summarizer.
type ProjectSummary struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Features []string `json:"features"`
}

// Hackathon carries the provenance of a scraped project gallery.
type Hackathon struct {
	Title           string `json:"title"`
	Location        string `json:"location"`
	URL             string `json:"url"`
	SubmissionDates string `json:"submission_dates"`
	Organization    string `json:"organization"`
}

// Project is the canonical storage document for one hackathon project.
// A nil Embedding means the document has not been indexed for similarity
// search yet; when present its length always equals the collection-wide
// embedding dimension.
type Project struct {
	ID                       string    `bson:"_id,omitempty" json:"id"`
	Title                    string    `bson:"title" json:"title"`
	Summary                  string    `bson:"summary" json:"summary"`
	Features                 []string  `bson:"features" json:"features"`
	HackathonTitle           string    `bson:"hackathon_title" json:"hackathon_title"`
	HackathonLocation        string    `bson:"hackathon_location" json:"hackathon_location"`
	HackathonSubmissionDates string    `bson:"hackathon_submission_dates" json:"hackathon_submission_dates"`
	HackathonOrganization    string    `bson:"hackathon_organization" json:"hackathon_organization"`
	SourceURL                string    `bson:"source_url,omitempty" json:"source_url,omitempty"`
	DevpostURL               string    `bson:"devpost_url,omitempty" json:"devpost_url,omitempty"`
	Embedding                []float32 `bson:"embedding,omitempty" json:"-"`
}

// ScoredProject is a similarity search hit with the engine-reported score.
type ScoredProject struct {
	Project Project `json:"project"`
	Score   float64 `json:"score"`
}
