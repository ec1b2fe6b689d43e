package recdex

import (
	"time"

	ingestuc "github.com/kailas-cloud/recdex/internal/usecase/ingest"
)

// Document is one corpus entry. "text" is required; "title", "url" and
// "description" are used for recommendations when present.
type Document = map[string]any

// Recommendation is one retrieval result.
type Recommendation struct {
	Title       string
	URL         string
	Description string
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Collection string
	Documents  int
	Indexed    int
	Batches    int
	Dimensions int
	Tokens     int
	Duration   time.Duration
}

// Summary is a generated summary laid out as headings and paragraphs.
type Summary struct {
	Text string // structured
	Raw  string // as returned by the generator
}

func reportFromDomain(r ingestuc.Report) IngestReport {
	return IngestReport{
		Collection: r.Collection,
		Documents:  r.Documents,
		Indexed:    r.Indexed,
		Batches:    r.Batches,
		Dimensions: r.Dimensions,
		Tokens:     r.Tokens,
		Duration:   r.Duration,
	}
}
