package recommendation

import (
	"strconv"
	"unicode/utf8"

	"github.com/kailas-cloud/recdex/internal/domain/payload"
)

// Field defaults applied when a decoded payload lacks the field.
const (
	DefaultTitle       = "Unknown Title"
	DefaultURL         = "#"
	DefaultDescription = "No description available"
)

// MaxFallbackDescription is the number of characters kept from a raw payload.
const MaxFallbackDescription = 100

const ellipsis = "..."

// Recommendation is one retrieval result as presented to callers.
type Recommendation struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// FromPayload maps a decoded or fallback payload to a recommendation.
// rank is 1-based and only used for fallback titles.
func FromPayload(res payload.Result, rank int) Recommendation {
	if res.Kind() == payload.KindFallback {
		return Fallback(res.Raw(), rank)
	}
	return Recommendation{
		Title:       field(res, "title", DefaultTitle),
		URL:         field(res, "url", DefaultURL),
		Description: field(res, "description", DefaultDescription),
	}
}

// Fallback builds the positional record for an undecodable payload.
func Fallback(raw string, rank int) Recommendation {
	return Recommendation{
		Title:       "Document " + strconv.Itoa(rank),
		URL:         DefaultURL,
		Description: Truncate(raw, MaxFallbackDescription),
	}
}

// Truncate keeps the first n characters of s and marks the cut with "...".
// Strings of at most n characters are returned verbatim.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + ellipsis
		}
		i++
	}
	return s
}

func field(res payload.Result, key, def string) string {
	if v, ok := res.String(key); ok {
		return v
	}
	return def
}
