package recommendation

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/recdex/internal/domain/payload"
)

func TestFromPayload_Decoded(t *testing.T) {
	res := payload.Decode([]byte(`{"title":"BERT","url":"https://arxiv.org/abs/1810.04805","description":"Pre-training","text":"..."}`))

	got := FromPayload(res, 1)
	want := Recommendation{Title: "BERT", URL: "https://arxiv.org/abs/1810.04805", Description: "Pre-training"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFromPayload_Defaults(t *testing.T) {
	res := payload.Decode([]byte(`{"text":"only text","title":null}`))

	got := FromPayload(res, 3)
	want := Recommendation{Title: DefaultTitle, URL: DefaultURL, Description: DefaultDescription}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFromPayload_Fallback(t *testing.T) {
	res := payload.Decode([]byte("not json at all"))

	got := FromPayload(res, 2)
	if got.Title != "Document 2" {
		t.Errorf("Title = %q, want %q", got.Title, "Document 2")
	}
	if got.URL != "#" {
		t.Errorf("URL = %q, want #", got.URL)
	}
	if got.Description != "not json at all" {
		t.Errorf("Description = %q, want verbatim payload", got.Description)
	}
}

func TestTruncate(t *testing.T) {
	exact := strings.Repeat("a", 100)
	long := strings.Repeat("b", 101)
	wide := strings.Repeat("é", 150)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "abc", "abc"},
		{"empty", "", ""},
		{"exactly 100", exact, exact},
		{"101", long, strings.Repeat("b", 100) + "..."},
		{"multibyte", wide, strings.Repeat("é", 100) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, 100); got != tt.want {
				t.Errorf("Truncate() = %q (%d bytes), want %q", got, len(got), tt.want)
			}
		})
	}
}
