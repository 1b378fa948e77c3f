package services

import (
	"testing"

	"munhub/internal/document"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Urges cooperation ", "Urges cooperation"},
		{"markup", "<i>Notes</i> with <script>alert(1)</script>concern", "Notes with concern"},
		{"encoded tag", "&lt;img src=x onerror=alert(1)&gt;", ""},
		{"double encoded tag stays inert", "&amp;lt;b&amp;gt;", "&lt;b&gt;"},
		{"ampersand", "Trade &amp; Development", "Trade & Development"},
		{"raw ampersand", "Trade & Development", "Trade & Development"},
		{"quotes", `Member states' "shared" duty`, `Member states' "shared" duty`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cleanText(tc.in))
		})
	}
}

func TestCleanDocumentStripsEncodedMarkup(t *testing.T) {
	d := cleanDocument(document.Document{
		Preamble: []document.PreambleClause{{Order: 1, Content: "&lt;svg onload=alert(1)&gt;Recalling"}},
		Operative: []document.OperativeClause{{
			Number:     1,
			Content:    "Calls &amp; urges",
			SubClauses: []document.SubClause{{Letter: "a", Content: "<b>funding</b>"}},
		}},
	})
	assert.Equal(t, "Recalling", d.Preamble[0].Content)
	assert.Equal(t, "Calls & urges", d.Operative[0].Content)
	assert.Equal(t, "funding", d.Operative[0].SubClauses[0].Content)
}
