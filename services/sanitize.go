package services

import (
	"html"
	"strings"

	"munhub/internal/document"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips all markup. Input is decoded before sanitizing so
// entity-encoded tags are stripped too.
var textPolicy = bluemonday.StrictPolicy()

// plainEntities undoes only the escapes the policy applies to harmless text.
var plainEntities = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

func cleanText(s string) string {
	return strings.TrimSpace(plainEntities.Replace(textPolicy.Sanitize(html.UnescapeString(s))))
}

func cleanDocument(d document.Document) document.Document {
	for i := range d.Preamble {
		d.Preamble[i].Content = cleanText(d.Preamble[i].Content)
	}
	for i := range d.Operative {
		d.Operative[i].Content = cleanText(d.Operative[i].Content)
		for j := range d.Operative[i].SubClauses {
			d.Operative[i].SubClauses[j].Content = cleanText(d.Operative[i].SubClauses[j].Content)
		}
	}
	return d
}
