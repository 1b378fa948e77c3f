// Package document holds the structured form of a resolution: ordered
// preamble clauses and numbered operative clauses with lettered sub-clauses.
// The clauses are the source of truth; Render produces the flat text.
package document

import (
	"fmt"
	"sort"
	"strings"
)

type PreambleClause struct {
	Content string `bson:"content" json:"content"`
	Order   int    `bson:"order" json:"order"`
}

type SubClause struct {
	Content string `bson:"content" json:"content"`
	Letter  string `bson:"letter" json:"letter"`
}

type OperativeClause struct {
	Content    string      `bson:"content" json:"content"`
	Number     int         `bson:"number" json:"number"`
	SubClauses []SubClause `bson:"subClauses" json:"subClauses"`
}

// Document is the clause set of one resolution.
type Document struct {
	Preamble  []PreambleClause
	Operative []OperativeClause
}

// Render builds the flat text: preamble clauses in order, each followed by a
// comma, then operative clauses as "N. text" with "  a) text" sub-clauses.
func Render(preamble []PreambleClause, operative []OperativeClause) string {
	var b strings.Builder

	sortedPreamble := append([]PreambleClause(nil), preamble...)
	sort.SliceStable(sortedPreamble, func(i, j int) bool {
		return sortedPreamble[i].Order < sortedPreamble[j].Order
	})
	for _, clause := range sortedPreamble {
		b.WriteString(clause.Content)
		b.WriteString(",\n\n")
	}

	sortedOperative := append([]OperativeClause(nil), operative...)
	sort.SliceStable(sortedOperative, func(i, j int) bool {
		return sortedOperative[i].Number < sortedOperative[j].Number
	})
	for _, clause := range sortedOperative {
		fmt.Fprintf(&b, "%d. %s", clause.Number, clause.Content)

		subs := append([]SubClause(nil), clause.SubClauses...)
		sort.SliceStable(subs, func(i, j int) bool {
			return subs[i].Letter < subs[j].Letter
		})
		for _, sub := range subs {
			fmt.Fprintf(&b, "\n  %s) %s", sub.Letter, sub.Content)
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

// Render renders the document.
func (d *Document) Render() string {
	return Render(d.Preamble, d.Operative)
}

// Normalize sorts clauses by their position and renumbers them 1..n.
func (d *Document) Normalize() {
	sort.SliceStable(d.Preamble, func(i, j int) bool {
		return d.Preamble[i].Order < d.Preamble[j].Order
	})
	for i := range d.Preamble {
		d.Preamble[i].Order = i + 1
	}
	sort.SliceStable(d.Operative, func(i, j int) bool {
		return d.Operative[i].Number < d.Operative[j].Number
	})
	for i := range d.Operative {
		d.Operative[i].Number = i + 1
		if d.Operative[i].SubClauses == nil {
			d.Operative[i].SubClauses = []SubClause{}
		}
	}
}
