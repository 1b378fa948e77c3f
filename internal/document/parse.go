package document

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	operativeLine = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	subClauseLine = regexp.MustCompile(`^\s+([a-z]+)\)\s+(.*)$`)
)

// Parse reads text in the layout Render produces. It is used to ingest
// resolutions submitted as plain text; after that the clauses are
// authoritative and the text is only ever regenerated from them.
func Parse(text string) Document {
	doc := Document{
		Preamble:  []PreambleClause{},
		Operative: []OperativeClause{},
	}

	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		block = strings.TrimRight(block, " \n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		lines := strings.Split(block, "\n")

		if m := operativeLine.FindStringSubmatch(lines[0]); m != nil {
			number, _ := strconv.Atoi(m[1])
			clause := OperativeClause{
				Content:    m[2],
				Number:     number,
				SubClauses: []SubClause{},
			}
			for _, line := range lines[1:] {
				if sm := subClauseLine.FindStringSubmatch(line); sm != nil {
					clause.SubClauses = append(clause.SubClauses, SubClause{Letter: sm[1], Content: sm[2]})
					continue
				}
				clause.Content += "\n" + line
			}
			doc.Operative = append(doc.Operative, clause)
			continue
		}

		doc.Preamble = append(doc.Preamble, PreambleClause{
			Content: strings.TrimSuffix(strings.TrimSpace(block), ","),
			Order:   len(doc.Preamble) + 1,
		})
	}

	return doc
}
