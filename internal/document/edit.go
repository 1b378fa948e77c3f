package document

import (
	"sort"
	"strings"

	"munhub/internal/apperr"
)

// Part selects the clause list an edit applies to.
type Part string

const (
	PartPreamble  Part = "preamble"
	PartOperative Part = "operative"
)

func (p Part) Valid() bool {
	return p == PartPreamble || p == PartOperative
}

type Action string

const (
	ActionDelete Action = "delete"
	ActionModify Action = "modify"
	ActionAdd    Action = "add"
)

func (a Action) Valid() bool {
	switch a {
	case ActionDelete, ActionModify, ActionAdd:
		return true
	}
	return false
}

// Edit is one structural change. Point addresses an existing clause for
// delete and modify; After is the clause a new one is inserted behind
// (0 inserts at the top).
type Edit struct {
	Part    Part
	Action  Action
	Point   int
	After   int
	Content string
}

// Check validates the shape of the edit without looking at a document.
func (e Edit) Check() error {
	if !e.Part.Valid() {
		return apperr.Validation("Unknown resolution part %q", e.Part)
	}
	switch e.Action {
	case ActionDelete:
		if e.Point < 1 {
			return apperr.Validation("A point number is required to delete a clause")
		}
	case ActionModify:
		if e.Point < 1 {
			return apperr.Validation("A point number is required to modify a clause")
		}
		if strings.TrimSpace(e.Content) == "" {
			return apperr.Validation("New content is required to modify a clause")
		}
	case ActionAdd:
		if e.After < 0 {
			return apperr.Validation("Insertion point must not be negative")
		}
		if strings.TrimSpace(e.Content) == "" {
			return apperr.Validation("New content is required to add a clause")
		}
	default:
		return apperr.Validation("Unknown amendment action %q", e.Action)
	}
	return nil
}

// Apply mutates the document. Numbering of the touched part stays contiguous
// and ascending: deletes shift later clauses down by one, adds shift them up.
func (d *Document) Apply(e Edit) error {
	if err := e.Check(); err != nil {
		return err
	}
	if e.Part == PartPreamble {
		return d.applyPreamble(e)
	}
	return d.applyOperative(e)
}

func (d *Document) applyPreamble(e Edit) error {
	idx := -1
	for i, clause := range d.Preamble {
		if clause.Order == e.Point {
			idx = i
			break
		}
	}

	switch e.Action {
	case ActionDelete:
		if idx < 0 {
			return apperr.Validation("Preamble clause %d does not exist", e.Point)
		}
		d.Preamble = append(d.Preamble[:idx], d.Preamble[idx+1:]...)
		for i := range d.Preamble {
			if d.Preamble[i].Order > e.Point {
				d.Preamble[i].Order--
			}
		}
	case ActionModify:
		if idx < 0 {
			return apperr.Validation("Preamble clause %d does not exist", e.Point)
		}
		d.Preamble[idx].Content = e.Content
	case ActionAdd:
		if e.After > len(d.Preamble) {
			return apperr.Validation("Preamble has no clause %d to insert after", e.After)
		}
		for i := range d.Preamble {
			if d.Preamble[i].Order > e.After {
				d.Preamble[i].Order++
			}
		}
		d.Preamble = append(d.Preamble, PreambleClause{Content: e.Content, Order: e.After + 1})
	}

	sort.SliceStable(d.Preamble, func(i, j int) bool {
		return d.Preamble[i].Order < d.Preamble[j].Order
	})
	return nil
}

func (d *Document) applyOperative(e Edit) error {
	idx := -1
	for i, clause := range d.Operative {
		if clause.Number == e.Point {
			idx = i
			break
		}
	}

	switch e.Action {
	case ActionDelete:
		if idx < 0 {
			return apperr.Validation("Operative clause %d does not exist", e.Point)
		}
		d.Operative = append(d.Operative[:idx], d.Operative[idx+1:]...)
		for i := range d.Operative {
			if d.Operative[i].Number > e.Point {
				d.Operative[i].Number--
			}
		}
	case ActionModify:
		if idx < 0 {
			return apperr.Validation("Operative clause %d does not exist", e.Point)
		}
		d.Operative[idx].Content = e.Content
	case ActionAdd:
		if e.After > len(d.Operative) {
			return apperr.Validation("Operative part has no clause %d to insert after", e.After)
		}
		for i := range d.Operative {
			if d.Operative[i].Number > e.After {
				d.Operative[i].Number++
			}
		}
		d.Operative = append(d.Operative, OperativeClause{
			Content:    e.Content,
			Number:     e.After + 1,
			SubClauses: []SubClause{},
		})
	}

	sort.SliceStable(d.Operative, func(i, j int) bool {
		return d.Operative[i].Number < d.Operative[j].Number
	})
	return nil
}
