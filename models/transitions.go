package models

import "munhub/internal/apperr"

// transitions is an allow-list of status moves. Anything not listed is illegal.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// check returns an InvalidState error naming the rejected move.
func (t transitions[S]) check(entity string, from, to S) error {
	if t.allows(from, to) {
		return nil
	}
	return apperr.InvalidState("%s cannot move from %s to %s", entity, from, to)
}
