package models

import (
	"strings"
	"time"

	"munhub/internal/apperr"
	"munhub/internal/document"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResolutionStatus string

const (
	ResolutionPendingCoAuthors ResolutionStatus = "pending_coauthors"
	ResolutionDraft            ResolutionStatus = "draft"
	ResolutionReviewed         ResolutionStatus = "reviewed" // legacy, nothing moves here
	ResolutionAccepted         ResolutionStatus = "accepted"
	ResolutionRejected         ResolutionStatus = "rejected"
	ResolutionWorking          ResolutionStatus = "working"
)

var resolutionTransitions = transitions[ResolutionStatus]{
	ResolutionPendingCoAuthors: {ResolutionDraft},
	ResolutionDraft:            {ResolutionAccepted, ResolutionRejected},
	ResolutionAccepted:         {ResolutionWorking},
}

type Resolution struct {
	ID               primitive.ObjectID         `bson:"_id,omitempty" json:"id"`
	CommitteeID      primitive.ObjectID         `bson:"committeeId" json:"committeeId"`
	Title            string                     `bson:"title" json:"title"`
	Authors          []string                   `bson:"authors" json:"authors"`
	PendingCoAuthors []string                   `bson:"pendingCoAuthors" json:"pendingCoAuthors"`
	Status           ResolutionStatus           `bson:"status" json:"status"`
	SubmissionTime   time.Time                  `bson:"submissionTime" json:"submissionTime"`
	ReviewTime       *time.Time                 `bson:"reviewTime,omitempty" json:"reviewTime,omitempty"`
	ReviewComments   string                     `bson:"reviewComments,omitempty" json:"reviewComments,omitempty"`
	IsWorkingDraft   bool                       `bson:"isWorkingDraft" json:"isWorkingDraft"`
	PreambleClauses  []document.PreambleClause  `bson:"preambleClauses" json:"preambleClauses"`
	OperativeClauses []document.OperativeClause `bson:"operativeClauses" json:"operativeClauses"`
	Content          string                     `bson:"content" json:"content"`
	CreatedAt        time.Time                  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time                  `bson:"updatedAt" json:"updatedAt"`
}

// NewResolution builds a submitted resolution. The creator must be one of the
// authors; every other author has to confirm before the resolution becomes a
// draft.
func NewResolution(committeeID primitive.ObjectID, title, creator string, authors []string,
	doc document.Document, minAuthors int, now time.Time) (*Resolution, error) {

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("Title is required")
	}

	authors = uniqueNames(authors)
	if !containsName(authors, creator) {
		return nil, apperr.Validation("Your country must be one of the authors")
	}
	if len(authors) < minAuthors {
		return nil, apperr.Validation("Resolution requires at least %d authors", minAuthors).
			With("minRequired", minAuthors)
	}

	pending := make([]string, 0, len(authors)-1)
	for _, a := range authors {
		if a != creator {
			pending = append(pending, a)
		}
	}

	status := ResolutionDraft
	if len(pending) > 0 {
		status = ResolutionPendingCoAuthors
	}

	doc.Normalize()
	r := &Resolution{
		CommitteeID:      committeeID,
		Title:            title,
		Authors:          authors,
		PendingCoAuthors: pending,
		Status:           status,
		SubmissionTime:   now,
		PreambleClauses:  doc.Preamble,
		OperativeClauses: doc.Operative,
	}
	r.SyncContent()
	return r, nil
}

// Document returns a copy of the clause lists.
func (r *Resolution) Document() document.Document {
	d := document.Document{
		Preamble:  append([]document.PreambleClause{}, r.PreambleClauses...),
		Operative: make([]document.OperativeClause, len(r.OperativeClauses)),
	}
	for i, c := range r.OperativeClauses {
		c.SubClauses = append([]document.SubClause{}, c.SubClauses...)
		d.Operative[i] = c
	}
	return d
}

// SetDocument replaces the clauses and regenerates the flat text.
func (r *Resolution) SetDocument(d document.Document) {
	r.PreambleClauses = d.Preamble
	r.OperativeClauses = d.Operative
	r.SyncContent()
}

// SyncContent regenerates the flat text from the clauses.
func (r *Resolution) SyncContent() {
	r.Content = document.Render(r.PreambleClauses, r.OperativeClauses)
}

func (r *Resolution) HasAuthor(country string) bool {
	return containsName(r.Authors, country)
}

func (r *Resolution) IsPendingCoAuthor(country string) bool {
	return containsName(r.PendingCoAuthors, country)
}

// ConfirmCoAuthor removes country from the pending list. Once nobody is
// pending the resolution becomes a draft. Confirming twice is a no-op.
func (r *Resolution) ConfirmCoAuthor(country string) error {
	if !r.IsPendingCoAuthor(country) {
		return nil
	}
	r.PendingCoAuthors = removeName(r.PendingCoAuthors, country)
	return r.promoteIfConfirmed()
}

// DeclineCoAuthor drops country from both the pending list and the authors.
func (r *Resolution) DeclineCoAuthor(country string) error {
	if !r.IsPendingCoAuthor(country) {
		return apperr.Validation("%s is not a pending co-author", country)
	}
	r.PendingCoAuthors = removeName(r.PendingCoAuthors, country)
	r.Authors = removeName(r.Authors, country)
	return r.promoteIfConfirmed()
}

func (r *Resolution) promoteIfConfirmed() error {
	if len(r.PendingCoAuthors) > 0 || r.Status != ResolutionPendingCoAuthors {
		return nil
	}
	return r.setStatus(ResolutionDraft)
}

// Review accepts or rejects a draft. Acceptance rechecks the author count.
func (r *Resolution) Review(outcome ResolutionStatus, comments string, minAuthors int, now time.Time) error {
	if outcome != ResolutionAccepted && outcome != ResolutionRejected {
		return apperr.Validation("Review outcome must be accepted or rejected")
	}
	if r.Status != ResolutionDraft {
		return apperr.InvalidState("Only draft resolutions can be reviewed")
	}
	if outcome == ResolutionAccepted && len(r.Authors) < minAuthors {
		return apperr.Validation("Resolution requires at least %d authors", minAuthors).
			With("minRequired", minAuthors)
	}
	if err := r.setStatus(outcome); err != nil {
		return err
	}
	r.ReviewComments = comments
	r.ReviewTime = &now
	return nil
}

// MarkWorkingDraft makes an accepted resolution the committee's working draft.
// Callers clear the flag on every other resolution first.
func (r *Resolution) MarkWorkingDraft() error {
	if r.Status != ResolutionAccepted {
		return apperr.InvalidState("Only accepted resolutions can become the working draft")
	}
	if err := r.setStatus(ResolutionWorking); err != nil {
		return err
	}
	r.IsWorkingDraft = true
	return nil
}

// ClearWorkingDraft drops the flag and leaves the status alone.
func (r *Resolution) ClearWorkingDraft() {
	r.IsWorkingDraft = false
}

// VisibleTo reports whether p may see the resolution in committee listings.
// Staff do not see resolutions still waiting on co-authors.
func (r *Resolution) VisibleTo(p Principal) bool {
	if p.Role == RoleDelegate {
		return true
	}
	return r.Status != ResolutionPendingCoAuthors
}

func (r *Resolution) setStatus(to ResolutionStatus) error {
	if err := resolutionTransitions.check("resolution", r.Status, to); err != nil {
		return err
	}
	r.Status = to
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// uniqueNames trims names, drops blanks and keeps the first occurrence.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
