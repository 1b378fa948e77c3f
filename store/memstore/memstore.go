package memstore

import (
	"context"
	"sort"
	"time"

	"munhub/models"
	"munhub/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns a Store backed by process memory.
func New() *store.Store {
	return &store.Store{
		Users:        &users{t: newTable(store.UserMeta, uniqueUsername)},
		Events:       &events{t: newTable(store.EventMeta)},
		Committees:   &committees{t: newTable(store.CommitteeMeta)},
		Sessions:     &sessions{t: newTable(store.SessionMeta, oneActiveSession)},
		Motions:      &motions{t: newTable(store.MotionMeta)},
		Votings:      &votings{t: newTable(store.VotingMeta, oneOpenVoting)},
		Resolutions:  &resolutions{t: newTable(store.ResolutionMeta, oneWorkingDraft)},
		Amendments:   &amendments{t: newTable(store.AmendmentMeta)},
		Activities:   &activities{t: newTable(store.ActivityMeta)},
		Messages:     &messages{t: newTable(store.MessageMeta)},
		SpeakerLists: &speakerLists{t: newTable(store.SpeakerListMeta, oneListPerSession)},
		Timers:       &timers{t: newTable(store.TimerMeta)},
	}
}

// newer orders by time, newest first; ids break ties since several writes can
// share a millisecond.
func newer(ta, tb time.Time, ia, ib primitive.ObjectID) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return ia.Hex() > ib.Hex()
}

func uniqueUsername(u *models.User) (string, bool) {
	return u.Username, true
}

func oneActiveSession(s *models.Session) (string, bool) {
	return s.CommitteeID.Hex(), s.Status == models.SessionActive
}

func oneOpenVoting(v *models.Voting) (string, bool) {
	return v.CommitteeID.Hex(), v.Result == nil
}

func oneWorkingDraft(r *models.Resolution) (string, bool) {
	return r.CommitteeID.Hex(), r.IsWorkingDraft
}

func oneListPerSession(l *models.SpeakerList) (string, bool) {
	return l.SessionID.Hex(), true
}

type users struct{ t *table[models.User] }

func (s *users) Get(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.t.get(id)
}

func (s *users) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return s.t.findOne(func(u *models.User) bool { return u.Username == username })
}

func (s *users) Insert(_ context.Context, u *models.User) error  { return s.t.insert(u) }
func (s *users) Replace(_ context.Context, u *models.User) error { return s.t.replace(u) }

type events struct{ t *table[models.Event] }

func (s *events) List(_ context.Context) ([]models.Event, error) {
	out, err := s.t.find(nil)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, err
}

func (s *events) Get(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.t.get(id)
}

func (s *events) Insert(_ context.Context, e *models.Event) error       { return s.t.insert(e) }
func (s *events) Replace(_ context.Context, e *models.Event) error      { return s.t.replace(e) }
func (s *events) Delete(_ context.Context, id primitive.ObjectID) error { return s.t.delete(id) }

type committees struct{ t *table[models.Committee] }

func (s *committees) List(_ context.Context, eventID *primitive.ObjectID) ([]models.Committee, error) {
	out, err := s.t.find(func(c *models.Committee) bool {
		return eventID == nil || c.EventID == *eventID
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (s *committees) Get(_ context.Context, id primitive.ObjectID) (*models.Committee, error) {
	return s.t.get(id)
}

func (s *committees) GetByToken(_ context.Context, token string) (*models.Committee, error) {
	return s.t.findOne(func(c *models.Committee) bool {
		_, ok := c.CountryByToken(token)
		return ok
	})
}

func (s *committees) Insert(_ context.Context, c *models.Committee) error   { return s.t.insert(c) }
func (s *committees) Replace(_ context.Context, c *models.Committee) error  { return s.t.replace(c) }
func (s *committees) Delete(_ context.Context, id primitive.ObjectID) error { return s.t.delete(id) }

type sessions struct{ t *table[models.Session] }

func (s *sessions) ListByCommittee(_ context.Context, committeeID primitive.ObjectID) ([]models.Session, error) {
	out, err := s.t.find(func(v *models.Session) bool { return v.CommitteeID == committeeID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, err
}

func (s *sessions) CountByCommittee(_ context.Context, committeeID primitive.ObjectID) (int, error) {
	return s.t.count(func(v *models.Session) bool { return v.CommitteeID == committeeID })
}

func (s *sessions) Get(_ context.Context, id primitive.ObjectID) (*models.Session, error) {
	return s.t.get(id)
}

func (s *sessions) Active(_ context.Context, committeeID primitive.ObjectID) (*models.Session, error) {
	return s.t.findOne(func(v *models.Session) bool {
		return v.CommitteeID == committeeID && v.Status == models.SessionActive
	})
}

func (s *sessions) Insert(_ context.Context, v *models.Session) error  { return s.t.insert(v) }
func (s *sessions) Replace(_ context.Context, v *models.Session) error { return s.t.replace(v) }

type motions struct{ t *table[models.Motion] }

func (s *motions) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]models.Motion, error) {
	out, err := s.t.find(func(m *models.Motion) bool { return m.SessionID == sessionID })
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, err
}

func (s *motions) ListPending(_ context.Context, sessionID primitive.ObjectID) ([]models.Motion, error) {
	out, err := s.t.find(func(m *models.Motion) bool {
		return m.SessionID == sessionID && m.Status == models.MotionPending
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return newer(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return out, err
}

func (s *motions) Get(_ context.Context, id primitive.ObjectID) (*models.Motion, error) {
	return s.t.get(id)
}

func (s *motions) Insert(_ context.Context, m *models.Motion) error  { return s.t.insert(m) }
func (s *motions) Replace(_ context.Context, m *models.Motion) error { return s.t.replace(m) }

type votings struct{ t *table[models.Voting] }

func newestVotingFirst(out []models.Voting) {
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
}

func (s *votings) ListByCommittee(_ context.Context, committeeID primitive.ObjectID) ([]models.Voting, error) {
	out, err := s.t.find(func(v *models.Voting) bool { return v.CommitteeID == committeeID })
	newestVotingFirst(out)
	return out, err
}

func (s *votings) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]models.Voting, error) {
	out, err := s.t.find(func(v *models.Voting) bool { return v.SessionID == sessionID })
	newestVotingFirst(out)
	return out, err
}

func (s *votings) Get(_ context.Context, id primitive.ObjectID) (*models.Voting, error) {
	return s.t.get(id)
}

func (s *votings) Open(_ context.Context, committeeID primitive.ObjectID) (*models.Voting, error) {
	return s.t.findOne(func(v *models.Voting) bool { return v.CommitteeID == committeeID && v.IsOpen() })
}

func (s *votings) Insert(_ context.Context, v *models.Voting) error  { return s.t.insert(v) }
func (s *votings) Replace(_ context.Context, v *models.Voting) error { return s.t.replace(v) }

type resolutions struct{ t *table[models.Resolution] }

func newestSubmissionFirst(out []models.Resolution) {
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].SubmissionTime, out[j].SubmissionTime, out[i].ID, out[j].ID) })
}

func (s *resolutions) ListByCommittee(_ context.Context, committeeID primitive.ObjectID) ([]models.Resolution, error) {
	out, err := s.t.find(func(r *models.Resolution) bool { return r.CommitteeID == committeeID })
	newestSubmissionFirst(out)
	return out, err
}

func (s *resolutions) ListByAuthor(_ context.Context, committeeID primitive.ObjectID, country string) ([]models.Resolution, error) {
	out, err := s.t.find(func(r *models.Resolution) bool {
		return r.CommitteeID == committeeID && (r.HasAuthor(country) || r.IsPendingCoAuthor(country))
	})
	newestSubmissionFirst(out)
	return out, err
}

func (s *resolutions) Get(_ context.Context, id primitive.ObjectID) (*models.Resolution, error) {
	return s.t.get(id)
}

func (s *resolutions) WorkingDraft(_ context.Context, committeeID primitive.ObjectID) (*models.Resolution, error) {
	return s.t.findOne(func(r *models.Resolution) bool { return r.CommitteeID == committeeID && r.IsWorkingDraft })
}

func (s *resolutions) Insert(_ context.Context, r *models.Resolution) error {
	r.SyncContent()
	return s.t.insert(r)
}

func (s *resolutions) Replace(_ context.Context, r *models.Resolution) error {
	r.SyncContent()
	return s.t.replace(r)
}

func (s *resolutions) ClearWorkingDraft(_ context.Context, committeeID primitive.ObjectID) error {
	return s.t.updateAll(
		func(r *models.Resolution) bool { return r.CommitteeID == committeeID && r.IsWorkingDraft },
		func(r *models.Resolution) { r.ClearWorkingDraft() },
	)
}

type amendments struct{ t *table[models.Amendment] }

// ListByResolution orders by part, action and position.
func (s *amendments) ListByResolution(_ context.Context, resolutionID primitive.ObjectID) ([]models.Amendment, error) {
	out, err := s.t.find(func(a *models.Amendment) bool { return a.ResolutionID == resolutionID })
	pos := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Part != b.Part {
			return a.Part < b.Part
		}
		if a.Action != b.Action {
			return a.Action < b.Action
		}
		if pos(a.PointNumber) != pos(b.PointNumber) {
			return pos(a.PointNumber) < pos(b.PointNumber)
		}
		return pos(a.NewPointAfter) < pos(b.NewPointAfter)
	})
	return out, err
}

func (s *amendments) ListByCommittee(_ context.Context, committeeID primitive.ObjectID) ([]models.Amendment, error) {
	out, err := s.t.find(func(a *models.Amendment) bool { return a.CommitteeID == committeeID })
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, err
}

func (s *amendments) Get(_ context.Context, id primitive.ObjectID) (*models.Amendment, error) {
	return s.t.get(id)
}

func (s *amendments) Insert(_ context.Context, a *models.Amendment) error  { return s.t.insert(a) }
func (s *amendments) Replace(_ context.Context, a *models.Amendment) error { return s.t.replace(a) }

type activities struct{ t *table[models.Activity] }

func (s *activities) Insert(_ context.Context, a *models.Activity) error { return s.t.insert(a) }

func (s *activities) ListByCountry(_ context.Context, committeeID primitive.ObjectID, country string) ([]models.Activity, error) {
	out, err := s.t.find(func(a *models.Activity) bool {
		return a.CommitteeID == committeeID && a.CountryName == country
	})
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].Timestamp, out[j].Timestamp, out[i].ID, out[j].ID) })
	return out, err
}

func (s *activities) CountryStats(_ context.Context, committeeID primitive.ObjectID) ([]models.CountryStats, error) {
	rows, err := s.t.find(func(a *models.Activity) bool { return a.CommitteeID == committeeID })
	if err != nil {
		return nil, err
	}
	byCountry := make(map[string]*models.CountryStats)
	for _, a := range rows {
		st, ok := byCountry[a.CountryName]
		if !ok {
			st = &models.CountryStats{Country: a.CountryName}
			byCountry[a.CountryName] = st
		}
		st.Add(a)
	}
	out := make([]models.CountryStats, 0, len(byCountry))
	for _, st := range byCountry {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalActivities != out[j].TotalActivities {
			return out[i].TotalActivities > out[j].TotalActivities
		}
		return out[i].Country < out[j].Country
	})
	return out, nil
}

func (s *activities) Breakdown(_ context.Context, committeeID primitive.ObjectID) ([]models.ActivityCount, error) {
	rows, err := s.t.find(func(a *models.Activity) bool { return a.CommitteeID == committeeID })
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ActivityKind]int)
	for _, a := range rows {
		counts[a.Kind]++
	}
	out := make([]models.ActivityCount, 0, len(counts))
	for kind, n := range counts {
		out = append(out, models.ActivityCount{Kind: kind, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

type messages struct{ t *table[models.Message] }

func newestMessageFirst(out []models.Message) {
	sort.SliceStable(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
}

func (s *messages) Inbox(_ context.Context, committeeID primitive.ObjectID, country string) ([]models.Message, error) {
	out, err := s.t.find(func(m *models.Message) bool { return m.CommitteeID == committeeID && m.DeliveredTo(country) })
	newestMessageFirst(out)
	return out, err
}

func (s *messages) Sent(_ context.Context, committeeID primitive.ObjectID, country string) ([]models.Message, error) {
	out, err := s.t.find(func(m *models.Message) bool {
		return m.CommitteeID == committeeID && m.SenderCountry == country
	})
	newestMessageFirst(out)
	return out, err
}

func (s *messages) FromPresidium(_ context.Context, committeeID primitive.ObjectID) ([]models.Message, error) {
	out, err := s.t.find(func(m *models.Message) bool { return m.CommitteeID == committeeID && m.IsFromPresidium })
	newestMessageFirst(out)
	return out, err
}

func (s *messages) UnreadCount(_ context.Context, committeeID primitive.ObjectID, country string) (int, error) {
	return s.t.count(func(m *models.Message) bool {
		return m.CommitteeID == committeeID && m.DeliveredTo(country) && !m.IsRead
	})
}

func (s *messages) Get(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	return s.t.get(id)
}

func (s *messages) Insert(_ context.Context, m *models.Message) error  { return s.t.insert(m) }
func (s *messages) Replace(_ context.Context, m *models.Message) error { return s.t.replace(m) }

type speakerLists struct{ t *table[models.SpeakerList] }

func (s *speakerLists) BySession(_ context.Context, sessionID primitive.ObjectID) (*models.SpeakerList, error) {
	return s.t.findOne(func(l *models.SpeakerList) bool { return l.SessionID == sessionID })
}

func (s *speakerLists) Insert(_ context.Context, l *models.SpeakerList) error  { return s.t.insert(l) }
func (s *speakerLists) Replace(_ context.Context, l *models.SpeakerList) error { return s.t.replace(l) }

type timers struct{ t *table[models.Timer] }

func (s *timers) ListBySession(_ context.Context, sessionID primitive.ObjectID) ([]models.Timer, error) {
	out, err := s.t.find(func(t *models.Timer) bool { return t.SessionID == sessionID })
	sort.SliceStable(out, func(i, j int) bool { return newer(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID) })
	return out, err
}

func (s *timers) Get(_ context.Context, id primitive.ObjectID) (*models.Timer, error) {
	return s.t.get(id)
}

func (s *timers) Insert(_ context.Context, t *models.Timer) error  { return s.t.insert(t) }
func (s *timers) Replace(_ context.Context, t *models.Timer) error { return s.t.replace(t) }
