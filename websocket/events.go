package websocket

import (
	"encoding/json"
	"time"

	"munhub/internal/tally"
	"munhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is one realtime notification. It is encoded flat, with the type
// discriminator next to the body fields.
type Event struct {
	Type   string
	Fields map[string]any
}

func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["type"] = e.Type
	return json.Marshal(out)
}

func newEvent(typ string, kv ...any) Event {
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i].(string)] = kv[i+1]
	}
	return Event{Type: typ, Fields: fields}
}

// Event types sent to clients.
const (
	TypeConnected            = "connected"
	TypeError                = "error"
	TypePong                 = "pong"
	TypeSessionCreated       = "session_created"
	TypeSessionUpdated       = "session_updated"
	TypeSessionCompleted     = "session_completed"
	TypeModeChanged          = "mode_changed"
	TypeRollCallUpdated      = "roll_call_updated"
	TypeTimerStarted         = "timer_started"
	TypeTimerEnded           = "timer_ended"
	TypeTimerCreated         = "timer_created"
	TypeTimerUpdated         = "timer_updated"
	TypeSpeakerAdded         = "speaker_added"
	TypeSpeakerRemoved       = "speaker_removed"
	TypeCurrentSpeaker       = "current_speaker"
	TypeSpeakerListUpdated   = "speaker_list_updated"
	TypeResolutionSubmitted  = "resolution_submitted"
	TypeResolutionReviewed   = "resolution_reviewed"
	TypeResolutionUpdated    = "resolution_updated"
	TypeWorkingDraftSelected = "working_draft_selected"
	TypeAmendmentSubmitted   = "amendment_submitted"
	TypeAmendmentReviewed    = "amendment_reviewed"
	TypeVotingStarted        = "voting_started"
	TypeVoteSubmitted        = "vote_submitted"
	TypeVotingResults        = "voting_results"
	TypeMotionProposed       = "motion_proposed"
	TypeMotionSeconded       = "motion_seconded"
	TypeMotionStatusUpdated  = "motion_status_updated"
	TypeNewMessage           = "new_message"
)

func Connected(p models.Principal) Event {
	return newEvent(TypeConnected,
		"message", "Connected to committee WebSocket",
		"user", map[string]any{
			"username":    p.Username,
			"role":        p.Role,
			"countryName": p.CountryName,
		},
	)
}

func ErrorEvent(message string) Event {
	return newEvent(TypeError, "message", message)
}

func Pong() Event {
	return newEvent(TypePong)
}

func SessionCreated(s *models.Session) Event {
	return newEvent(TypeSessionCreated, "session", s)
}

func SessionUpdated(s *models.Session) Event {
	return newEvent(TypeSessionUpdated, "session", s)
}

func SessionCompleted(s *models.Session) Event {
	return newEvent(TypeSessionCompleted, "session", s)
}

// ModeChanged announces a new debate mode; duration is in seconds, zero when
// the mode has no time limit.
func ModeChanged(mode models.SessionMode, duration int) Event {
	return newEvent(TypeModeChanged, "mode", mode, "duration", duration)
}

func RollCallUpdated(present []string, quorum bool) Event {
	return newEvent(TypeRollCallUpdated, "presentCountries", present, "quorum", quorum)
}

func TimerStarted(kind models.TimerKind, duration int, targetCountry string, at time.Time) Event {
	e := newEvent(TypeTimerStarted, "timerType", kind, "duration", duration, "startTime", at)
	if targetCountry != "" {
		e.Fields["targetCountry"] = targetCountry
	}
	return e
}

func TimerEnded(kind models.TimerKind, targetCountry string) Event {
	e := newEvent(TypeTimerEnded, "timerType", kind)
	if targetCountry != "" {
		e.Fields["targetCountry"] = targetCountry
	}
	return e
}

func TimerCreated(t *models.Timer) Event {
	return newEvent(TypeTimerCreated, "timer", t)
}

func TimerUpdated(t *models.Timer) Event {
	return newEvent(TypeTimerUpdated, "timer", t)
}

// SpeakerAdded carries the 1-based queue position.
func SpeakerAdded(country string, position int) Event {
	return newEvent(TypeSpeakerAdded, "countryName", country, "position", position)
}

func SpeakerRemoved(country string) Event {
	return newEvent(TypeSpeakerRemoved, "countryName", country)
}

func CurrentSpeaker(country string, duration int) Event {
	return newEvent(TypeCurrentSpeaker, "countryName", country, "duration", duration)
}

func SpeakerListUpdated(l *models.SpeakerList) Event {
	return newEvent(TypeSpeakerListUpdated, "speakerList", l)
}

func ResolutionSubmitted(r *models.Resolution) Event {
	return newEvent(TypeResolutionSubmitted, "resolution", r)
}

func ResolutionReviewed(r *models.Resolution) Event {
	return newEvent(TypeResolutionReviewed, "resolution", r)
}

func ResolutionUpdated(r *models.Resolution) Event {
	return newEvent(TypeResolutionUpdated, "resolution", r)
}

func WorkingDraftSelected(r *models.Resolution) Event {
	return newEvent(TypeWorkingDraftSelected, "resolution", r)
}

func AmendmentSubmitted(a *models.Amendment) Event {
	return newEvent(TypeAmendmentSubmitted, "amendment", a)
}

func AmendmentReviewed(a *models.Amendment) Event {
	return newEvent(TypeAmendmentReviewed, "amendment", a)
}

func VotingStarted(v *models.Voting) Event {
	return newEvent(TypeVotingStarted, "voting", v)
}

func VoteSubmitted(country string, votingID primitive.ObjectID) Event {
	return newEvent(TypeVoteSubmitted, "countryName", country, "votingId", votingID)
}

func VotingResults(v *models.Voting, stats tally.Stats) Event {
	return newEvent(TypeVotingResults, "voting", v, "stats", stats)
}

func MotionProposed(m *models.Motion) Event {
	return newEvent(TypeMotionProposed, "motion", m)
}

func MotionSeconded(m *models.Motion) Event {
	return newEvent(TypeMotionSeconded, "motion", m)
}

func MotionStatusUpdated(m *models.Motion) Event {
	return newEvent(TypeMotionStatusUpdated, "motion", m)
}

func NewMessage(m *models.Message) Event {
	return newEvent(TypeNewMessage, "message", m)
}
