package services

import (
	"context"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/models"
	"munhub/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxMessageLength bounds a diplomatic note, in bytes after sanitizing.
const maxMessageLength = 4000

type MessageService struct {
	*base
}

func newMessageService(b *base) *MessageService {
	return &MessageService{base: b}
}

type SendMessageInput struct {
	CommitteeID      primitive.ObjectID
	RecipientCountry string
	IsCommitteeWide  bool
	Content          string
}

// Send delivers a note. Delegates write to one country; staff may also
// write to the whole committee.
func (s *MessageService) Send(ctx context.Context, p models.Principal, in SendMessageInput) (*models.Message, error) {
	act := authz.Send
	if in.IsCommitteeWide {
		act = authz.Broadcast
	}
	c, err := s.authorize(ctx, p, in.CommitteeID, authz.Message, act)
	if err != nil {
		return nil, err
	}

	content := cleanText(in.Content)
	if content == "" {
		return nil, apperr.Validation("Message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, apperr.Validation("Message is too long")
	}

	m := &models.Message{
		CommitteeID:     c.ID,
		IsCommitteeWide: in.IsCommitteeWide,
		IsFromPresidium: p.IsStaff(),
		Content:         content,
	}
	if p.IsStaff() {
		m.SenderCountry = models.PresidiumProposer
	} else {
		m.SenderCountry = p.CountryName
	}
	if !in.IsCommitteeWide {
		if !c.HasCountry(in.RecipientCountry) {
			return nil, apperr.Validation("Recipient country not found in committee")
		}
		if in.RecipientCountry == m.SenderCountry {
			return nil, apperr.Validation("You cannot send a message to yourself")
		}
		m.RecipientCountry = in.RecipientCountry
	}
	if err := s.Store.Messages.Insert(ctx, m); err != nil {
		return nil, err
	}

	if m.IsCommitteeWide {
		s.Notify.Broadcast(c.ID, websocket.NewMessage(m))
	} else {
		s.Notify.SendToCountry(c.ID, m.RecipientCountry, websocket.NewMessage(m))
	}
	return m, nil
}

// Inbox returns the delegate's received notes. Staff get the committee-wide
// notes, or one country's inbox when country is set.
func (s *MessageService) Inbox(ctx context.Context, p models.Principal, committeeID primitive.ObjectID, country string) ([]models.Message, error) {
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	if p.Role == models.RoleDelegate {
		return s.Store.Messages.Inbox(ctx, c.ID, p.CountryName)
	}
	if country == "" {
		return s.Store.Messages.FromPresidium(ctx, c.ID)
	}
	return s.Store.Messages.Inbox(ctx, c.ID, country)
}

func (s *MessageService) Sent(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) ([]models.Message, error) {
	if p.Role != models.RoleDelegate {
		return nil, apperr.Forbidden("Only delegates can access sent messages")
	}
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return nil, err
	}
	return s.Store.Messages.Sent(ctx, c.ID, p.CountryName)
}

func (s *MessageService) UnreadCount(ctx context.Context, p models.Principal, committeeID primitive.ObjectID) (int, error) {
	if p.Role != models.RoleDelegate {
		return 0, apperr.Forbidden("Only delegates can check unread count")
	}
	c, err := s.member(ctx, p, committeeID)
	if err != nil {
		return 0, err
	}
	return s.Store.Messages.UnreadCount(ctx, c.ID, p.CountryName)
}

// MarkRead flags a note as read. Delegates may only mark notes delivered to them.
func (s *MessageService) MarkRead(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Message, error) {
	m, err := s.Store.Messages.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Message")
	}
	if !p.BelongsTo(m.CommitteeID) {
		return nil, apperr.Forbidden("You are not assigned to this committee")
	}
	if p.Role == models.RoleDelegate && !m.DeliveredTo(p.CountryName) {
		return nil, apperr.Forbidden("You can only mark your own messages as read")
	}
	if m.IsRead {
		return m, nil
	}
	m.IsRead = true
	if err := s.Store.Messages.Replace(ctx, m); err != nil {
		return nil, storeErr(err, "Message")
	}
	return m, nil
}
