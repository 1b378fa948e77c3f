package services

import (
	"context"
	"fmt"

	"munhub/internal/apperr"
	"munhub/internal/authz"
	"munhub/models"
	"munhub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CommitteeService struct {
	*base
}

type CountryInput struct {
	Name              string
	IsPermanentMember bool
	HasVetoRight      bool
}

type CommitteeInput struct {
	EventID              primitive.ObjectID
	Name                 string
	Type                 models.CommitteeType
	Status               models.CommitteeStatus
	MinResolutionAuthors int
	Countries            []CountryInput
}

func (in *CommitteeInput) validate() error {
	in.Name = cleanText(in.Name)
	if in.Name == "" {
		return apperr.Validation("Committee name is required")
	}
	if in.Type == "" {
		in.Type = models.CommitteeGeneralAssembly
	}
	if !in.Type.Valid() {
		return apperr.Validation("Unknown committee type %q", in.Type)
	}
	if in.Status == "" {
		in.Status = models.CommitteeSetup
	}
	if !in.Status.Valid() {
		return apperr.Validation("Unknown committee status %q", in.Status)
	}
	if in.MinResolutionAuthors == 0 {
		in.MinResolutionAuthors = models.DefaultMinResolutionAuthors
	}
	if in.MinResolutionAuthors < 1 {
		return apperr.Validation("Minimum resolution authors must be positive")
	}
	return nil
}

// newTokenFor returns a secret token not used by any seat of c.
func newTokenFor(c *models.Committee) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		token, err := utils.GenerateSecretToken()
		if err != nil {
			return "", err
		}
		if _, taken := c.CountryByToken(token); !taken {
			return token, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique country token")
}

func (s *CommitteeService) addCountry(c *models.Committee, in CountryInput) error {
	name := cleanText(in.Name)
	if name == "" {
		return apperr.Validation("Country name is required")
	}
	if c.HasCountry(name) {
		return apperr.Conflict("Country %q is already part of this committee", name)
	}
	token, err := newTokenFor(c)
	if err != nil {
		return err
	}
	c.Countries = append(c.Countries, models.Country{
		Name:              name,
		IsPermanentMember: in.IsPermanentMember,
		HasVetoRight:      in.HasVetoRight,
		SecretToken:       token,
	})
	return nil
}

// view hides country tokens from callers that do not manage the committee.
func (s *CommitteeService) view(p models.Principal, c *models.Committee) *models.Committee {
	if s.Authz.Allowed(p.Role, authz.Committee, authz.Export) && p.BelongsTo(c.ID) {
		return c
	}
	stripped := c.WithoutTokens()
	return &stripped
}

// Create adds a committee to an existing event and issues every country a
// fresh secret token.
func (s *CommitteeService) Create(ctx context.Context, p models.Principal, in CommitteeInput) (*models.Committee, error) {
	if err := s.Authz.Require(p, authz.Committee, authz.Create); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.Store.Events.Get(ctx, in.EventID); err != nil {
		return nil, storeErr(err, "Event")
	}

	c := &models.Committee{
		EventID:              in.EventID,
		Name:                 in.Name,
		Type:                 in.Type,
		Status:               in.Status,
		MinResolutionAuthors: in.MinResolutionAuthors,
		Countries:            []models.Country{},
	}
	for _, country := range in.Countries {
		if err := s.addCountry(c, country); err != nil {
			return nil, err
		}
	}
	if err := s.Store.Committees.Insert(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Info("committee created",
		zap.String("committeeId", c.ID.Hex()),
		zap.String("name", c.Name),
		zap.Int("countries", len(c.Countries)),
	)
	return c, nil
}

func (s *CommitteeService) List(ctx context.Context, p models.Principal, eventID *primitive.ObjectID) ([]models.Committee, error) {
	all, err := s.Store.Committees.List(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i] = *s.view(p, &all[i])
	}
	return all, nil
}

func (s *CommitteeService) Get(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Committee, error) {
	c, err := s.committee(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(p, c), nil
}

// Status returns the public summary of a committee.
func (s *CommitteeService) Status(ctx context.Context, id primitive.ObjectID) (models.CommitteeStatusView, error) {
	c, err := s.committee(ctx, id)
	if err != nil {
		return models.CommitteeStatusView{}, err
	}
	return c.StatusView(), nil
}

// QRData lists what an external renderer needs to print login codes.
func (s *CommitteeService) QRData(ctx context.Context, p models.Principal, id primitive.ObjectID) ([]models.QRCodeData, error) {
	c, err := s.authorize(ctx, p, id, authz.Committee, authz.Export)
	if err != nil {
		return nil, err
	}
	out := make([]models.QRCodeData, 0, len(c.Countries))
	for _, country := range c.Countries {
		out = append(out, models.QRCodeData{
			Name:          country.Name,
			Token:         country.SecretToken,
			CommitteeID:   c.ID,
			CommitteeName: c.Name,
		})
	}
	return out, nil
}

// mutate applies fn to the committee under its lock and persists it.
func (s *CommitteeService) mutate(ctx context.Context, p models.Principal, id primitive.ObjectID, obj authz.Resource, act authz.Action, fn func(*models.Committee) error) (*models.Committee, error) {
	if _, err := s.authorize(ctx, p, id, obj, act); err != nil {
		return nil, err
	}
	unlock := s.lock("committee", id)
	defer unlock()

	c, err := s.committee(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.Store.Committees.Replace(ctx, c); err != nil {
		return nil, storeErr(err, "Committee")
	}
	return c, nil
}

// Update changes the committee's settings. Seats are managed separately.
func (s *CommitteeService) Update(ctx context.Context, p models.Principal, id primitive.ObjectID, in CommitteeInput) (*models.Committee, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, p, id, authz.Committee, authz.Update, func(c *models.Committee) error {
		c.Name = in.Name
		c.Type = in.Type
		c.Status = in.Status
		c.MinResolutionAuthors = in.MinResolutionAuthors
		return nil
	})
}

func (s *CommitteeService) Delete(ctx context.Context, p models.Principal, id primitive.ObjectID) error {
	if err := s.Authz.Require(p, authz.Committee, authz.Delete); err != nil {
		return err
	}
	return storeErr(s.Store.Committees.Delete(ctx, id), "Committee")
}

func (s *CommitteeService) AddCountry(ctx context.Context, p models.Principal, id primitive.ObjectID, in CountryInput) (*models.Committee, error) {
	return s.mutate(ctx, p, id, authz.Country, authz.Manage, func(c *models.Committee) error {
		return s.addCountry(c, in)
	})
}

// UpdateCountry changes a seat's membership flags. The token is kept.
func (s *CommitteeService) UpdateCountry(ctx context.Context, p models.Principal, id primitive.ObjectID, name string, in CountryInput) (*models.Committee, error) {
	return s.mutate(ctx, p, id, authz.Country, authz.Manage, func(c *models.Committee) error {
		for i := range c.Countries {
			if c.Countries[i].Name == name {
				c.Countries[i].IsPermanentMember = in.IsPermanentMember
				c.Countries[i].HasVetoRight = in.HasVetoRight
				return nil
			}
		}
		return apperr.NotFound("Country not found in this committee")
	})
}

func (s *CommitteeService) RemoveCountry(ctx context.Context, p models.Principal, id primitive.ObjectID, name string) (*models.Committee, error) {
	return s.mutate(ctx, p, id, authz.Country, authz.Manage, func(c *models.Committee) error {
		for i := range c.Countries {
			if c.Countries[i].Name == name {
				c.Countries = append(c.Countries[:i], c.Countries[i+1:]...)
				return nil
			}
		}
		return apperr.NotFound("Country not found in this committee")
	})
}

// RegenerateToken replaces a seat's secret token, invalidating old QR codes.
// Tokens already issued to logged-in delegates stay valid until they expire.
func (s *CommitteeService) RegenerateToken(ctx context.Context, p models.Principal, id primitive.ObjectID, name string) (*models.Committee, error) {
	return s.mutate(ctx, p, id, authz.Country, authz.Manage, func(c *models.Committee) error {
		for i := range c.Countries {
			if c.Countries[i].Name != name {
				continue
			}
			token, err := newTokenFor(c)
			if err != nil {
				return err
			}
			c.Countries[i].SecretToken = token
			return nil
		}
		return apperr.NotFound("Country not found in this committee")
	})
}

// AssignPresidium creates a presidium account bound to the committee.
func (s *CommitteeService) AssignPresidium(ctx context.Context, p models.Principal, id primitive.ObjectID, username, password string) (*models.User, error) {
	c, err := s.authorize(ctx, p, id, authz.User, authz.Create)
	if err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, apperr.Validation("Username and password are required")
	}
	created, err := utils.EnsureUser(ctx, s.Store.Users, username, password, models.RolePresidium, c.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperr.Conflict("Username already exists")
	}
	return s.Store.Users.GetByUsername(ctx, username)
}
