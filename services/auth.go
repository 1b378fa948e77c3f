package services

import (
	"context"
	"errors"
	"strings"

	"munhub/internal/ratelimit"
	"munhub/models"
	"munhub/store"
	"munhub/utils"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

type AuthOptions struct {
	Tokens  *utils.TokenManager
	Limiter ratelimit.Limiter
}

type AuthService struct {
	*base
	tokens  *utils.TokenManager
	limiter ratelimit.Limiter
}

func newAuthService(b *base, opts AuthOptions) *AuthService {
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewMemoryLimiter(ratelimit.DefaultConfig())
	}
	return &AuthService{base: b, tokens: opts.Tokens, limiter: opts.Limiter}
}

// Session is a successful login.
type Session struct {
	Token     string           `json:"token"`
	Principal models.Principal `json:"user"`
}

// Login checks an admin or presidium password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.Store.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		s.Logger.Info("rejected password login", zap.String("username", u.Username))
		return nil, ErrInvalidCredentials
	}
	return s.issue(u.Principal())
}

// DelegateLogin exchanges a country's secret token for a delegate session.
// Attempts are limited per clientKey, usually the client IP.
func (s *AuthService) DelegateLogin(ctx context.Context, secret, clientKey string) (*Session, error) {
	allowed, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		// fail open: a limiter outage must not lock delegates out
		s.Logger.Warn("login rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return nil, ErrTooManyAttempts
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrInvalidCredentials
	}
	c, err := s.Store.Committees.GetByToken(ctx, secret)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	country, ok := c.CountryByToken(secret)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(models.Principal{
		ID:          c.ID.Hex() + ":" + country.Name,
		Username:    country.Name,
		Role:        models.RoleDelegate,
		CommitteeID: c.ID,
		CountryName: country.Name,
	})
}

func (s *AuthService) issue(p models.Principal) (*Session, error) {
	token, err := s.tokens.Generate(p)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Principal: p}, nil
}

// Verify parses a bearer token.
func (s *AuthService) Verify(token string) (models.Principal, error) {
	return s.tokens.Parse(token)
}
