package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"munhub/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Password Hashing Functions
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Claims is the JWT body. CommitteeID and CountryName are empty for admins.
type Claims struct {
	UserID      string      `json:"id"`
	Username    string      `json:"username,omitempty"`
	Role        models.Role `json:"role"`
	CommitteeID string      `json:"committeeId,omitempty"`
	CountryName string      `json:"countryName,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies principal tokens with an HMAC secret.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Generate issues a token carrying p.
func (m *TokenManager) Generate(p models.Principal) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:      p.ID,
		Username:    p.Username,
		Role:        p.Role,
		CountryName: p.CountryName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if !p.CommitteeID.IsZero() {
		claims.CommitteeID = p.CommitteeID.Hex()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and returns the principal it carries.
func (m *TokenManager) Parse(tokenString string) (models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, ErrTokenExpired
		}
		return models.Principal{}, ErrInvalidToken
	}
	if !token.Valid || !claims.Role.Valid() {
		return models.Principal{}, ErrInvalidToken
	}

	p := models.Principal{
		ID:          claims.UserID,
		Username:    claims.Username,
		Role:        claims.Role,
		CountryName: claims.CountryName,
	}
	if claims.CommitteeID != "" {
		id, err := primitive.ObjectIDFromHex(claims.CommitteeID)
		if err != nil {
			return models.Principal{}, ErrInvalidToken
		}
		p.CommitteeID = id
	}
	if p.Role == models.RoleDelegate && (p.CommitteeID.IsZero() || p.CountryName == "") {
		return models.Principal{}, ErrInvalidToken
	}
	return p, nil
}

// GenerateSecretToken returns a random 32-character hex capability used for
// delegate login.
func GenerateSecretToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
