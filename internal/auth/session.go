package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose is rejected for any other.
const (
	PurposeSession = "session"
	PurposeReset   = "reset"
	PurposeVerify  = "verify"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// SessionClaims are embedded in every token signed by the service
type SessionClaims struct {
	UserID  uint               `json:"uid"`
	Email   string             `json:"email"`
	Role    models.AccountType `json:"role"`
	Purpose string             `json:"purpose"`
	jwt.RegisteredClaims
}

// SessionIssuer mints and validates HS256 tokens
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionIssuer creates an issuer whose session tokens live for ttl
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the lifetime of session tokens
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue creates a session token for the user
func (s *SessionIssuer) Issue(user *models.User) (string, time.Time, error) {
	return s.IssueFor(user.ID, user.Email, user.AccountType, PurposeSession, s.ttl)
}

// IssueFor creates a token with explicit claims, purpose and lifetime
func (s *SessionIssuer) IssueFor(userID uint, email string, role models.AccountType, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := SessionClaims{
		UserID:  userID,
		Email:   email,
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates a session token
func (s *SessionIssuer) Parse(tokenString string) (*SessionClaims, error) {
	return s.ParsePurpose(tokenString, PurposeSession)
}

// ParsePurpose validates a token and requires the given purpose claim
func (s *SessionIssuer) ParsePurpose(tokenString, purpose string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC to prevent algorithm confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithIssuedAt())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: purpose %q not accepted here", ErrTokenInvalid, claims.Purpose)
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing uid or role claim", ErrTokenInvalid)
	}
	return claims, nil
}
