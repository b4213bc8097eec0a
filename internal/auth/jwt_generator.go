package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"gorm.io/gorm"
)

// SessionAccessGenerate generates partner access tokens in the session claim format
type SessionAccessGenerate struct {
	issuer *SessionIssuer
	db     *gorm.DB // Database connection to fetch the owning user
}

// NewSessionAccessGenerate creates a new access token generator backed by issuer
func NewSessionAccessGenerate(issuer *SessionIssuer, db *gorm.DB) *SessionAccessGenerate {
	return &SessionAccessGenerate{issuer: issuer, db: db}
}

// Token is called by the OAuth2 manager to mint access tokens
func (g *SessionAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// client_credentials carries no user; tokens act for the client's owner
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token: client %s has no owner", data.Client.GetID())
	}

	user, err := g.lookupOwner(ctx, userID)
	if err != nil {
		return "", "", err
	}

	ttl := data.TokenInfo.GetAccessExpiresIn()
	if ttl <= 0 {
		ttl = defaultPartnerTokenTTL
	}
	// Role always comes from the database so a demoted owner cannot keep admin tokens
	access, _, err := g.issuer.IssueFor(user.ID, user.Email, user.AccountType, PurposeSession, ttl)
	if err != nil {
		return "", "", err
	}
	return access, "", nil
}

func (g *SessionAccessGenerate) lookupOwner(ctx context.Context, userIDStr string) (*models.User, error) {
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	if err := g.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d not found", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

var _ oauth2.AccessGenerate = (*SessionAccessGenerate)(nil)
