package auth

import (
	"context"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"gorm.io/gorm"
)

// OAuthService issues client_credentials tokens to partner integrations.
// Tokens are ordinary session tokens bound to the client's owning admin.
type OAuthService struct {
	server *server.Server
	tokens *GormTokenStore
	db     *gorm.DB
}

func NewOAuthService(db *gorm.DB, issuer *SessionIssuer) *OAuthService {
	manager := manage.NewDefaultManager()
	ttl := issuer.TTL()
	if ttl <= 0 {
		ttl = defaultPartnerTokenTTL
	}
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: ttl})

	// Access tokens share the session claim format so one middleware serves both
	manager.MapAccessGenerate(NewSessionAccessGenerate(issuer, db))

	tokens := NewGormTokenStore(db)
	manager.MustTokenStorage(tokens, nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	return &OAuthService{
		server: srv,
		tokens: tokens,
		db:     db,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// PurgeExpiredTokens deletes issued partner tokens that can no longer be used
func (o *OAuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return o.tokens.PurgeExpired(ctx)
}

// defaultPartnerTokenTTL applies when the issuer carries no TTL
const defaultPartnerTokenTTL = 2 * time.Hour
