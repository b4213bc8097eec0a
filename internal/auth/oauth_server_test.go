package auth

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.OAuthToken{})
	require.NoError(t, err)

	return db
}

func createOwnedClient(t *testing.T, db *gorm.DB, plainSecret string) (*models.User, *models.OAuthClient) {
	owner := &models.User{
		FirstName:    "Kitchen",
		LastName:     "Admin",
		Email:        "kitchen@pizza.test",
		PasswordHash: "x",
		AccountType:  models.AccountTypeAdmin,
		IsVerified:   true,
	}
	require.NoError(t, db.Create(owner).Error)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(plainSecret), bcrypt.MinCost)
	require.NoError(t, err)

	client := &models.OAuthClient{
		ID:     "kitchen_display",
		Secret: string(hashedSecret),
		Name:   "Kitchen display",
		Domain: "http://localhost:8080",
		Scopes: "orders:write",
		UserID: owner.ID,
	}
	require.NoError(t, db.Create(client).Error)
	return owner, client
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, NewSessionIssuer(testSecret, time.Hour))
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestPartnerTokenIsSessionToken(t *testing.T) {
	db := setupTestDB(t)
	issuer := NewSessionIssuer(testSecret, time.Hour)
	oauthService := NewOAuthService(db, issuer)
	owner, _ := createOwnedClient(t, db, "test_secret")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "kitchen_display",
		ClientSecret: "test_secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokenInfo.GetAccess())

	claims, err := issuer.Parse(tokenInfo.GetAccess())
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.UserID)
	assert.Equal(t, models.AccountTypeAdmin, claims.Role)

	var stored models.OAuthToken
	require.NoError(t, db.Where("access_token = ?", tokenInfo.GetAccess()).First(&stored).Error)
	assert.Equal(t, "kitchen_display", stored.ClientID)
}

func TestPartnerTokenWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, NewSessionIssuer(testSecret, time.Hour))
	createOwnedClient(t, db, "correct_secret")

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "kitchen_display",
		ClientSecret: "wrong_secret",
	})
	assert.Error(t, err)
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createOwnedClient(t, db, "integration_test_secret")

	clientStore := NewGormClientStore(db)
	retrievedClient, err := clientStore.GetByID(context.Background(), "kitchen_display")
	assert.NoError(t, err)
	require.NotNil(t, retrievedClient)
	assert.Equal(t, "kitchen_display", retrievedClient.GetID())
	assert.NotEmpty(t, retrievedClient.GetUserID())

	_, err = clientStore.GetByID(context.Background(), "missing")
	assert.Error(t, err)
}

func TestTokenStorePurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c", AccessToken: "old", ExpiresAt: time.Now().Add(-time.Minute)}).Error)
	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c", AccessToken: "fresh", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	oauthService := NewOAuthService(db, NewSessionIssuer(testSecret, time.Hour))
	n, err := oauthService.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetByAccess(context.Background(), "fresh")
	assert.NoError(t, err)
}
