package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRouter(o *OAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", o.HandleToken)
	return router
}

func postForm(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)
	issuer := NewSessionIssuer(testSecret, time.Hour)
	oauthService := NewOAuthService(db, issuer)
	createOwnedClient(t, db, "test_secret")

	w := postForm(newTokenRouter(oauthService), "grant_type=client_credentials&client_id=kitchen_display&client_secret=test_secret")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Bearer", response["token_type"])

	accessToken, ok := response["access_token"].(string)
	require.True(t, ok)
	_, err := issuer.Parse(accessToken)
	assert.NoError(t, err)
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, NewSessionIssuer(testSecret, time.Hour))
	createOwnedClient(t, db, "correct_secret")

	w := postForm(newTokenRouter(oauthService), "grant_type=client_credentials&client_id=kitchen_display&client_secret=wrong_secret")

	assert.True(t, w.Code >= 400)
}

func TestUnsupportedGrantType(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, NewSessionIssuer(testSecret, time.Hour))

	w := postForm(newTokenRouter(oauthService), "grant_type=authorization_code&code=abc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported_grant_type")
}
