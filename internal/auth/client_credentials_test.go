package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTokenRouter(o *OAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/oauth/token", o.HandleToken)
	return router
}

func postTokenForm(router *gin.Engine, form string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestClientCredentialsFlow(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, "test-jwt-secret-key-32-characters")
	require.NotNil(t, oauthService)

	user := createTestUser(t, db, "apiclient")
	createTestClient(t, db, "test_client_id", "test_secret", user.ID)

	router := setupTokenRouter(oauthService)

	// The plain secret is verified against the stored bcrypt hash
	w := postTokenForm(router, "grant_type=client_credentials&client_id=test_client_id&client_secret=test_secret")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Contains(t, response, "access_token")
	assert.Equal(t, "Bearer", response["token_type"])

	// The token is a JWT
	accessToken := response["access_token"].(string)
	assert.Contains(t, accessToken, ".")
}

func TestClientCredentialsInvalidSecret(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, "test-jwt-secret-key-32-characters")

	user := createTestUser(t, db, "apiclient")
	createTestClient(t, db, "test_client_id", "correct_secret", user.ID)

	router := setupTokenRouter(oauthService)

	w := postTokenForm(router, "grant_type=client_credentials&client_id=test_client_id&client_secret=wrong_secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientCredentialsUnknownClient(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, "test-jwt-secret-key-32-characters")

	router := setupTokenRouter(oauthService)

	w := postTokenForm(router, "grant_type=client_credentials&client_id=nope&client_secret=whatever")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnsupportedGrantType(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, "test-jwt-secret-key-32-characters")

	router := setupTokenRouter(oauthService)

	w := postTokenForm(router, "grant_type=password&client_id=x&client_secret=y")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
