package auth

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.OAuthClient{}, &models.OAuthToken{}, &models.OAuthCode{})
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestClient(t *testing.T, db *gorm.DB, id, secret string, userID uint) *models.OAuthClient {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	require.NoError(t, err)

	client := &models.OAuthClient{
		ID:         id,
		Secret:     string(hashed),
		Name:       "Test Client",
		Domain:     "http://localhost",
		UserID:     userID,
		Scopes:     "read write",
		GrantTypes: "client_credentials",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, "test-jwt-secret-key-32-characters")
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, "test-jwt-secret-key-32-characters")
	require.NotNil(t, oauthService)

	// Tokens carry the owning user's id, so the user must exist first
	user := createTestUser(t, db, "clientowner")
	createTestClient(t, db, "test_client", "test_secret", user.ID)

	ctx := context.Background()
	tokenRequest := &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Scope:        "read write",
	}

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(ctx, oauth2.ClientCredentials, tokenRequest)
	assert.NoError(t, err)
	assert.NotNil(t, tokenInfo)
	assert.NotEmpty(t, tokenInfo.GetAccess())

	// The access token is a JWT
	accessToken := tokenInfo.GetAccess()
	assert.Contains(t, accessToken, ".")
	assert.True(t, len(accessToken) > 50)
}

func TestTokenGenerationRejectsDeletedUser(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, "test-jwt-secret-key-32-characters")

	user := createTestUser(t, db, "ghost")
	createTestClient(t, db, "orphan_client", "test_secret", user.ID)
	require.NoError(t, db.Delete(&models.User{}, user.ID).Error)

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(),
		oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
			ClientID:     "orphan_client",
			ClientSecret: "test_secret",
		})
	assert.Error(t, err)
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner")
	createTestClient(t, db, "integration_test_client", "integration_test_secret", user.ID)

	clientStore := NewGormClientStore(db)
	ctx := context.Background()

	retrievedClient, err := clientStore.GetByID(ctx, "integration_test_client")
	assert.NoError(t, err)
	require.NotNil(t, retrievedClient)
	assert.Equal(t, "integration_test_client", retrievedClient.GetID())

	_, err = clientStore.GetByID(ctx, "missing_client")
	assert.Error(t, err)
}
