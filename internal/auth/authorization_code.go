package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HandleAuthorize issues an authorization code for a registered client.
// The requester must already carry an authenticated identity.
func (o *OAuthService) HandleAuthorize(c *gin.Context) {
	clientID := c.Query("client_id")
	redirectURI := c.Query("redirect_uri")
	scope := c.Query("scope")
	state := c.Query("state")

	// Validate client
	var client models.OAuthClient
	if err := o.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidClient})
		return
	}

	// Validate redirect URI
	if redirectURI != "" && redirectURI != client.RedirectURI {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_redirect_uri"})
		return
	}

	userID := c.GetString("userID")
	if userID == "" {
		// Redirect to login page
		loginURL := "/login?redirect=" + url.QueryEscape(c.Request.URL.String())
		c.Redirect(http.StatusFound, loginURL)
		return
	}

	// Generate authorization code
	code := uuid.New().String()
	authCode := &models.OAuthCode{
		Code:        code,
		ClientID:    clientID,
		UserID:      userID,
		Scopes:      scope,
		RedirectURI: redirectURI,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
	}

	if err := o.db.Create(authCode).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "code_generation_failed"})
		return
	}

	// Redirect back to client with authorization code
	redirectURL := redirectURI + "?code=" + code
	if state != "" {
		redirectURL += "&state=" + state
	}

	c.Redirect(http.StatusFound, redirectURL)
}
