package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AccessTokenGenerator generates JWT access tokens whose uid claim carries the
// identity recipe and rating mutations are attributed to
type AccessTokenGenerator struct {
	SignedKey    []byte
	SignedMethod jwt.SigningMethod
	DB           *gorm.DB // Database connection to verify the user still exists
}

// NewAccessTokenGenerator creates a new custom JWT access token generator
func NewAccessTokenGenerator(key []byte, method jwt.SigningMethod, db *gorm.DB) *AccessTokenGenerator {
	return &AccessTokenGenerator{
		SignedKey:    key,
		SignedMethod: method,
		DB:           db,
	}
}

// Token generates a JWT access token with custom claims
// This method is called by the OAuth2 library to generate access tokens
func (g *AccessTokenGenerator) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// Create base claims with standard fields
	claims := jwt.MapClaims{
		"aud": data.Client.GetID(),
		"iat": data.TokenInfo.GetAccessCreateAt().Unix(),
		"exp": data.TokenInfo.GetAccessCreateAt().Add(data.TokenInfo.GetAccessExpiresIn()).Unix(),
	}

	// Extract UserID from OAuth2 flow
	// For client_credentials flow, GenerateBasic.UserID is empty, so we get it from Client.GetUserID()
	// For other flows (authorization_code), it comes from GenerateBasic.UserID
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}

	if userID == "" {
		return "", "", fmt.Errorf("cannot generate token: no user ID available")
	}

	// Tokens for deleted accounts must not be minted
	if err := g.verifyUserExists(userID); err != nil {
		return "", "", err
	}

	claims["uid"] = userID

	// Add scope if present
	if data.TokenInfo.GetScope() != "" {
		claims["scope"] = data.TokenInfo.GetScope()
	}

	// Generate the access token
	token := jwt.NewWithClaims(g.SignedMethod, claims)
	access, err := token.SignedString(g.SignedKey)
	if err != nil {
		return "", "", err
	}

	// Generate refresh token if requested
	refresh := ""
	if isGenRefresh {
		refreshClaims := jwt.MapClaims{
			"id":  data.TokenInfo.GetAccess(),
			"exp": data.TokenInfo.GetRefreshCreateAt().Add(data.TokenInfo.GetRefreshExpiresIn()).Unix(),
		}
		t := jwt.NewWithClaims(g.SignedMethod, refreshClaims)
		refresh, err = t.SignedString(g.SignedKey)
		if err != nil {
			return "", "", err
		}
	}

	return access, refresh, nil
}

// verifyUserExists checks that the uid about to be embedded maps to a stored user
func (g *AccessTokenGenerator) verifyUserExists(userIDStr string) error {
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	if err := g.DB.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("user with ID %d not found", userID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}
