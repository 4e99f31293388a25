package auth

import (
	"context"
	"time"

	internalmodels "github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"
)

type GormClientStore struct {
	db *gorm.DB
}

func NewGormClientStore(db *gorm.DB) *GormClientStore {
	return &GormClientStore{db: db}
}

func (s *GormClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	var client internalmodels.OAuthClient
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}

	// Return our custom OAuthClient which implements ClientPasswordVerifier
	return &client, nil
}

type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	userID := info.GetUserID()
	refreshToken := info.GetRefresh()

	token := &internalmodels.OAuthToken{
		ClientID:     info.GetClientID(),
		UserID:       &userID,
		AccessToken:  info.GetAccess(),
		RefreshToken: &refreshToken,
		Scopes:       info.GetScope(),
		ExpiresAt:    time.Now().Add(info.GetAccessExpiresIn()),
	}

	return s.db.Create(token).Error
}

func (s *GormTokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.Where("access_token = ?", access).Delete(&internalmodels.OAuthToken{}).Error
}

func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	return s.db.Where("refresh_token = ?", refresh).Delete(&internalmodels.OAuthToken{}).Error
}

func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	var token internalmodels.OAuthToken
	if err := s.db.Where("access_token = ?", access).First(&token).Error; err != nil {
		return nil, err
	}
	return tokenInfo(&token), nil
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	var token internalmodels.OAuthToken
	if err := s.db.Where("refresh_token = ?", refresh).First(&token).Error; err != nil {
		return nil, err
	}
	return tokenInfo(&token), nil
}

// tokenInfo maps a stored token row onto the library's token model
func tokenInfo(token *internalmodels.OAuthToken) oauth2.TokenInfo {
	info := &models.Token{
		ClientID:        token.ClientID,
		Access:          token.AccessToken,
		AccessExpiresIn: time.Until(token.ExpiresAt),
		Scope:           token.Scopes,
	}
	if token.UserID != nil {
		info.UserID = *token.UserID
	}
	if token.RefreshToken != nil {
		info.Refresh = *token.RefreshToken
	}
	return info
}

func (s *GormTokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	var oauthCode internalmodels.OAuthCode
	if err := s.db.Where("code = ?", code).First(&oauthCode).Error; err != nil {
		return nil, err
	}

	// Check if the code has expired
	if time.Now().After(oauthCode.ExpiresAt) {
		return nil, gorm.ErrRecordNotFound
	}

	return &models.Token{
		ClientID:            oauthCode.ClientID,
		UserID:              oauthCode.UserID,
		Code:                oauthCode.Code,
		CodeCreateAt:        oauthCode.CreatedAt,
		CodeExpiresIn:       oauthCode.ExpiresAt.Sub(oauthCode.CreatedAt),
		CodeChallenge:       oauthCode.CodeChallenge,
		CodeChallengeMethod: oauthCode.CodeChallengeMethod,
		RedirectURI:         oauthCode.RedirectURI,
		Scope:               oauthCode.Scopes,
	}, nil
}

func (s *GormTokenStore) RemoveByCode(ctx context.Context, code string) error {
	return s.db.Where("code = ?", code).Delete(&internalmodels.OAuthCode{}).Error
}
