package services

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Recipe{}, &models.Rating{})
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestRecipe(t *testing.T, db *gorm.DB, userID uint, title string, mutate ...func(*models.Recipe)) *models.Recipe {
	recipe := &models.Recipe{
		Title:           title,
		Description:     "test recipe",
		Ingredients:     "flour, water, salt",
		Instructions:    "mix and cook",
		Category:        "Main Course",
		PreparationTime: 10,
		CookingTime:     20,
		Servings:        4,
		CreatedDate:     time.Now(),
		UserID:          userID,
	}
	for _, m := range mutate {
		m(recipe)
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}
