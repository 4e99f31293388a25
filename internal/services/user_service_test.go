package services

import (
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRejectsDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	first := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, svc.CreateUser(first))

	sameEmail := &models.User{Username: "alice2", Email: "alice@example.com", Password: "hash"}
	assert.ErrorIs(t, svc.CreateUser(sameEmail), ErrUserAlreadyExists)

	sameUsername := &models.User{Username: "alice", Email: "other@example.com", Password: "hash"}
	assert.ErrorIs(t, svc.CreateUser(sameUsername), ErrUserAlreadyExists)
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.GetUserByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	aliceRecipe := createTestRecipe(t, db, alice.ID, "Alice Soup")
	bobRecipe := createTestRecipe(t, db, bob.ID, "Bob Stew")

	// Alice rated Bob's recipe, Bob rated Alice's
	require.NoError(t, db.Create(&models.Rating{RecipeID: bobRecipe.ID, UserID: alice.ID, Score: 4}).Error)
	require.NoError(t, db.Create(&models.Rating{RecipeID: aliceRecipe.ID, UserID: bob.ID, Score: 5}).Error)

	require.NoError(t, svc.DeleteUser(alice.ID))

	_, err := svc.GetUserByID(alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Alice's recipe, the ratings on it, and Alice's own ratings are gone
	var recipeCount int64
	require.NoError(t, db.Model(&models.Recipe{}).Where("user_id = ?", alice.ID).Count(&recipeCount).Error)
	assert.Equal(t, int64(0), recipeCount)

	var ratingCount int64
	require.NoError(t, db.Model(&models.Rating{}).Count(&ratingCount).Error)
	assert.Equal(t, int64(0), ratingCount)

	// Bob's account and recipe are untouched
	_, err = svc.GetUserByID(bob.ID)
	require.NoError(t, err)
	var bobRecipes int64
	require.NoError(t, db.Model(&models.Recipe{}).Where("user_id = ?", bob.ID).Count(&bobRecipes).Error)
	assert.Equal(t, int64(1), bobRecipes)
}

func TestDeleteUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	assert.ErrorIs(t, svc.DeleteUser(9999), ErrUserNotFound)
}

func TestUserPasswordHashing(t *testing.T) {
	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "s3cret"}
	require.NoError(t, user.HashPassword())

	assert.NotEqual(t, "s3cret", user.Password)
	assert.True(t, user.CheckPassword("s3cret"))
	assert.False(t, user.CheckPassword("wrong"))
}
