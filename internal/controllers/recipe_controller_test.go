package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testJWTSecret = []byte("test-secret")

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Recipe{}, &models.Rating{}))
	return db
}

// setupTestRouter wires the recipe and rating routes the way the server does,
// split into a public discovery group and a JWT-protected group.
func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	recipeController := NewRecipeController(services.NewRecipeService(db))
	ratingController := NewRatingController(services.NewRatingService(db))

	public := router.Group("/api/v1/public")
	{
		public.GET("/recipes/categories/:category", recipeController.RecipesByCategory)
		public.GET("/recipes/ingredients/:ingredient", recipeController.RecipesByIngredient)
		public.GET("/recipes/by-ingredients", recipeController.RecipesByIngredients)
		public.GET("/recipes/highest-rated", recipeController.HighestRated)
		public.GET("/recipes/most-popular", recipeController.MostPopular)
	}

	protected := router.Group("/api/v1/protected")
	protected.Use(middleware.JWTAuth(testJWTSecret))
	{
		protected.GET("/recipes", recipeController.ListMyRecipes)
		protected.POST("/recipes", recipeController.CreateRecipe)
		protected.GET("/recipes/:id", recipeController.GetRecipeByID)
		protected.PUT("/recipes/:id", recipeController.UpdateRecipe)
		protected.DELETE("/recipes/:id", recipeController.DeleteRecipe)
		protected.POST("/recipes/:id/rate", ratingController.RateRecipe)
		protected.GET("/recipes/:id/rate", ratingController.ListRatings)
		protected.GET("/search", recipeController.FilterRecipes)
	}

	return router
}

func signTestToken(t *testing.T, userID uint) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": float64(userID),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testJWTSecret)
	require.NoError(t, err)
	return signed
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createRecipe(t *testing.T, db *gorm.DB, userID uint, title string) *models.Recipe {
	recipe := &models.Recipe{
		Title:           title,
		Ingredients:     "flour, water",
		Category:        "Main Course",
		PreparationTime: 10,
		CookingTime:     20,
		Servings:        4,
		CreatedDate:     time.Now(),
		UserID:          userID,
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func doRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) models.APIError {
	var apiErr models.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	w := doRequest(router, http.MethodGet, "/api/v1/protected/recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/protected/recipes", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndGetRecipe(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	token := signTestToken(t, alice.ID)

	w := doRequest(router, http.MethodPost, "/api/v1/protected/recipes", token, gin.H{
		"title":            "Focaccia",
		"ingredients":      "flour, olive oil, salt",
		"category":         "Main Course",
		"preparation_time": 20,
		"cooking_time":     25,
		"servings":         6,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, alice.ID, created.UserID)

	w = doRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/protected/recipes/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateRecipeRejectsBadPayload(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	token := signTestToken(t, alice.ID)

	// Missing required title
	w := doRequest(router, http.MethodPost, "/api/v1/protected/recipes", token, gin.H{
		"ingredients": "flour",
		"category":    "Dessert",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown category
	w = doRequest(router, http.MethodPost, "/api/v1/protected/recipes", token, gin.H{
		"title":       "Mystery",
		"ingredients": "flour",
		"category":    "Molecular",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrRecipeInvalidData, decodeAPIError(t, w).Code)
}

func TestNonOwnerCannotUpdateRecipe(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	recipe := createRecipe(t, db, alice.ID, "Alice Bread")

	w := doRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/protected/recipes/%d", recipe.ID),
		signTestToken(t, bob.ID), gin.H{
			"title":       "Hijacked",
			"ingredients": "stolen",
			"category":    "Dessert",
		})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.ErrForbidden, decodeAPIError(t, w).Code)

	// The recipe is unchanged
	var stored models.Recipe
	require.NoError(t, db.First(&stored, recipe.ID).Error)
	assert.Equal(t, "Alice Bread", stored.Title)
}

func TestNonOwnerCannotDeleteRecipe(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	recipe := createRecipe(t, db, alice.ID, "Alice Bread")

	w := doRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/protected/recipes/%d", recipe.ID),
		signTestToken(t, bob.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The owner can
	w = doRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/protected/recipes/%d", recipe.ID),
		signTestToken(t, alice.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecipeNotFoundResponses(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	token := signTestToken(t, alice.ID)

	w := doRequest(router, http.MethodGet, "/api/v1/protected/recipes/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrRecipeNotFound, decodeAPIError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/api/v1/protected/recipes/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterRecipesEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	token := signTestToken(t, alice.ID)
	createRecipe(t, db, alice.ID, "Bread")

	// Empty result is 200 with an empty list
	w := doRequest(router, http.MethodGet, "/api/v1/protected/search?title=nonexistent", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recipes []models.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipes))
	assert.Empty(t, recipes)

	// Matching filter returns the recipe
	w = doRequest(router, http.MethodGet, "/api/v1/protected/search?title=bread&servings=3", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipes))
	assert.Len(t, recipes, 1)

	// Malformed numeric parameter
	w = doRequest(router, http.MethodGet, "/api/v1/protected/search?servings=lots", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateRecipeEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	recipe := createRecipe(t, db, alice.ID, "Bread")
	path := fmt.Sprintf("/api/v1/protected/recipes/%d/rate", recipe.ID)
	bobToken := signTestToken(t, bob.ID)

	w := doRequest(router, http.MethodPost, path, bobToken, gin.H{"score": 5, "review": "great"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Same user again
	w = doRequest(router, http.MethodPost, path, bobToken, gin.H{"score": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrAlreadyRated, decodeAPIError(t, w).Code)

	// Score out of range
	w = doRequest(router, http.MethodPost, path, signTestToken(t, alice.ID), gin.H{"score": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrRatingInvalidScore, decodeAPIError(t, w).Code)

	// Nonexistent recipe
	w = doRequest(router, http.MethodPost, "/api/v1/protected/recipes/9999/rate", bobToken, gin.H{"score": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDiscoveryEndpoints(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	alice := createUser(t, db, "alice")
	createRecipe(t, db, alice.ID, "Bread")

	// Public, no token needed
	w := doRequest(router, http.MethodGet, "/api/v1/public/recipes/categories/main", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/public/recipes/categories/drink", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrNoRecipesMatch, decodeAPIError(t, w).Code)

	w = doRequest(router, http.MethodGet, "/api/v1/public/recipes/ingredients/flour", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/public/recipes/by-ingredients?ingredients=flour,water", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/public/recipes/by-ingredients?ingredients=flour,saffron", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Missing required parameter
	w = doRequest(router, http.MethodGet, "/api/v1/public/recipes/by-ingredients", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRankingEndpoints(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createUser(t, db, "owner")

	for i := 0; i < 12; i++ {
		recipe := createRecipe(t, db, owner.ID, fmt.Sprintf("Recipe %02d", i))
		rater := createUser(t, db, fmt.Sprintf("rater%d", i))
		require.NoError(t, db.Create(&models.Rating{
			RecipeID: recipe.ID,
			UserID:   rater.ID,
			Score:    (i % 5) + 1,
		}).Error)
	}

	w := doRequest(router, http.MethodGet, "/api/v1/public/recipes/highest-rated", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ranked []models.RankedRecipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranked))
	assert.Len(t, ranked, 10)

	w = doRequest(router, http.MethodGet, "/api/v1/public/recipes/most-popular", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranked))
	assert.Len(t, ranked, 10)
}
