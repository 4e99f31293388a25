package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	// ListMyRecipes retrieves the authenticated user's recipes
	ListMyRecipes(c *gin.Context)
	// GetRecipeByID retrieves a recipe by its ID
	GetRecipeByID(c *gin.Context)
	// CreateRecipe creates a new recipe owned by the requester
	CreateRecipe(c *gin.Context)
	// UpdateRecipe updates an existing recipe (owner only)
	UpdateRecipe(c *gin.Context)
	// DeleteRecipe deletes a recipe by its ID (owner only)
	DeleteRecipe(c *gin.Context)
	// FilterRecipes applies the combined filter set over the requester's recipes
	FilterRecipes(c *gin.Context)
	// RecipesByCategory lists recipes across all users for a category
	RecipesByCategory(c *gin.Context)
	// RecipesByIngredient lists recipes across all users containing an ingredient
	RecipesByIngredient(c *gin.Context)
	// RecipesByIngredients lists recipes containing every listed ingredient
	RecipesByIngredients(c *gin.Context)
	// HighestRated lists the top 10 recipes by average score
	HighestRated(c *gin.Context)
	// MostPopular lists the top 10 recipes by rating count
	MostPopular(c *gin.Context)
}

type recipeController struct {
	service services.RecipeService
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(service services.RecipeService) *recipeController {
	return &recipeController{service: service}
}

// recipeRequest is the create/update payload
type recipeRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Ingredients     string `json:"ingredients" binding:"required"`
	Instructions    string `json:"instructions"`
	Category        string `json:"category" binding:"required"`
	PreparationTime int    `json:"preparation_time" binding:"gte=0"`
	CookingTime     int    `json:"cooking_time" binding:"gte=0"`
	Servings        int    `json:"servings" binding:"gte=0"`
}

// ListMyRecipes godoc
// @Summary List own recipes
// @Description List the authenticated user's recipes with optional search and ordering
// @Tags recipes
// @Produce json
// @Param search query string false "Substring match across title, category and ingredients"
// @Param ordering query string false "cooking_time, preparation_time or servings; prefix with - for descending"
// @Success 200 {array} models.Recipe
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes [get]
func (rc *recipeController) ListMyRecipes(ctx *gin.Context) {
	userID := ctx.GetUint("userID")
	search := ctx.Query("search")
	ordering := ctx.Query("ordering")

	recipes, err := rc.service.ListByOwner(userID, search, ordering)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve recipes"))
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// GetRecipeByID godoc
// @Summary Get recipe by ID
// @Description Get a single recipe by its ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id} [get]
func (rc *recipeController) GetRecipeByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	recipe, err := rc.service.GetRecipeByID(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrRecipeNotFound, "Recipe not found"))
		return
	}
	ctx.JSON(http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a new recipe
// @Description Create a recipe owned by the authenticated user
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body controllers.recipeRequest true "Recipe payload"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes [post]
func (rc *recipeController) CreateRecipe(ctx *gin.Context) {
	var req recipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrRecipeInvalidData, err.Error()))
		return
	}

	if !models.IsValidCategory(req.Category) {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrRecipeInvalidData,
			"Unknown category", map[string]interface{}{"choices": models.CategoryChoices}))
		return
	}

	recipe := models.Recipe{
		Title:           req.Title,
		Description:     req.Description,
		Ingredients:     req.Ingredients,
		Instructions:    req.Instructions,
		Category:        req.Category,
		PreparationTime: req.PreparationTime,
		CookingTime:     req.CookingTime,
		Servings:        req.Servings,
		UserID:          ctx.GetUint("userID"),
	}

	if err := rc.service.CreateRecipe(&recipe); err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to create recipe"))
		return
	}
	ctx.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Update a recipe; only its owner may do so
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body controllers.recipeRequest true "Recipe payload"
// @Success 200 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id} [put]
func (rc *recipeController) UpdateRecipe(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	existing, err := rc.service.GetRecipeByID(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrRecipeNotFound, "Recipe not found"))
		return
	}

	userID := ctx.GetUint("userID")
	if existing.UserID != userID {
		ctx.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
			"You can only update your own recipes",
			map[string]interface{}{"recipe_owner": existing.UserID, "your_id": userID}))
		return
	}

	var req recipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrRecipeInvalidData, err.Error()))
		return
	}

	if !models.IsValidCategory(req.Category) {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrRecipeInvalidData,
			"Unknown category", map[string]interface{}{"choices": models.CategoryChoices}))
		return
	}

	// Owner and creation time are immutable
	existing.Title = req.Title
	existing.Description = req.Description
	existing.Ingredients = req.Ingredients
	existing.Instructions = req.Instructions
	existing.Category = req.Category
	existing.PreparationTime = req.PreparationTime
	existing.CookingTime = req.CookingTime
	existing.Servings = req.Servings

	if err := rc.service.UpdateRecipe(existing); err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to update recipe"))
		return
	}
	ctx.JSON(http.StatusOK, existing)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Delete a recipe and its ratings; only its owner may do so
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	existing, err := rc.service.GetRecipeByID(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrRecipeNotFound, "Recipe not found"))
		return
	}

	userID := ctx.GetUint("userID")
	if existing.UserID != userID {
		ctx.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden,
			"You can only delete your own recipes",
			map[string]interface{}{"recipe_owner": existing.UserID, "your_id": userID}))
		return
	}

	if err := rc.service.DeleteRecipe(id); err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to delete recipe"))
		return
	}
	ctx.JSON(http.StatusNoContent, nil)
}

// FilterRecipes godoc
// @Summary Filter own recipes
// @Description Combine optional filters over the authenticated user's recipes. An empty result is a valid empty list, not an error.
// @Tags recipes
// @Produce json
// @Param title query string false "Title substring"
// @Param category query string false "Category substring"
// @Param ingredients query string false "Comma-separated list; every ingredient must be present"
// @Param preparation_time query int false "Maximum preparation time in minutes"
// @Param cooking_time query int false "Maximum cooking time in minutes"
// @Param servings query int false "Minimum number of servings"
// @Success 200 {array} models.Recipe
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/search [get]
func (rc *recipeController) FilterRecipes(ctx *gin.Context) {
	opts := services.FilterOptions{
		Title:    ctx.Query("title"),
		Category: ctx.Query("category"),
	}

	if raw := ctx.Query("ingredients"); raw != "" {
		opts.Ingredients = splitIngredients(raw)
	}

	var ok bool
	if opts.PreparationTime, ok = parseIntQuery(ctx, "preparation_time"); !ok {
		return
	}
	if opts.CookingTime, ok = parseIntQuery(ctx, "cooking_time"); !ok {
		return
	}
	if opts.Servings, ok = parseIntQuery(ctx, "servings"); !ok {
		return
	}

	recipes, err := rc.service.Filter(ctx.GetUint("userID"), opts)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to filter recipes"))
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// RecipesByCategory godoc
// @Summary List recipes by category
// @Description List recipes across all users matching a category; 404 when none match
// @Tags discovery
// @Produce json
// @Param category path string true "Category"
// @Success 200 {array} models.Recipe
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/recipes/categories/{category} [get]
func (rc *recipeController) RecipesByCategory(ctx *gin.Context) {
	recipes, err := rc.service.ByCategory(ctx.Param("category"))
	if err != nil {
		if errors.Is(err, services.ErrNoRecipes) {
			ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNoRecipesMatch, "No recipes found in this category"))
			return
		}
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve recipes"))
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// RecipesByIngredient godoc
// @Summary List recipes by ingredient
// @Description List recipes across all users containing an ingredient; 404 when none match
// @Tags discovery
// @Produce json
// @Param ingredient path string true "Ingredient"
// @Success 200 {array} models.Recipe
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/recipes/ingredients/{ingredient} [get]
func (rc *recipeController) RecipesByIngredient(ctx *gin.Context) {
	recipes, err := rc.service.ByIngredient(ctx.Param("ingredient"))
	if err != nil {
		if errors.Is(err, services.ErrNoRecipes) {
			ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNoRecipesMatch, "No recipes found with this ingredient"))
			return
		}
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve recipes"))
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// RecipesByIngredients godoc
// @Summary List recipes containing every listed ingredient
// @Description AND-combined ingredient lookup across all users; 400 when the parameter is missing, 404 when none match
// @Tags discovery
// @Produce json
// @Param ingredients query string true "Comma-separated ingredient list"
// @Success 200 {array} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/recipes/by-ingredients [get]
func (rc *recipeController) RecipesByIngredients(ctx *gin.Context) {
	raw := ctx.Query("ingredients")
	if strings.TrimSpace(raw) == "" {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "The 'ingredients' query parameter is required"))
		return
	}

	recipes, err := rc.service.ByIngredients(splitIngredients(raw))
	if err != nil {
		if errors.Is(err, services.ErrNoRecipes) {
			ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNoRecipesMatch, "No recipes found with these ingredients"))
			return
		}
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve recipes"))
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// HighestRated godoc
// @Summary Top 10 recipes by average rating
// @Tags discovery
// @Produce json
// @Success 200 {array} models.RankedRecipe
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/recipes/highest-rated [get]
func (rc *recipeController) HighestRated(ctx *gin.Context) {
	ranked, err := rc.service.HighestRated()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to rank recipes"))
		return
	}
	ctx.JSON(http.StatusOK, ranked)
}

// MostPopular godoc
// @Summary Top 10 recipes by rating count
// @Tags discovery
// @Produce json
// @Success 200 {array} models.RankedRecipe
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/recipes/most-popular [get]
func (rc *recipeController) MostPopular(ctx *gin.Context) {
	ranked, err := rc.service.MostPopular()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to rank recipes"))
		return
	}
	ctx.JSON(http.StatusOK, ranked)
}

// splitIngredients turns a comma-separated parameter into trimmed entries
func splitIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	ingredients := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	return ingredients
}

// parseIntQuery reads an optional integer query parameter. The second return
// value is false when the parameter was present but malformed, in which case
// the 400 response has already been written.
func parseIntQuery(ctx *gin.Context, name string) (*int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid integer for parameter '"+name+"'"))
		return nil, false
	}
	return &value, true
}
