package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RatingController struct {
	ratingService services.RatingService
}

func NewRatingController(ratingService services.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

// ratingRequest is the rate-recipe payload. The rating user is always the
// authenticated requester; a user_id in the body is ignored.
type ratingRequest struct {
	Score  int    `json:"score" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

// RateRecipe godoc
// @Summary Rate a recipe
// @Description Create a rating for a recipe. A user may rate a given recipe at most once.
// @Tags ratings
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param rating body controllers.ratingRequest true "Rating payload"
// @Success 201 {object} models.Rating
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/rate [post]
func (rc *RatingController) RateRecipe(ctx *gin.Context) {
	recipeID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req ratingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrRatingInvalidScore, err.Error()))
		return
	}

	rating, err := rc.ratingService.RateRecipe(recipeID, ctx.GetUint("userID"), req.Score, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRecipeNotFound):
			ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrRecipeNotFound, "No recipe found with this id"))
		case errors.Is(err, services.ErrAlreadyRated):
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrAlreadyRated, "You have already rated this recipe"))
		default:
			ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to create rating"))
		}
		return
	}
	ctx.JSON(http.StatusCreated, rating)
}

// ListRatings godoc
// @Summary List ratings for a recipe
// @Tags ratings
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {array} models.Rating
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/rate [get]
func (rc *RatingController) ListRatings(ctx *gin.Context) {
	recipeID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	ratings, err := rc.ratingService.RatingsForRecipe(recipeID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Failed to retrieve ratings"))
		return
	}
	ctx.JSON(http.StatusOK, ratings)
}
