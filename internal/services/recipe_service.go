package services

import (
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrRecipeNotFound is returned when a recipe id does not exist
	ErrRecipeNotFound = errors.New("recipe_not_found")
	// ErrNoRecipes is returned by single-value lookups (category, ingredient)
	// that matched zero rows. The combined filter endpoint never returns it:
	// an empty filtered list is a valid result there.
	ErrNoRecipes = errors.New("no_recipes_match")
)

// FilterOptions carries the optional, conjunctively-applied recipe filters.
// A nil/empty field imposes no constraint.
type FilterOptions struct {
	Title           string
	Category        string
	Ingredients     []string // every entry must appear in the ingredient text
	PreparationTime *int     // keep recipes with preparation_time <= value
	CookingTime     *int     // keep recipes with cooking_time <= value
	Servings        *int     // keep recipes with servings >= value
}

// Fields the list endpoint accepts for explicit ordering. Anything else
// falls back to ascending creation time.
var orderableFields = map[string]bool{
	"cooking_time":     true,
	"preparation_time": true,
	"servings":         true,
}

// RecipeService provides methods to interact with the recipe database
type RecipeService interface {
	// ListByOwner retrieves the owner's recipes with optional free-text search and ordering.
	// Search matches title, category or ingredients; ordering accepts cooking_time,
	// preparation_time or servings, with a "-" prefix for descending.
	ListByOwner(ownerID uint, search, ordering string) ([]models.Recipe, error)
	// GetRecipeByID retrieves a recipe by its ID
	GetRecipeByID(id uint) (*models.Recipe, error)
	// CreateRecipe creates a new recipe in the database
	CreateRecipe(recipe *models.Recipe) error
	// UpdateRecipe updates an existing recipe, preserving owner and creation time
	UpdateRecipe(recipe *models.Recipe) error
	// DeleteRecipe deletes a recipe and its ratings
	DeleteRecipe(id uint) error
	// Filter applies the combined filter set over the owner's recipes
	Filter(ownerID uint, opts FilterOptions) ([]models.Recipe, error)
	// ByCategory retrieves recipes across all users matching a category
	ByCategory(category string) ([]models.Recipe, error)
	// ByIngredient retrieves recipes across all users containing an ingredient
	ByIngredient(ingredient string) ([]models.Recipe, error)
	// ByIngredients retrieves recipes across all users containing every listed ingredient
	ByIngredients(ingredients []string) ([]models.Recipe, error)
	// HighestRated returns the top 10 recipes by descending average score
	HighestRated() ([]models.RankedRecipe, error)
	// MostPopular returns the top 10 recipes by descending rating count
	MostPopular() ([]models.RankedRecipe, error)
}

// recipeService is the implementation of the RecipeService interface
type recipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB) RecipeService {
	return &recipeService{db: db}
}

func (s *recipeService) ListByOwner(ownerID uint, search, ordering string) ([]models.Recipe, error) {
	query := s.db.Where("user_id = ?", ownerID)

	if search != "" {
		pattern := containsPattern(search)
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(category) LIKE ? OR LOWER(ingredients) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	query = query.Order(orderClause(ordering))

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// orderClause maps the ordering request parameter onto a whitelisted ORDER BY
// clause. Unknown fields silently fall back to the default ordering rather
// than letting request input reach the SQL string.
func orderClause(ordering string) string {
	direction := "ASC"
	field := ordering
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(ordering, "-")
	}
	if !orderableFields[field] {
		return "created_date ASC"
	}
	return field + " " + direction
}

// containsPattern builds a case-insensitive LIKE pattern for substring matching
func containsPattern(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}

func (s *recipeService) GetRecipeByID(id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *recipeService) CreateRecipe(recipe *models.Recipe) error {
	return s.db.Create(recipe).Error
}

func (s *recipeService) UpdateRecipe(recipe *models.Recipe) error {
	return s.db.Save(recipe).Error
}

func (s *recipeService) DeleteRecipe(id uint) error {
	// Ratings go first so the delete also works on drivers that do not
	// enforce the declared FK cascade (sqlite without the pragma).
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		return nil
	})
}

func (s *recipeService) Filter(ownerID uint, opts FilterOptions) ([]models.Recipe, error) {
	query := s.db.Where("user_id = ?", ownerID)

	if opts.Title != "" {
		query = query.Where("LOWER(title) LIKE ?", containsPattern(opts.Title))
	}
	if opts.Category != "" {
		query = query.Where("LOWER(category) LIKE ?", containsPattern(opts.Category))
	}
	if opts.PreparationTime != nil {
		query = query.Where("preparation_time <= ?", *opts.PreparationTime)
	}
	if opts.CookingTime != nil {
		query = query.Where("cooking_time <= ?", *opts.CookingTime)
	}
	if opts.Servings != nil {
		query = query.Where("servings >= ?", *opts.Servings)
	}
	for _, ingredient := range opts.Ingredients {
		if strings.TrimSpace(ingredient) == "" {
			continue
		}
		query = query.Where("LOWER(ingredients) LIKE ?", containsPattern(ingredient))
	}

	var recipes []models.Recipe
	if err := query.Order("created_date ASC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *recipeService) ByCategory(category string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.Where("LOWER(category) LIKE ?", containsPattern(category)).
		Order("created_date ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	return recipes, nil
}

func (s *recipeService) ByIngredient(ingredient string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.Where("LOWER(ingredients) LIKE ?", containsPattern(ingredient)).
		Order("created_date ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	return recipes, nil
}

func (s *recipeService) ByIngredients(ingredients []string) ([]models.Recipe, error) {
	query := s.db.Model(&models.Recipe{})
	for _, ingredient := range ingredients {
		if strings.TrimSpace(ingredient) == "" {
			continue
		}
		query = query.Where("LOWER(ingredients) LIKE ?", containsPattern(ingredient))
	}

	var recipes []models.Recipe
	if err := query.Order("created_date ASC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, ErrNoRecipes
	}
	return recipes, nil
}

func (s *recipeService) HighestRated() ([]models.RankedRecipe, error) {
	var ranked []models.RankedRecipe
	// COALESCE keeps unrated recipes at the bottom on both sqlite and
	// postgres; ties break on ascending recipe id for a deterministic order.
	err := s.db.Model(&models.Recipe{}).
		Select("recipes.*, AVG(ratings.score) AS average_rating, COUNT(ratings.id) AS ratings_count").
		Joins("LEFT JOIN ratings ON ratings.recipe_id = recipes.id").
		Group("recipes.id").
		Order("COALESCE(AVG(ratings.score), 0) DESC, recipes.id ASC").
		Limit(10).
		Scan(&ranked).Error
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

func (s *recipeService) MostPopular() ([]models.RankedRecipe, error) {
	var ranked []models.RankedRecipe
	err := s.db.Model(&models.Recipe{}).
		Select("recipes.*, AVG(ratings.score) AS average_rating, COUNT(ratings.id) AS ratings_count").
		Joins("LEFT JOIN ratings ON ratings.recipe_id = recipes.id").
		Group("recipes.id").
		Order("COUNT(ratings.id) DESC, recipes.id ASC").
		Limit(10).
		Scan(&ranked).Error
	if err != nil {
		return nil, err
	}
	return ranked, nil
}
