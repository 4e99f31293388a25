package main

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/franciscosanchezn/gin-recipe-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/config"
	"github.com/franciscosanchezn/gin-recipe-api/internal/controllers"
	"github.com/franciscosanchezn/gin-recipe-api/internal/database"
	"github.com/franciscosanchezn/gin-recipe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var (
	db               *gorm.DB
	recipeService    services.RecipeService
	ratingService    services.RatingService
	userService      services.UserService
	clientService    services.ClientService
	oauthService     *auth.OAuthService
	recipeController controllers.RecipeController
	ratingController *controllers.RatingController
	userController   *controllers.UserController
	authController   *controllers.AuthController
	clientController *controllers.ClientController
	configuration    *config.Config
)

// @title Recipe API
// @version 1.0
// @description A recipe sharing API with ratings and discovery listings
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// Initialize database connection
	setupDatabase(configuration)

	// Initialize services and controllers
	recipeService = services.NewRecipeService(db)
	ratingService = services.NewRatingService(db)
	userService = services.NewUserService(db)
	clientService = services.NewClientService(db)
	oauthService = auth.NewOAuthService(db, configuration.JWTSecret)

	recipeController = controllers.NewRecipeController(recipeService)
	ratingController = controllers.NewRatingController(ratingService)
	userController = controllers.NewUserController(userService)
	authController = controllers.NewAuthController(userService, configuration.JWTSecret)
	clientController = controllers.NewClientController(clientService)

	// Initialize Gin router
	var router *gin.Engine = setupRouter()

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %+v", conf)
	return conf
}

// setupDatabase initializes the database connection and returns a gorm.DB instance
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)

	// Migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Rating{},
		&models.OAuthClient{},
		&models.OAuthCode{},
		&models.OAuthToken{},
	)
	checkPanicErr(err)

	// Seed only if enabled and the database is empty
	var count int64
	db.Model(&models.Recipe{}).Count(&count)
	if conf.SeedOnBoot && count == 0 {
		log.Info("Database is empty, seeding initial data")
		seedDatabase()
	} else {
		log.Info("Skipping database seed")
	}
	return db
}

// seedDatabase seeds the database with a demo user and starter recipes
func seedDatabase() {
	demo := models.User{
		Username: "demo",
		Email:    "demo@recipes.local",
		Password: "demo-password",
	}
	if err := demo.HashPassword(); err != nil {
		log.WithError(err).Error("Failed to hash demo password, skipping seed")
		return
	}
	if err := db.Create(&demo).Error; err != nil {
		log.WithError(err).Error("Failed to create demo user, skipping seed")
		return
	}

	recipes := []models.Recipe{
		{
			Title:           "Pancakes",
			Description:     "Fluffy breakfast pancakes",
			Ingredients:     "flour, milk, egg, butter, sugar",
			Instructions:    "Whisk, rest, fry on a hot pan.",
			Category:        "Breakfast",
			PreparationTime: 10,
			CookingTime:     15,
			Servings:        4,
			UserID:          demo.ID,
		},
		{
			Title:           "Tomato Pasta",
			Description:     "Weeknight pasta with tomato sauce",
			Ingredients:     "pasta, tomato, garlic, olive oil, basil",
			Instructions:    "Boil pasta, simmer sauce, combine.",
			Category:        "Main Course",
			PreparationTime: 10,
			CookingTime:     20,
			Servings:        2,
			UserID:          demo.ID,
		},
		{
			Title:           "Chocolate Mousse",
			Description:     "Airy dark chocolate mousse",
			Ingredients:     "chocolate, egg, cream, sugar",
			Instructions:    "Melt, fold, chill overnight.",
			Category:        "Dessert",
			PreparationTime: 25,
			CookingTime:     0,
			Servings:        6,
			UserID:          demo.ID,
		},
	}
	for _, recipe := range recipes {
		db.Create(&recipe)
	}
	log.Info("Database seeded successfully")
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	// Initialize Gin router
	router := gin.Default()

	// Define routes
	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	jwtSecret := []byte(configuration.JWTSecret)

	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// OAuth2 endpoints
	router.POST("/oauth/token", oauthService.HandleToken)
	router.GET("/oauth/authorize", oauthService.HandleAuthorize)

	v1 := router.Group("/api/v1")
	{
		// Authentication routes
		authApi := v1.Group("/auth")
		{
			authApi.POST("/register", authController.Register)
			authApi.POST("/login", authController.Login)
		}

		// Discovery endpoints: read-only listings across all users' recipes
		publicApi := v1.Group("/public")
		{
			publicApi.GET("/recipes/categories/:category", recipeController.RecipesByCategory)
			publicApi.GET("/recipes/ingredients/:ingredient", recipeController.RecipesByIngredient)
			publicApi.GET("/recipes/by-ingredients", recipeController.RecipesByIngredients)
			publicApi.GET("/recipes/highest-rated", recipeController.HighestRated)
			publicApi.GET("/recipes/most-popular", recipeController.MostPopular)
		}

		// Protected routes (requires JWT authentication)
		protectedApi := v1.Group("/protected")
		protectedApi.Use(middleware.JWTAuth(jwtSecret))
		{
			protectedApi.GET("/users", userController.ListUsers)
			protectedApi.GET("/users/:id", userController.GetUser)
			protectedApi.PUT("/users/:id", middleware.RequireSelf("id"), userController.UpdateUser)
			protectedApi.DELETE("/users/:id", middleware.RequireSelf("id"), userController.DeleteUser)

			protectedApi.GET("/recipes", recipeController.ListMyRecipes)
			protectedApi.POST("/recipes", recipeController.CreateRecipe)
			protectedApi.GET("/recipes/:id", recipeController.GetRecipeByID)
			protectedApi.PUT("/recipes/:id", recipeController.UpdateRecipe)
			protectedApi.DELETE("/recipes/:id", recipeController.DeleteRecipe)
			protectedApi.POST("/recipes/:id/rate", ratingController.RateRecipe)
			protectedApi.GET("/recipes/:id/rate", ratingController.ListRatings)

			// Combined filter endpoint; lives outside /recipes because Gin
			// does not allow static siblings of the :id parameter
			protectedApi.GET("/search", recipeController.FilterRecipes)

			protectedApi.POST("/clients", clientController.CreateClient)
			protectedApi.GET("/clients", clientController.ListClients)
			protectedApi.DELETE("/clients/:id", clientController.DeleteClient)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-recipe-api",
	})
}
