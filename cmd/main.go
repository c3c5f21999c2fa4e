package main

import (
	"fmt"
	"os"
	"time"

	"github.com/glimpse-social/glimpse-backend/internal/db"
	"github.com/glimpse-social/glimpse-backend/internal/handlers"
	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/repos"
	"github.com/glimpse-social/glimpse-backend/internal/server"
	"github.com/glimpse-social/glimpse-backend/internal/services"
	"github.com/glimpse-social/glimpse-backend/internal/utils"
	"github.com/glimpse-social/glimpse-backend/internal/vectorstore"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	momentRepo := repos.NewMomentRepo(thePG, log)
	momentEmbeddingRepo := repos.NewMomentEmbeddingRepo(thePG, log)
	userEmbeddingRepo := repos.NewUserEmbeddingRepo(thePG, log)
	interestProfileRepo := repos.NewInterestProfileRepo(thePG, log)
	momentSummaryRepo := repos.NewMomentSummaryRepo(thePG, log)

	// External clients
	log.Info("Setting up external clients from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	vectorStore, err := vectorstore.NewQdrantStore(log)
	if err != nil {
		log.Error("Could not init Qdrant vector store", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	scoreTTLMinutes := utils.GetEnvAsInt("SCORE_CACHE_TTL_MINUTES", 30, log)
	scoreCache := services.NewScoreCache(time.Duration(scoreTTLMinutes) * time.Minute)

	embeddingService := services.NewEmbeddingService(thePG, log, momentEmbeddingRepo, userEmbeddingRepo, vectorStore, openaiClient)
	interestProfileService := services.NewInterestProfileService(thePG, log, interestProfileRepo, userRepo, momentRepo, openaiClient)
	summaryService := services.NewSummaryService(thePG, log, momentSummaryRepo, momentRepo, openaiClient)
	similarityService := services.NewSimilarityService(log, embeddingService, vectorStore)
	relevanceScorer := services.NewRelevanceScorer(log, scoreCache, summaryService, openaiClient)

	minCoverage := utils.GetEnvAsFloat("RANKING_MIN_VECTOR_COVERAGE", services.DefaultMinVectorCoverage, log)
	rankingService := services.NewRankingService(log, embeddingService, similarityService, interestProfileService, relevanceScorer, minCoverage)

	// Handlers
	log.Info("Setting up handlers from main...")
	feedHandler := handlers.NewFeedHandler(log, momentRepo, rankingService)
	momentHandler := handlers.NewMomentHandler(log, momentRepo, embeddingService, summaryService, scoreCache)
	userHandler := handlers.NewUserHandler(log, userRepo, momentRepo, embeddingService, interestProfileService)
	adminHandler := handlers.NewAdminHandler(log, scoreCache)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		FeedHandler:   feedHandler,
		MomentHandler: momentHandler,
		UserHandler:   userHandler,
		AdminHandler:  adminHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
