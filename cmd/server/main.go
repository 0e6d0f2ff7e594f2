package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rev-saas-api/internal/config"
	"rev-saas-api/internal/handler"
	"rev-saas-api/internal/middleware"
	mongorepo "rev-saas-api/internal/repository/mongo"
	"rev-saas-api/internal/router"
	"rev-saas-api/internal/service"
)

func main() {
	cfg := config.Load()

	mongoClient, err := mongorepo.NewClient(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Close(ctx); err != nil {
			log.Printf("error closing Mongo client: %v", err)
		}
	}()

	db := mongoClient.DB()

	// Repositories, bottom-up.
	userRepo := mongorepo.NewUserRepository(db)
	agencyRepo := mongorepo.NewAgencyRepository(db)
	creatorRepo := mongorepo.NewCreatorRepository(db)
	postRepo := mongorepo.NewPostRepository(db)
	snapshotRepo := mongorepo.NewSnapshotRepository(db)
	rollupRepo := mongorepo.NewRollupRepository(db)
	fanRepo := mongorepo.NewFanRepository(db)
	revenueRepo := mongorepo.NewRevenueRepository(db)
	confounderRepo := mongorepo.NewConfounderRepository(db)

	// Analytics core, in spec.md §4's dependency order.
	baselineBuilder := service.NewBaselineBuilder(rollupRepo)
	confidenceScorer := service.NewConfidenceScorer()
	attributionEngine := service.NewAttributionEngine(
		snapshotRepo, fanRepo, revenueRepo, confounderRepo, creatorRepo, agencyRepo,
		baselineBuilder, confidenceScorer,
	)
	recommendationEngine := service.NewRecommendationEngine(attributionEngine, postRepo, creatorRepo, agencyRepo)

	// Ambient services.
	jwtService := service.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, jwtService)
	encryptionService := service.NewEncryptionService(cfg.EncryptionKey)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	healthHandler := handler.NewHealthHandler()
	authHandler := handler.NewAuthHandler(authService)
	agencyHandler := handler.NewAgencyHandler(agencyRepo, encryptionService)
	creatorHandler := handler.NewCreatorHandler(creatorRepo)
	snapshotHandler := handler.NewSnapshotHandler(postRepo, snapshotRepo, fanRepo, revenueRepo)
	confounderHandler := handler.NewConfounderHandler(confounderRepo)
	analysisHandler := handler.NewAnalysisHandler(attributionEngine, time.Duration(cfg.AnalysisSoftDeadlineSeconds)*time.Second)
	recommendationHandler := handler.NewRecommendationHandler(recommendationEngine, creatorRepo)

	r := router.NewRouter(
		healthHandler,
		authHandler,
		agencyHandler,
		creatorHandler,
		snapshotHandler,
		confounderHandler,
		analysisHandler,
		recommendationHandler,
		authMiddleware,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
