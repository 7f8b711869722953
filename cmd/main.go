package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NicoMontoya/tennisworld/config"
	"github.com/NicoMontoya/tennisworld/db"
	"github.com/NicoMontoya/tennisworld/handlers"
	"github.com/NicoMontoya/tennisworld/realtime"
	"github.com/NicoMontoya/tennisworld/repositories"
	"github.com/NicoMontoya/tennisworld/routes"
	"github.com/NicoMontoya/tennisworld/scoring"
	"github.com/NicoMontoya/tennisworld/services"
	"github.com/NicoMontoya/tennisworld/storage"
)

const (
	schedulerInterval          = 30 * time.Second
	leaderboardRefreshInterval = 5 * time.Minute
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	logger.Info("redis client initialized", slog.String("addr", cfg.RedisAddr))

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("object storage not configured, uploads disabled")
	}

	wsHub := realtime.NewHub()
	go wsHub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	pairRecordRepo := repositories.NewPostgresPairRecordRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)

	scoringCfg := scoring.DefaultScoringConfig()
	if cfg.ScoringRoundPoints != nil {
		scoringCfg.RoundPoints = scoring.RoundPointsTable(cfg.ScoringRoundPoints)
	}
	if cfg.ScoringChampionBonus > 0 {
		scoringCfg.ChampionBonus = cfg.ScoringChampionBonus
	}
	if cfg.ScoringBasePoints > 0 {
		scoringCfg.BasePoints = cfg.ScoringBasePoints
	}
	if cfg.ScoringConfidencePerLevel > 0 {
		scoringCfg.ConfidencePerLevel = cfg.ScoringConfidencePerLevel
	}
	if cfg.ScoringExactScoreBonus > 0 {
		scoringCfg.ExactScoreBonus = cfg.ScoringExactScoreBonus
	}

	emailService := services.NewEmailService(cfg)
	confirmationURLFmt := cfg.PublicBaseURL + "/auth/confirm?token=%s"
	authService := services.NewAuthService(userRepo, emailService, confirmationURLFmt, logger)
	userService := services.NewUserService(userRepo, uploader, logger)
	playerService := services.NewPlayerService(playerRepo, uploader)
	headToHeadService := services.NewHeadToHeadService(pairRecordRepo, dbConn)
	bracketService := services.NewBracketService(dbConn, bracketRepo, wsHub, scoringCfg, logger)
	leaderboardService := services.NewLeaderboardService(predictionRepo, userRepo, tournamentRepo, redisClient, wsHub, logger)
	predictionService := services.NewPredictionService(predictionRepo, matchRepo)
	matchService := services.NewMatchService(
		dbConn,
		matchRepo,
		tournamentRepo,
		predictionRepo,
		bracketRepo,
		headToHeadService,
		bracketService,
		leaderboardService,
		wsHub,
		scoringCfg,
		logger,
	)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		matchRepo,
		userRepo,
		bracketService,
		uploader,
		logger,
	)
	logger.Info("services initialized")

	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament status scheduler started", slog.Duration("interval", schedulerInterval))

		if err := tournamentService.AutoUpdateStatusesByDates(context.Background()); err != nil {
			logger.Error("scheduler: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := tournamentService.AutoUpdateStatusesByDates(context.Background()); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(leaderboardRefreshInterval)
		defer ticker.Stop()
		logger.Info("leaderboard refresh started", slog.Duration("interval", leaderboardRefreshInterval))

		for range ticker.C {
			now := time.Now().UTC()
			ctx := context.Background()
			if _, err := leaderboardService.AllTimeLeaderboard(ctx); err != nil {
				logger.Error("leaderboard refresh: all-time rebuild failed", slog.Any("error", err))
			}
			if _, err := leaderboardService.SeasonLeaderboard(ctx, now.Year()); err != nil {
				logger.Error("leaderboard refresh: season rebuild failed", slog.Any("error", err))
			}
			if _, err := leaderboardService.MonthlyLeaderboard(ctx, now.Year(), now.Month()); err != nil {
				logger.Error("leaderboard refresh: monthly rebuild failed", slog.Any("error", err))
			}
		}
	}()

	router := routes.InitRoutes(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		User:        handlers.NewUserHandler(userService),
		Player:      handlers.NewPlayerHandler(playerService),
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Match:       handlers.NewMatchHandler(matchService),
		HeadToHead:  handlers.NewHeadToHeadHandler(headToHeadService),
		Prediction:  handlers.NewPredictionHandler(predictionService),
		Bracket:     handlers.NewBracketHandler(bracketService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, logger),
	}, cfg.JWTSecretKey)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
