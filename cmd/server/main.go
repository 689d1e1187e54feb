package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamehub/internal/api"
	"gamehub/internal/app/service"
	"gamehub/internal/app/worker"
	"gamehub/internal/common/security"
	"gamehub/internal/domain/repository"
	"gamehub/internal/platform/cache"
	"gamehub/internal/platform/config"
	"gamehub/internal/platform/database"
	"gamehub/internal/platform/mailer"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	if len(config.AppConfig.JWTKey) == 0 {
		log.Fatal("JWT_SECRET must be configured")
	}
	codec := security.NewTokenCodec(config.AppConfig.JWTKey, config.AppConfig.JWTExp)

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 3. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	forumRepo := repository.NewPgForumRepository(database.DB)
	settingsRepo := repository.NewPgSettingsRepository(database.DB)

	// 5. Initialize Services
	dispatcher := mailer.NewSMTPDispatcher(config.AppConfig)
	authService := service.NewAuthService(userRepo, codec, config.AppConfig)
	discordService := service.NewDiscordService(userRepo, authService, config.AppConfig)
	recoveryService := service.NewRecoveryService(userRepo, dispatcher, config.AppConfig)
	serverListService := service.NewServerListService(cache.RDB, config.AppConfig)
	forumService := service.NewForumService(forumRepo)
	settingsService := service.NewSettingsService(settingsRepo)

	// 6. Initialize Token Reaper (as a goroutine)
	reaper := worker.NewTokenReaper(userRepo, time.Duration(config.AppConfig.TokenReaperIntervalMin)*time.Minute)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go reaper.Start(workerCtx)
	fmt.Println("Token reaper started.")

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService,
		discordService,
		recoveryService,
		serverListService,
		forumService,
		settingsService,
		userRepo,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
