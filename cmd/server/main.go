package main

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"alpr-service/internal/config"
	"alpr-service/internal/db"
	apphttp "alpr-service/internal/http"
	"alpr-service/internal/repository"
	"alpr-service/internal/service"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	log.Info().Msg("starting alpr config and analytics service")

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if err := db.HealthCheck(gdb); err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	log.Info().Str("database", cfg.Database.Name).Msg("database connected and migrated")

	cameraRepo := repository.NewCameraRepository(gdb)
	analyticsRepo := repository.NewAnalyticsRepository(gdb)

	cameraService := service.NewCameraService(cameraRepo, log)
	analyticsService := service.NewAnalyticsService(analyticsRepo, log)
	capturer := service.NewFFmpegCapturer(cfg.Capture.FFmpegPath, cfg.Capture.Timeout, log)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(apphttp.RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg)))

	handler := apphttp.NewHandler(
		cameraService,
		analyticsService,
		capturer,
		func() error { return db.HealthCheck(gdb) },
		log,
	)
	handler.Register(router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("http server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}

	if cfg.AllowAllOrigins() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	return corsCfg
}
