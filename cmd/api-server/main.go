package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cinemax/internal/api/dto"
	"cinemax/internal/api/handler"
	"cinemax/internal/api/middleware"
	"cinemax/internal/api/service"
	"cinemax/internal/cache"
	"cinemax/internal/config"
	"cinemax/internal/logging"
	"cinemax/internal/playback"
	"cinemax/internal/providers/anilist"
	"cinemax/internal/providers/tmdb"
)

func main() {
	// 1️⃣ Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// 2️⃣ Catalog providers
	animeClient := anilist.NewClient(cfg.AniListAPIURL, logger)
	screenClient := tmdb.NewClient(cfg.TMDBAPIURL, cfg.TMDBImageBaseURL, cfg.TMDBAPIKey, logger)

	// revalidation cache is optional; without redis every render fetches live
	store, err := cache.New(cfg.RedisURL, cfg.CacheTTLDuration(), logger)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, listings will not be cached")
		store = nil
	} else {
		defer store.Close()
	}

	locator := playback.Locator{
		AnimeBase:  cfg.AnimeEmbedBaseURL,
		StreamBase: cfg.StreamEmbedBaseURL,
		PreferIMDB: cfg.EmbedPreferIMDBID,
	}

	svc := service.NewCatalogService(
		animeClient,
		screenClient,
		store,
		locator,
		dto.ImageResolver(screenClient.ImageURL),
		logger,
	)

	// 3️⃣ Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.AccessLog(logger))

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "API is alive ✅",
		})
	})

	api := r.Group("/api")
	handler.NewCatalogHandler(svc, logger).RegisterRoutes(api)
	handler.NewDisclaimerHandler().RegisterRoutes(api)

	ws := r.Group("/ws")
	ws.GET("/suggest", handler.SuggestStream(svc, cfg.SuggestQuietPeriod, logger))

	httpServer := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Infof("🚀 Server running at %s", httpServer)
	if err := r.Run(httpServer); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
