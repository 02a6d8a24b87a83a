package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/api/handlers"
	"github.com/codyseavey/cardvault/internal/config"
	"github.com/codyseavey/cardvault/internal/services"
)

// SetupRouter wires the HTTP surface: CRUD and browsing endpoints, CSV
// import/export, media serving, health, and metrics.
func SetupRouter(cfg config.Config, db *gorm.DB, mediaStorage *services.MediaStorageService) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.Use(metricsMiddleware())
	router.Use(rateLimitMiddleware(rate.Limit(50), 100))

	catalog := services.NewCatalogService(db, cfg.Tenant)

	cardHandler := handlers.NewCardHandler(db, catalog, cfg.Tenant)
	ownershipHandler := handlers.NewOwnershipHandler(db, cfg.Tenant)
	priceHandler := handlers.NewPriceHandler(db, cfg.Tenant)
	mediaHandler := handlers.NewMediaHandler(db, mediaStorage, cfg.Tenant)
	importHandler := handlers.NewImportHandler(db, cfg.Tenant)
	exportHandler := handlers.NewExportHandler(db, cfg.Tenant)

	// Uploaded photos
	if mediaStorage != nil {
		router.Static("/media", mediaStorage.GetStorageDir())
	}

	v1 := router.Group("/v1")
	{
		cards := v1.Group("/cards")
		{
			cards.GET("", cardHandler.ListCards)
			cards.POST("", cardHandler.CreateCard)
			cards.GET("/products", cardHandler.ListProducts)
			cards.GET("/:card_uuid", cardHandler.GetCard)
			cards.PATCH("/:card_uuid", cardHandler.UpdateCard)
			cards.DELETE("/:card_uuid", cardHandler.DeleteCard)
			cards.POST("/:card_uuid/wishlist", cardHandler.SetWishlist)
		}

		ownership := v1.Group("/ownership")
		{
			ownership.GET("", ownershipHandler.ListOwnership)
			ownership.POST("", ownershipHandler.CreateOwnership)
			ownership.DELETE("/:ownership_uuid", ownershipHandler.DeleteOwnership)
		}

		prices := v1.Group("/prices")
		{
			prices.GET("", priceHandler.ListPrices)
			prices.POST("", priceHandler.CreatePrice)
			prices.DELETE("/:price_uuid", priceHandler.DeletePrice)
		}

		media := v1.Group("/media")
		{
			media.GET("", mediaHandler.ListMedia)
			media.POST("/upload", mediaHandler.UploadMedia)
			media.GET("/latest", mediaHandler.LatestMedia)
			media.GET("/pair", mediaHandler.MediaPair)
			media.DELETE("/:media_uuid", mediaHandler.DeleteMedia)
		}

		v1.POST("/import/cards.csv", importHandler.ImportCardsCSV)
		v1.GET("/export/cards.csv", exportHandler.ExportCardsCSV)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.AppEnv})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
