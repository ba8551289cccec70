package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/el-tafouk/eltafouk-api/config"
	"github.com/el-tafouk/eltafouk-api/controllers"
	"github.com/el-tafouk/eltafouk-api/metrics"
	"github.com/el-tafouk/eltafouk-api/middleware"
	"github.com/el-tafouk/eltafouk-api/models"
	"github.com/el-tafouk/eltafouk-api/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	configureLogging(cfg)
	log.Info("Starting El Tafouk API server...")

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Book{},
		&models.Order{},
		&models.OrderItem{},
		&models.AdminUser{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database migration completed successfully")

	// Public browsing can be served from the in-memory demo dataset, but the
	// order path always reserves stock against the database.
	if cfg.UseMockCatalog() {
		services.InitCatalog(services.NewMockCatalog())
		log.Info("Catalog browsing served from the demo dataset")
	} else {
		services.InitCatalog(services.NewGormCatalog(db))
	}
	services.InitOrderService(db, services.NewGormCatalog(db))

	if _, err := services.InitRateLimiter(cfg.RedisURL); err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	if cfg.RedisURL != "" {
		log.Info("Checkout rate limit backed by Redis")
	}

	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
	} else {
		// No bucket configured; covers land in process memory only. Fine for
		// local development, useless in production.
		log.Warn("AWS_S3_BUCKET not set, cover uploads are stored in memory")
		services.InitImageService(services.NewMockS3Service())
	}

	router := buildRouter(cfg)

	addr := ":" + cfg.Port
	log.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

// buildRouter wires middleware and every route group. Shared with the
// integration and acceptance tests so they exercise the real routing table.
func buildRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.PrometheusMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = false
	corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	corsConfig.AllowCredentials = true
	corsConfig.AddAllowMethods(http.MethodPatch)
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		v1.GET("/books", controllers.GetBooks)
		v1.GET("/books/:id", controllers.GetBook)

		v1.POST("/orders", middleware.CheckoutRateLimit(), controllers.CreateOrder)
		v1.GET("/orders/:orderId", controllers.GetOrderTracking)

		admin := v1.Group("/admin")
		{
			admin.POST("/auth/login", controllers.AdminLogin)
			admin.POST("/auth/logout", controllers.AdminLogout)

			authed := admin.Group("", middleware.RequireAdmin())
			{
				authed.GET("/auth/me", controllers.AdminMe)

				authed.GET("/orders", controllers.AdminListOrders)
				authed.GET("/orders/:orderId", controllers.AdminGetOrder)
				authed.PATCH("/orders/:orderId", controllers.AdminUpdateOrderStatus)

				authed.GET("/stats", controllers.AdminGetStats)
				authed.GET("/inventory/alerts", controllers.AdminInventoryAlerts)

				authed.GET("/books", controllers.AdminListBooks)
				authed.GET("/books/:id", controllers.AdminGetBook)

				// Catalog writes are off-limits to editors.
				writers := authed.Group("", middleware.RequireRole(
					models.AdminRoleSuperAdmin,
					models.AdminRoleAdmin,
				))
				{
					writers.POST("/books", controllers.AdminCreateBook)
					writers.PUT("/books/:id", controllers.AdminUpdateBook)
					writers.DELETE("/books/:id", controllers.AdminDeleteBook)
					writers.PATCH("/books/:id/stock", controllers.AdminUpdateBookStock)
					writers.POST("/upload", controllers.UploadCover)
				}
			}
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "El Tafouk API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
