package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"bitbucket.org/vetadata/iga_backend/config"
	"bitbucket.org/vetadata/iga_backend/igasync"
	"bitbucket.org/vetadata/iga_backend/middlewares"
	"bitbucket.org/vetadata/iga_backend/models"
)

const defaultPort = "8080"

// RateLimiter throttles by client IP using a fixed redis window.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func getRedisClient(redisAddress string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func registerRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", loginHandler())
		auth.POST("/logout", middlewares.RequireAuth(), logoutHandler())
		auth.GET("/me", middlewares.RequireAuth(), currentUserHandler())
		auth.POST("/change-password", middlewares.RequireAuth(), changePasswordHandler())
		auth.POST("/avatar/sign", middlewares.RequireAuth(), signAvatarUploadHandler())
		auth.POST("/avatar", middlewares.RequireAuth(), avatarUploadHandler())
	}

	reports := r.Group("/reports", middlewares.RequireAuth())
	{
		reports.GET("/dashboard", dashboardHandler())
		reports.GET("/collections", collectionsReportHandler())
		reports.GET("/distribution", distributionReportHandler())
		reports.GET("/apposhment", apposhmentReportHandler())
	}

	exports := r.Group("/exports", middlewares.RequireAuth())
	{
		exports.GET("/collections", exportCollectionsHandler())
		exports.GET("/distribution", exportDistributionHandler())
		exports.GET("/archives", exportArchivesHandler())
		exports.GET("/archives/:id/download", exportArchiveDownloadHandler())
	}

	r.GET("/collections/:id", middlewares.RequireAuth(), collectionHandler())

	apposhments := r.Group("/apposhments", middlewares.RequireAuth())
	{
		apposhments.GET("", listApposhmentsHandler())
		apposhments.GET("/:id", getApposhmentHandler())
		apposhments.POST("", middlewares.RequireRoles(models.RoleAdmin, models.RoleDF, models.RoleChiefAccountant), createApposhmentHandler())
		apposhments.DELETE("/:id", middlewares.RequireAdmin(), deleteApposhmentHandler())
	}

	admin := r.Group("/admin", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.GET("/zones", listZonesHandler())
		admin.GET("/zones/:id", getZoneHandler())
		admin.POST("/zones", createZoneHandler())
		admin.PUT("/zones/:id", updateZoneHandler())
		admin.DELETE("/zones/:id", deleteZoneHandler())

		admin.GET("/centres", listCentresHandler())
		admin.POST("/centres", createCentreHandler())
		admin.PUT("/centres/:id", updateCentreHandler())
		admin.DELETE("/centres/:id", deleteCentreHandler())

		admin.GET("/departments", listDepartmentsHandler())
		admin.GET("/departments/:id", getDepartmentHandler())
		admin.POST("/departments", createDepartmentHandler())
		admin.PUT("/departments/:id", updateDepartmentHandler())
		admin.DELETE("/departments/:id", deleteDepartmentHandler())

		admin.GET("/customers", listCustomersHandler())
		admin.GET("/customers/:id", getCustomerHandler())
		admin.POST("/customers", createCustomerHandler())
		admin.PUT("/customers/:id", updateCustomerHandler())
		admin.DELETE("/customers/:id", deleteCustomerHandler())

		admin.GET("/gfs-codes", listGfsCodesHandler())
		admin.GET("/gfs-codes/:id", getGfsCodeHandler())
		admin.POST("/gfs-codes", createGfsCodeHandler())
		admin.PUT("/gfs-codes/:id", updateGfsCodeHandler())
		admin.DELETE("/gfs-codes/:id", deleteGfsCodeHandler())

		admin.GET("/users", listUsersHandler())
		admin.GET("/users/:id", getUserHandler())
		admin.POST("/users", createUserHandler())
		admin.PUT("/users/:id", updateUserHandler())
		admin.DELETE("/users/:id", deleteUserHandler())

		admin.GET("/api-keys", listApiKeysHandler())
		admin.POST("/api-keys", createApiKeyHandler())
		admin.DELETE("/api-keys/:id", revokeApiKeyHandler())

		admin.GET("/audit-logs", auditLogsHandler())
		admin.GET("/login-attempts", loginAttemptsHandler())

		admin.GET("/allocations", listAllocationsHandler())
		admin.POST("/allocations/publish", publishAllocationsHandler())

		admin.GET("/distribution-formulas", listDistributionFormulasHandler())
		admin.GET("/system-config/:key", getSystemConfigHandler())
		admin.PUT("/system-config", setSystemConfigHandler())
	}

	// Machine endpoints: the allocation service and the upstream push
	// trigger authenticate with an API key, not a session.
	r.POST("/pubsub", igasync.PubSubPushHandler())
	r.POST("/internal/ops/sync/run", middlewares.ApiKeyMiddleware(), syncRunHandler())
	r.GET("/internal/ops/sync/status", middlewares.ApiKeyMiddleware(), syncStatusHandler())

	r.NoRoute(customNotFoundHandler)
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until DB/Redis are ready, we return 503 for app endpoints.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist; deny all when unset.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-API-KEY")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "x-correlation-id")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.SessionMiddleware())
	r.Use(middlewares.LoaderMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	registerRoutes(r)

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations
	// as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
		if err := models.SeedAll(context.Background()); err != nil {
			logger.WithFields(logrus.Fields{"field": "seed"}).Warn("seeding failed: " + err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	igasync.StartScheduler(sigCtx)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that accumulated errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
