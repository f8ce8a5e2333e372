package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/internal/db"
	"github.com/ikkim/photoshare-backend/internal/middleware"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthCheckTimeout = 3 * time.Second

type HealthController struct {
	db    *gorm.DB
	redis *goredis.Client // nil when redis is disabled
}

func NewHealthController(conn *gorm.DB, redisClient *goredis.Client) *HealthController {
	return &HealthController{db: conn, redis: redisClient}
}

// Liveness GET /health
func (ctrl *HealthController) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Photo sharing API is running",
	})
}

// Check verifies the database and, when enabled, redis
// GET /api/healthchecker
func (ctrl *HealthController) Check(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := db.Ping(ctx, ctrl.db); err != nil {
		log.Error("Database health check failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Error connecting to the database",
		})
		return
	}

	if ctrl.redis != nil {
		if err := ctrl.redis.Ping(ctx).Err(); err != nil {
			log.Error("Redis health check failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error connecting to redis",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the photo sharing API",
	})
}
