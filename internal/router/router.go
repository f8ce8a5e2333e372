package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/photoshare-backend/config"
	"github.com/ikkim/photoshare-backend/internal/app/controller"
	"github.com/ikkim/photoshare-backend/internal/app/model"
	"github.com/ikkim/photoshare-backend/internal/middleware"
)

type Router struct {
	authController           *controller.AuthController
	userController           *controller.UserController
	photoController          *controller.PhotoController
	transformationController *controller.TransformationController
	tagController            *controller.TagController
	commentController        *controller.CommentController
	ratingController         *controller.RatingController
	healthController         *controller.HealthController
	authMiddleware           *middleware.AuthMiddleware
	authLimiter              middleware.Limiter // nil disables the per-IP limit on auth endpoints
	config                   *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	photoController *controller.PhotoController,
	transformationController *controller.TransformationController,
	tagController *controller.TagController,
	commentController *controller.CommentController,
	ratingController *controller.RatingController,
	healthController *controller.HealthController,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter middleware.Limiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:           authController,
		userController:           userController,
		photoController:          photoController,
		transformationController: transformationController,
		tagController:            tagController,
		commentController:        commentController,
		ratingController:         ratingController,
		healthController:         healthController,
		authMiddleware:           authMiddleware,
		authLimiter:              authLimiter,
		config:                   cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.healthController.Liveness)

	staff := r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleModerator)
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)
	limited := middleware.RateLimitByIP(r.authLimiter)

	api := router.Group("/api")
	{
		api.GET("/healthchecker", r.healthController.Check)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", limited, r.authController.Signup)
			auth.POST("/login", limited, r.authController.Login)
			auth.GET("/refresh_token", r.authController.RefreshToken)
			auth.GET("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.POST("/forget_password", limited, r.authController.ForgotPassword)
			auth.POST("/reset_password", limited, r.authController.ResetPassword)
		}

		api.PUT("/user", r.authMiddleware.Authenticate(), r.userController.Update)
		user := api.Group("/user")
		{
			user.GET("/profile/:username", r.userController.Profile)

			me := user.Group("")
			me.Use(r.authMiddleware.Authenticate())
			{
				me.GET("/current", r.userController.Current)
				me.PATCH("/avatar", r.userController.UpdateAvatar)
				me.PATCH("/reset_password", r.userController.ChangePassword)
				me.GET("/photos", r.userController.Photos)
				me.GET("/comments", r.userController.Comments)

				me.GET("/all", staff, r.userController.All)
				me.GET("/roles", adminOnly, r.userController.Roles)
				me.PATCH("/change_role", adminOnly, r.userController.ChangeRole)
				me.PATCH("/block", adminOnly, r.userController.Block)
			}
		}

		photos := api.Group("/photos")
		{
			photos.GET("", r.photoController.List)
			photos.GET("/:photo_id", r.photoController.Get)
			photos.GET("/:photo_id/download", r.photoController.Download)
			photos.GET("/:photo_id/transformations", r.transformationController.ListByPhoto)
			photos.GET("/:photo_id/comments/ws",
				r.authMiddleware.OptionalAuthenticate(),
				r.commentController.Stream,
			)

			photos.POST("", r.authMiddleware.Authenticate(), r.photoController.Create)
			photos.PUT("/:photo_id", r.authMiddleware.Authenticate(), r.photoController.Update)
			photos.DELETE("/:photo_id", r.authMiddleware.Authenticate(), r.photoController.Delete)
			photos.POST("/:photo_id/transformations",
				r.authMiddleware.Authenticate(),
				r.transformationController.Create,
			)
		}

		transformations := api.Group("/transformations")
		{
			transformations.GET("/:id", r.transformationController.Get)
			transformations.GET("/:id/qrcode", r.transformationController.GetQrCode)
			transformations.DELETE("/:id", r.authMiddleware.Authenticate(), r.transformationController.Delete)
			transformations.POST("/:id/qrcode", r.authMiddleware.Authenticate(), r.transformationController.CreateQrCode)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", r.tagController.ListTags)
			tags.GET("/tags_all", r.tagController.ListTags)
			tags.GET("/:tag_id", r.tagController.GetTag)
			tags.POST("", r.authMiddleware.Authenticate(), r.tagController.CreateTag)
			tags.PUT("/:tag_id", r.authMiddleware.Authenticate(), staff, r.tagController.UpdateTag)
			tags.DELETE("/:tag_id", r.authMiddleware.Authenticate(), adminOnly, r.tagController.DeleteTag)
		}

		comments := api.Group("/comments")
		{
			comments.GET("/:photo_id", r.commentController.ListByPhoto)
			comments.POST("", r.authMiddleware.Authenticate(), r.commentController.Create)
			comments.PUT("/:comment_id", r.authMiddleware.Authenticate(), r.commentController.Update)
			comments.DELETE("/:comment_id", r.authMiddleware.Authenticate(), staff, r.commentController.Delete)
		}

		rating := api.Group("/rating")
		{
			rating.GET("/:photo_id", r.ratingController.Summary)
			rating.POST("/:photo_id", r.authMiddleware.Authenticate(), r.ratingController.Rate)
			rating.DELETE("/:photo_id", r.authMiddleware.Authenticate(), r.ratingController.DeleteOwn)
			rating.GET("/:photo_id/all", r.authMiddleware.Authenticate(), staff, r.ratingController.List)
			rating.DELETE("/:photo_id/users/:user_id",
				r.authMiddleware.Authenticate(),
				staff,
				r.ratingController.DeleteForUser,
			)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, X-Request-ID, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
