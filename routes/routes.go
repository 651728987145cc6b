package routes

import (
	"net/http"
	"time"

	"blog-api/handlers"
	"blog-api/helper"
	"blog-api/middleware"
	"blog-api/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Post    *handlers.PostHandler
	Comment *handlers.CommentHandler
	Like    *handlers.LikeHandler
	Search  *handlers.SearchHandler
	Tag     *handlers.TagHandler
	Upload  *handlers.UploadHandler
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	} else {
		config.AllowOrigins = origins
	}
	return config
}

// SetupRouter builds the engine with every route of the API. The caller
// chooses the base engine so tests can skip gin's default logging.
func SetupRouter(router *gin.Engine, h Handlers, verifier middleware.TokenVerifier, corsOrigins []string) *gin.Engine {
	router.Use(cors.New(corsConfig(corsOrigins)))

	httpHelper := &helper.HTTPHelper{}
	router.NoRoute(func(c *gin.Context) {
		httpHelper.SendNotFoundError(c, "Route not found", httpHelper.EmptyJsonMap())
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	requireAuth := middleware.AuthMiddleware(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", requireAuth, h.Auth.Logout)
			auth.GET("/profile", requireAuth, h.Auth.GetProfile)
		}

		users := v1.Group("/users")
		{
			users.POST("", requireAuth, middleware.RequireRole(models.RoleAdmin), h.User.CreateUser)
			users.GET("", h.User.GetUsers)
			users.GET("/:id", h.User.GetUser)
			users.PATCH("/:id", requireAuth, h.User.UpdateUser)
			users.DELETE("/:id", requireAuth, middleware.RequireRole(models.RoleAdmin), h.User.DeleteUser)
			users.PATCH("/:id/avatar", requireAuth, h.User.UploadAvatar)
		}

		posts := v1.Group("/posts")
		{
			posts.POST("", requireAuth, h.Post.CreatePost)
			posts.GET("", optionalAuth, h.Post.GetPosts)
			posts.GET("/published", h.Post.GetPublishedPosts)
			posts.GET("/slug/:slug", optionalAuth, h.Post.GetPostBySlug)
			posts.GET("/author/:authorId", requireAuth, h.Post.GetPostsByAuthor)
			posts.GET("/:id", optionalAuth, h.Post.GetPost)
			posts.GET("/:id/related", optionalAuth, h.Post.GetRelatedPosts)
			posts.PATCH("/:id", requireAuth, h.Post.UpdatePost)
			posts.DELETE("/:id", requireAuth, h.Post.DeletePost)
		}

		comments := v1.Group("/comments")
		{
			comments.POST("", requireAuth, h.Comment.CreateComment)
			comments.GET("", h.Comment.GetComments)
			comments.GET("/post/:postId", h.Comment.GetPostComments)
			comments.GET("/:id", h.Comment.GetComment)
			comments.GET("/:id/thread", h.Comment.GetThread)
			comments.PATCH("/:id", requireAuth, h.Comment.UpdateComment)
			comments.PATCH("/:id/moderate", requireAuth,
				middleware.RequireRole(models.RoleAdmin, models.RoleModerator), h.Comment.ModerateComment)
			comments.DELETE("/:id", requireAuth, h.Comment.DeleteComment)
		}

		likes := v1.Group("/likes")
		{
			likes.POST("/toggle", requireAuth, h.Like.ToggleLike)
			likes.GET("/user", requireAuth, h.Like.GetUserLikes)
			likes.GET("/target/:id", h.Like.GetTargetLikes)
			likes.GET("/count/:id", h.Like.GetLikesCount)
			likes.GET("/check/:id", requireAuth, h.Like.CheckUserLiked)
			likes.POST("/check-multiple", requireAuth, h.Like.CheckMultipleUserLiked)
		}

		v1.GET("/search", h.Search.Search)

		tags := v1.Group("/tags")
		{
			tags.GET("", h.Tag.GetTags)
			tags.GET("/:id", h.Tag.GetTag)
			tags.POST("", requireAuth, middleware.RequireRole(models.RoleAdmin), h.Tag.CreateTag)
		}

		v1.POST("/upload/image", requireAuth, h.Upload.UploadImage)
	}

	return router
}
