package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-api/config"
	"blog-api/handlers"
	"blog-api/helper"
	"blog-api/repositories"
	"blog-api/routes"
	"blog-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	uploader, err := services.NewImageUploader(cfg.CloudinaryURL, cfg.UploadFolder)
	if err != nil {
		log.Fatalf("Failed to initialize uploader: %v", err)
	}
	if cfg.CloudinaryURL == "" {
		log.Println("CLOUDINARY_URL not set, image uploads are disabled")
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	likeRepo := repositories.NewLikeRepository(db)
	tagRepo := repositories.NewTagRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo, uploader)
	authService := services.NewAuthService(userService, cfg.JWT)
	tagService := services.NewTagService(tagRepo, postRepo)
	postService := services.NewPostService(postRepo, tagService)
	commentService := services.NewCommentService(commentRepo, postService, userService)
	likeService := services.NewLikeService(likeRepo, postService, commentService)
	searchService := services.NewSearchService(postRepo)

	// Initialize handlers
	httpHelper := helper.NewHTTPHelper()
	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, httpHelper),
		User:    handlers.NewUserHandler(userService, httpHelper),
		Post:    handlers.NewPostHandler(postService, httpHelper),
		Comment: handlers.NewCommentHandler(commentService, httpHelper),
		Like:    handlers.NewLikeHandler(likeService, httpHelper),
		Search:  handlers.NewSearchHandler(searchService, httpHelper),
		Tag:     handlers.NewTagHandler(tagService, httpHelper),
		Upload:  handlers.NewUploadHandler(uploader, httpHelper),
	}

	router := routes.SetupRouter(gin.Default(), h, authService, cfg.CorsOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server exited")
}
