package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teamtasks/internal/config"
	"teamtasks/internal/handler"
	"teamtasks/internal/middleware"
	"teamtasks/internal/model"
	"teamtasks/internal/repository"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate schema: %w", err)
	}

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	companyHandler := handler.NewCompanyHandler(companyRepo)
	teamHandler := handler.NewTeamHandler(teamRepo, companyRepo, membershipRepo, userRepo, activityRepo)
	taskHandler := handler.NewTaskHandler(taskRepo, membershipRepo, activityRepo)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/me", userHandler.Me)

		// Company routes
		authorized.POST("/companies", companyHandler.Create)
		authorized.GET("/companies", companyHandler.GetAll)
		authorized.GET("/companies/:id", companyHandler.GetByID)
		authorized.PUT("/companies/:id", companyHandler.Update)
		authorized.DELETE("/companies/:id", companyHandler.Delete)

		// Team routes
		authorized.POST("/teams", teamHandler.Create)
		authorized.GET("/teams", teamHandler.GetAll)
		authorized.GET("/teams/:id", teamHandler.GetByID)
		authorized.PUT("/teams/:id", teamHandler.Update)
		authorized.DELETE("/teams/:id", teamHandler.Delete)

		// Membership routes
		authorized.POST("/teams/:id/members", teamHandler.AddMember)
		authorized.DELETE("/teams/:id/members/:user_id", teamHandler.RemoveMember)
		authorized.PATCH("/teams/:id/members/:user_id/role", teamHandler.ChangeRole)
		authorized.GET("/teams/:id/activity", teamHandler.GetActivity)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.GetAll)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/assign", taskHandler.Assign)
	}
	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Team{},
		&model.Membership{},
		&model.Task{},
		&model.TaskAssignment{},
		&model.ActivityLog{},
	)
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
