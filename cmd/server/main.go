package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alex-1-tech/assemcloud/internal/config"
	"github.com/alex-1-tech/assemcloud/internal/handler"
	"github.com/alex-1-tech/assemcloud/internal/middleware"
	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting assemcloud service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services, err := service.NewServices(repos, rdb, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init services", zap.Error(err))
	}
	handlers := handler.NewHandlers(services)

	if err := services.Maintenance.Start(); err != nil {
		zapLogger.Fatal("Failed to start maintenance scheduler", zap.Error(err))
	}
	defer services.Maintenance.Stop()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, services.Auth, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Role{},
		&entity.UserRole{},
		&entity.Client{},
		&entity.Manufacturer{},
		&entity.Machine{},
		&entity.MachineClient{},
		&entity.Converter{},
		&entity.Module{},
		&entity.MachineModule{},
		&entity.Part{},
		&entity.ModulePart{},
		&entity.Blueprint{},
		&entity.Task{},
		&entity.TaskAttachment{},
		&entity.TaskLink{},
		&entity.License{},
		&entity.Kalmar32{},
		&entity.Phasar32{},
		&entity.Report{},
		&entity.ChangeLog{},
	)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, auth *service.AuthService, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// No authentication required
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/login", h.Auth.Login)
			authRoutes.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret, auth))
		{
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// User administration
			users := authorized.Group("/users")
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
			}
			usersAdmin := authorized.Group("/users")
			usersAdmin.Use(middleware.RequireRole(entity.RoleAdmin))
			{
				usersAdmin.POST("", h.User.Create)
				usersAdmin.PUT("/:id", h.User.Update)
				usersAdmin.DELETE("/:id", h.User.Delete)
				usersAdmin.POST("/:id/roles", h.User.AssignRole)
				usersAdmin.DELETE("/:id/roles/:role", h.User.RemoveRole)
			}
			authorized.GET("/roles", h.User.ListRoles)

			// Clients and manufacturers
			clients := authorized.Group("/clients")
			{
				clients.GET("", h.Client.List)
				clients.POST("", h.Client.Create)
				clients.GET("/:id", h.Client.Get)
				clients.PUT("/:id", h.Client.Update)
				clients.DELETE("/:id", h.Client.Delete)
			}
			manufacturers := authorized.Group("/manufacturers")
			{
				manufacturers.GET("", h.Client.ListManufacturers)
				manufacturers.POST("", h.Client.CreateManufacturer)
				manufacturers.GET("/:id", h.Client.GetManufacturer)
				manufacturers.PUT("/:id", h.Client.UpdateManufacturer)
				manufacturers.DELETE("/:id", h.Client.DeleteManufacturer)
			}

			// Machines and their assembly trees
			machines := authorized.Group("/machines")
			{
				machines.GET("", h.Machine.List)
				machines.POST("", h.Machine.Create)
				machines.GET("/:id", h.Machine.Get)
				machines.PUT("/:id", h.Machine.Update)
				machines.DELETE("/:id", h.Machine.Delete)
				machines.GET("/:id/tree", h.Machine.Tree)
				machines.POST("/:id/import", h.Machine.ImportBOM)

				machines.GET("/:id/clients", h.Machine.ListClients)
				machines.POST("/:id/clients", h.Machine.AttachClient)
				machines.DELETE("/:id/clients/:client_id", h.Machine.DetachClient)

				machines.GET("/:id/converters", h.Machine.ListConverters)
				machines.POST("/:id/converters", h.Machine.AddConverter)
			}
			converters := authorized.Group("/converters")
			{
				converters.PUT("/:id", h.Machine.UpdateConverter)
				converters.DELETE("/:id", h.Machine.DeleteConverter)
			}

			// Modules and their part lists
			modules := authorized.Group("/modules")
			{
				modules.GET("", h.Module.List)
				modules.POST("", h.Module.Create)
				modules.GET("/:id", h.Module.Get)
				modules.PUT("/:id", h.Module.Update)
				modules.DELETE("/:id", h.Module.Delete)

				modules.GET("/:id/parts", h.Module.ListParts)
				modules.POST("/:id/parts", h.Module.AddPart)
				modules.PUT("/:id/parts/:part_id", h.Module.UpdatePart)
				modules.DELETE("/:id/parts/:part_id", h.Module.RemovePart)
			}

			// Assembly links between machines and modules
			links := authorized.Group("/machine-modules")
			{
				links.POST("", h.Module.CreateLink)
				links.PUT("/:id", h.Module.UpdateLink)
				links.DELETE("/:id", h.Module.DeleteLink)
				links.GET("/:id/tree", h.Module.Subtree)
				links.POST("/:id/import", h.Module.ImportBOM)
			}

			// Parts
			parts := authorized.Group("/parts")
			{
				parts.GET("", h.Part.List)
				parts.POST("", h.Part.Create)
				parts.GET("/:id", h.Part.Get)
				parts.PUT("/:id", h.Part.Update)
				parts.DELETE("/:id", h.Part.Delete)
			}

			// Blueprints
			blueprints := authorized.Group("/blueprints")
			{
				blueprints.GET("", h.Blueprint.List)
				blueprints.POST("", h.Blueprint.Create)
				blueprints.GET("/:id", h.Blueprint.Get)
				blueprints.PUT("/:id", h.Blueprint.Update)
				blueprints.DELETE("/:id", h.Blueprint.Delete)
				blueprints.POST("/:id/files/:kind", h.Blueprint.UploadFile)
				blueprints.GET("/:id/files/:kind", h.Blueprint.DownloadFile)
			}

			// Tasks
			tasks := authorized.Group("/tasks")
			{
				tasks.GET("", h.Task.List)
				tasks.POST("", h.Task.Create)
				tasks.GET("/:id", h.Task.Get)
				tasks.PUT("/:id", h.Task.Update)
				tasks.PUT("/:id/status", h.Task.UpdateStatus)
				tasks.DELETE("/:id", h.Task.Delete)
				tasks.POST("/:id/attachments", h.Task.AddAttachment)
				tasks.POST("/:id/links", h.Task.AddLink)
			}
			authorized.GET("/task-attachments/:attachment_id", h.Task.DownloadAttachment)
			authorized.DELETE("/task-attachments/:attachment_id", h.Task.DeleteAttachment)
			authorized.DELETE("/task-links/:link_id", h.Task.DeleteLink)

			// Flaw-detector units
			authorized.POST("/equipment", h.Equipment.Upsert)
			authorized.POST("/equipment/:type/:serial/license", h.Equipment.IssueLicense)
			kalmar := authorized.Group("/kalmar")
			{
				kalmar.GET("", h.Equipment.ListKalmars)
				kalmar.GET("/units/:id", h.Equipment.GetKalmar)
				kalmar.DELETE("/units/:id", h.Equipment.DeleteKalmar)
				kalmar.GET("/serial/:serial", h.Equipment.GetKalmarBySerial)
			}
			phasar := authorized.Group("/phasar")
			{
				phasar.GET("", h.Equipment.ListPhasars)
				phasar.GET("/units/:id", h.Equipment.GetPhasar)
				phasar.DELETE("/units/:id", h.Equipment.DeletePhasar)
				phasar.GET("/serial/:serial", h.Equipment.GetPhasarBySerial)
			}

			// Licenses
			licenses := authorized.Group("/licenses")
			{
				licenses.GET("", h.Equipment.ListLicenses)
				licenses.GET("/:id", h.Equipment.GetLicense)
			}

			// Maintenance reports
			reports := authorized.Group("/reports")
			{
				reports.GET("", h.Report.List)
				reports.POST("", h.Report.Upsert)
				reports.GET("/:id", h.Report.Get)
				reports.DELETE("/:id", h.Report.Delete)
				reports.POST("/:id/files/:file_type", h.Report.UploadFile)
				reports.PUT("/:id/files/:file_type", h.Report.UploadFile)
				reports.GET("/:id/files/:file_type", h.Report.DownloadFile)
			}

			// Application binaries
			apps := authorized.Group("/apps")
			{
				apps.POST("/:type", h.App.Upload)
				apps.GET("/:type/latest", h.App.Latest)
				apps.GET("/:type/versions", h.App.Versions)
				apps.POST("/:type/webhook", h.App.Webhook)
			}

			// Audit trail and dashboard
			authorized.GET("/changes", h.System.ListChanges)
			authorized.GET("/dashboard", h.System.Dashboard)
		}
	}
}
