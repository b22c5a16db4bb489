package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradtrack-backend/internal/destinations"
	"gradtrack-backend/internal/imports"
	"gradtrack-backend/internal/shared/config"
	"gradtrack-backend/internal/shared/server/middleware"
	"gradtrack-backend/internal/shared/server/respond"
	"gradtrack-backend/internal/shared/storage/db"
	"gradtrack-backend/internal/students"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Identity(),
	)

	// Dependencies
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
		if err != nil {
			log.Printf("failed to connect database, falling back to memory: %v", err)
		} else {
			if err := db.RunMigrations(context.Background(), dbConn); err != nil {
				log.Printf("failed to run migrations, falling back to memory: %v", err)
				dbConn = nil
			}
		}
		sqlDB = dbConn
	}

	var studentRepo students.Repo
	var destinationRepo destinations.Repo
	var batchRepo imports.BatchRepo
	var ledger imports.FailureLedger
	if sqlDB != nil {
		studentRepo = &students.PGRepo{DB: sqlDB}
		destinationRepo = &destinations.PGRepo{DB: sqlDB}
		importRepo := &imports.PGRepo{DB: sqlDB}
		batchRepo = importRepo
		ledger = importRepo
	} else {
		memRoster := students.NewMemoryRepo()
		studentRepo = memRoster
		destinationRepo = destinations.NewMemoryRepo(memRoster)
		importRepo := imports.NewMemoryRepo()
		batchRepo = importRepo
		ledger = importRepo
	}

	destinationSvc := destinations.NewService(destinationRepo)
	destinationHandler := destinations.NewHandler(destinationSvc)
	importSvc := imports.NewService(batchRepo, ledger, studentRepo, destinationSvc)
	importHandler := imports.NewHandler(importSvc)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	importHandler.RegisterRoutes(api)
	destinationHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
