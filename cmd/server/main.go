package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/internal/application/services"
	"github.com/HARIPRASAD-2003/form-builder/internal/config"
	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/internal/infrastructure/database"
	"github.com/HARIPRASAD-2003/form-builder/internal/infrastructure/persistence"
	"github.com/HARIPRASAD-2003/form-builder/internal/interfaces/middleware"
	"github.com/HARIPRASAD-2003/form-builder/internal/interfaces/rest"
	"github.com/HARIPRASAD-2003/form-builder/pkg/auth"
	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	repo, closeRepo := openFormRepository(cfg)
	defer closeRepo()

	// Initialize service manager
	svcMgr, err := services.NewServiceManager(repo, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}
	log.Println("🔧 Service manager initialized")

	var issuer *auth.TokenIssuer
	if cfg.AuthEnabled() {
		issuer, err = auth.NewTokenIssuer(cfg.JWTSecret, auth.DefaultTokenTTL)
		if err != nil {
			log.Fatalf("❌ Failed to initialize token issuer: %v", err)
		}
		log.Println("🔐 Bearer token authentication enabled")
	} else {
		log.Printf("⚠️  JWT_SECRET not set, every request acts as %q", constants.AnonymousOwnerID)
	}

	// Create Gin router
	router := gin.Default()
	router.Use(middleware.Cors())
	router.Use(middleware.APIVersion())

	rest.RegisterRoutes(router, svcMgr, middleware.RequireAuth(issuer))

	// Start scheduled recompute and session expiry
	svcMgr.StartScheduler()
	log.Printf("⏰ Scheduler service started (%s, %ds polling)", cfg.RecomputeSchedule, constants.ScheduleCheckInterval)

	log.Println("\n═══════════════════════════════════════════════════════════════════════════")
	log.Println("🚀 Form Builder Backend Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:         http://localhost:%s", cfg.Port)
	log.Printf("📝 Forms API:      http://localhost:%s/api/forms", cfg.Port)
	log.Printf("👁  Preview API:    http://localhost:%s/api/preview", cfg.Port)
	log.Printf("📐 Formula API:    http://localhost:%s/api/formula", cfg.Port)
	log.Printf("💚 Health check:   http://localhost:%s/health\n", cfg.Port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.StopScheduler()
	log.Println("🛑 Scheduler stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}

// openFormRepository picks the form store named by FORM_STORE. The returned
// func releases it.
func openFormRepository(cfg *config.Config) (ports.FormRepository, func()) {
	switch cfg.FormStore {
	case constants.FormStoreMySQL:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		conn, err := database.Open(ctx, cfg.DB)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := conn.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("✅ Database connection established")
		return persistence.NewSQLFormRepository(conn.DB()), func() {
			if err := conn.Close(); err != nil {
				log.Printf("⚠️  Failed to close database: %v", err)
			}
		}
	case constants.FormStoreBolt:
		repo, err := persistence.NewBoltFormRepository(cfg.FormStorePath)
		if err != nil {
			log.Fatalf("Failed to open form store %s: %v", cfg.FormStorePath, err)
		}
		log.Printf("📁 Forms stored in bolt database %s", cfg.FormStorePath)
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.Printf("⚠️  Failed to close form store: %v", err)
			}
		}
	default:
		repo, err := persistence.NewFileFormRepository(cfg.FormStorePath)
		if err != nil {
			log.Fatalf("Failed to open form store %s: %v", cfg.FormStorePath, err)
		}
		log.Printf("📁 Forms stored in %s", cfg.FormStorePath)
		return repo, func() {}
	}
}
