// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finlove/finlove-backend/internal/admin"
	"github.com/finlove/finlove-backend/internal/auth"
	"github.com/finlove/finlove-backend/internal/common/database"
	"github.com/finlove/finlove-backend/internal/config"
	"github.com/finlove/finlove-backend/internal/matching"
	"github.com/finlove/finlove-backend/internal/notification"
	"github.com/finlove/finlove-backend/internal/profile"
	"github.com/finlove/finlove-backend/internal/verification"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting FinLove University Dating API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	log.Println("✅ Configuration loaded")

	// 3. Validate configuration
	log.Println("\n✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis (optional)
	log.Println("\n📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without Redis", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 6. Run database migrations
	log.Println("\n🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 7. Initialize Profile system
	log.Println("\n👤 Step 7: Initializing Profile system...")

	profileRepo := profile.NewPostgresRepository(db)

	var uploadService profile.UploadService
	if cfg.UseS3 {
		uploadService, err = profile.NewS3UploadService(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Printf("⚠️  Failed to init S3, using local storage: %v", err)
			uploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		} else {
			log.Println("   ✅ Using S3 for photo uploads")
		}
	} else {
		uploadService = profile.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		log.Println("   ✅ Using local storage for photo uploads")
	}

	profileService := profile.NewService(profileRepo, uploadService)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profile system initialized")

	// 8. Initialize Auth system
	log.Println("\n🔐 Step 8: Initializing authentication system...")

	authService := auth.NewService(&auth.Config{
		JWTSecret:          cfg.JWTSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService, profile.NewStatusStore(profileRepo))
	log.Println("✅ Authentication system initialized")

	// 9. Initialize Verification system
	log.Println("\n📧 Step 9: Initializing Verification system...")

	var emailProvider verification.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = verification.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("   ✅ Using SendGrid for emails")
	case "smtp":
		emailProvider = verification.NewSMTPEmailProvider(
			cfg.SMTPHost,
			fmt.Sprintf("%d", cfg.SMTPPort),
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.EmailFrom,
		)
		log.Println("   ✅ Using SMTP for emails")
	default:
		emailProvider = verification.NewMockEmailProvider()
		log.Println("   ⚠️  Using mock email provider (development mode)")
	}

	verificationRepo := verification.NewPostgresRepository(db)
	verificationService := verification.NewService(
		verificationRepo,
		profileRepo,
		authService,
		emailProvider,
		redisClient,
		&verification.Config{
			AllowedDomains: cfg.AllowedEmailDomains,
			CodeLength:     cfg.CodeLength,
			CodeExpiry:     cfg.CodeExpiry,
			MaxAttempts:    cfg.MaxCodeAttempts,
			ResendMax:      cfg.CodeResendMax,
			ResendWindow:   cfg.CodeResendWindow,
			BCryptCost:     cfg.BCryptCost,
		},
	)
	verificationHandler := verification.NewHandler(verificationService)

	go startCodeCleanup(verificationService)
	log.Println("✅ Verification system initialized")

	// 10. Initialize Notification system
	log.Println("\n🔔 Step 10: Initializing Notification system...")

	hub := notification.NewHub()
	go hub.Run()
	log.Println("   ✅ WebSocket hub started")

	var smsProvider notification.SMSProvider
	switch cfg.SMSProvider {
	case "twilio":
		smsProvider = notification.NewTwilioSMSProvider(
			cfg.TwilioAccountSID,
			cfg.TwilioAuthToken,
			cfg.TwilioFromNumber,
		)
		log.Println("   ✅ Using Twilio for SMS")
	default:
		smsProvider = notification.NewMockSMSProvider()
		log.Println("   ⚠️  Using mock SMS provider (development mode)")
	}

	notificationService := notification.NewService(hub, profileRepo, emailProvider, smsProvider)
	log.Println("✅ Notification system initialized")

	// 11. Initialize Matching engine
	log.Println("\n💘 Step 11: Initializing Matching engine...")

	matchingRepo := matching.NewPostgresRepository(db)

	var likeCache *matching.LikeCountCache
	if redisClient != nil {
		likeCache = matching.NewLikeCountCache(redisClient)
		log.Println("   ✅ Like counter cache enabled")
	}

	matchingService := matching.NewService(matchingRepo, notificationService, likeCache, cfg.ViewCooldown)
	matchingHandler := matching.NewHandler(matchingService)
	log.Println("✅ Matching engine initialized")

	// 12. Initialize Admin system
	log.Println("\n🛡️  Step 12: Initializing Admin system...")

	adminRepo := admin.NewPostgresRepository(db)
	adminService := admin.NewService(adminRepo, profileRepo, notificationService)
	adminHandler := admin.NewHandler(adminService)
	log.Println("✅ Admin system initialized")

	// 13. Setup routes
	log.Println("\n🛣️  Step 13: Setting up routes...")
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
		log.Println("   ✅ Static file server configured")
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	verification.RegisterRoutes(router, verificationHandler)
	auth.RegisterRoutes(router, authHandler)
	profile.RegisterRoutes(router, profileHandler, authMiddleware)
	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	notification.RegisterRoutes(router, hub, authMiddleware)
	admin.RegisterRoutes(router, adminHandler, authMiddleware)
	log.Println("   ✅ All routes registered")

	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 14. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// startCodeCleanup periodically removes expired verification codes
func startCodeCleanup(service verification.Service) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := service.CleanupExpiredCodes(ctx); err != nil {
			log.Printf("Failed to cleanup expired codes: %v", err)
		}
		cancel()
	}
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// requestIDMiddleware tags every request with an ID so log lines from one
// request can be correlated
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(100) UNIQUE,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone VARCHAR(20),
			first_name VARCHAR(100),
			last_name VARCHAR(100),
			gender VARCHAR(10),
			age INTEGER,
			faculty VARCHAR(200),
			program VARCHAR(200),
			study_year INTEGER,
			photo_url TEXT,
			about TEXT,
			verified BOOLEAN DEFAULT FALSE,
			is_banned BOOLEAN DEFAULT FALSE,
			is_admin BOOLEAN DEFAULT FALSE,
			is_whitelisted BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS verification_codes (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			code_hash VARCHAR(255) NOT NULL,
			attempts INTEGER DEFAULT 0,
			verified BOOLEAN DEFAULT FALSE,
			expires_at TIMESTAMP NOT NULL,
			verified_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS match_views (
			id BIGSERIAL PRIMARY KEY,
			viewer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			target_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			viewed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS reactions (
			id BIGSERIAL PRIMARY KEY,
			liker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			target_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_like BOOLEAN NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// user1_id < user2_id keeps the pair key canonical; the unique
		// constraint is what makes match creation exactly-once
		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			user1_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user2_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			matched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT matches_pair_ordered CHECK (user1_id < user2_id),
			CONSTRAINT matches_pair_unique UNIQUE (user1_id, user2_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(lower(email))`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(lower(username))`,
		`CREATE INDEX IF NOT EXISTS idx_codes_email ON verification_codes(lower(email), created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_views_viewer_target ON match_views(viewer_id, target_id, viewed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reactions_liker_target ON reactions(liker_id, target_id, is_like)`,
		`CREATE INDEX IF NOT EXISTS idx_reactions_target ON reactions(target_id) WHERE is_like = TRUE`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}
	}

	return nil
}
