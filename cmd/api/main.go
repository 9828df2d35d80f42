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
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatherlyhq/gatherly-backend/internal/activity"
	"github.com/gatherlyhq/gatherly-backend/internal/admin"
	"github.com/gatherlyhq/gatherly-backend/internal/assistant"
	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/common/database"
	"github.com/gatherlyhq/gatherly-backend/internal/config"
	"github.com/gatherlyhq/gatherly-backend/internal/events"
	"github.com/gatherlyhq/gatherly-backend/internal/notifications"
	"github.com/gatherlyhq/gatherly-backend/internal/recommend"
	"github.com/gatherlyhq/gatherly-backend/internal/registrations"
	"github.com/gatherlyhq/gatherly-backend/internal/users"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Gatherly Community Events API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration loaded and valid")

	// 3. Connect to PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("❌ Failed to ping PostgreSQL:", err)
	}
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional)
	log.Println("\n📮 Step 4: Connecting to Redis...")
	redisClient, err := database.NewRedisClientFromURL(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), continuing without caching", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("✅ Connected to Redis successfully")
	}

	// 5. Run database migrations
	log.Println("\n🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Activity log
	log.Println("\n📒 Step 6: Initializing activity log...")
	activityRepo := activity.NewPostgresRepository(db)
	activityService := activity.NewService(activityRepo)
	activityHandler := activity.NewHandler(activityService)
	log.Println("✅ Activity log initialized")

	// 7. Authentication
	log.Println("\n🔐 Step 7: Initializing authentication system...")
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, redisClient, &auth.Config{
		JWTSecret:          cfg.JWTSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		BCryptCost:         cfg.BCryptCost,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Authentication system initialized")

	// 8. User profiles
	log.Println("\n👤 Step 8: Initializing user profiles...")
	usersRepo := users.NewPostgresRepository(db)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(usersService)
	log.Println("✅ User profiles initialized")

	// 9. Notifications
	log.Println("\n🔔 Step 9: Initializing notifications...")
	var emailProvider notifications.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = notifications.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("   ✅ Using SendGrid for emails")
	case "smtp":
		emailProvider = notifications.NewSMTPEmailProvider(
			cfg.SMTPHost,
			fmt.Sprintf("%d", cfg.SMTPPort),
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.EmailFrom,
		)
		log.Println("   ✅ Using SMTP for emails")
	default:
		emailProvider = notifications.NewMockEmailProvider()
		log.Println("   ⚠️  Using mock email provider (development mode)")
	}

	var smsProvider notifications.SMSProvider
	switch cfg.SMSProvider {
	case "twilio":
		smsProvider = notifications.NewTwilioSMSProvider(
			cfg.TwilioAccountSID,
			cfg.TwilioAuthToken,
			cfg.TwilioFromNumber,
		)
		log.Println("   ✅ Using Twilio for SMS")
	default:
		smsProvider = notifications.NewMockSMSProvider()
		log.Println("   ⚠️  Using mock SMS provider (development mode)")
	}

	notificationsService := notifications.NewService(emailProvider, smsProvider)
	log.Println("✅ Notifications initialized")

	// 10. Events
	log.Println("\n📅 Step 10: Initializing events module...")
	eventsRepo := events.NewPostgresRepository(db)
	uploadService := events.NewUploadService(events.UploadConfig{
		UseS3:          cfg.UseS3,
		S3Bucket:       cfg.S3Bucket,
		AWSRegion:      cfg.AWSRegion,
		LocalUploadDir: cfg.LocalUploadDir,
		BaseURL:        cfg.BaseURL,
		MaxSize:        cfg.MaxEventImageSize,
	})
	eventsService := events.NewService(eventsRepo, uploadService, activityService)
	eventsHandler := events.NewHandler(eventsService, cfg.DefaultPageSize, cfg.MaxPageSize)
	log.Println("✅ Events module initialized")

	// 11. Recommendations
	log.Println("\n✨ Step 11: Initializing recommendation engine...")
	recommendRepo := recommend.NewPostgresRepository(db)
	recommendEngine := recommend.NewEngine(recommendRepo, recommend.CoordinateSuffixGeocoder{}, cfg.DefaultMaxDistanceKm)
	recommendService := recommend.NewService(recommendEngine, redisClient, cfg.RecommendationCacheTTL, cfg.RecommendationLimit)
	recommendHandler := recommend.NewHandler(recommendService)
	log.Println("✅ Recommendation engine initialized")

	// 12. Registrations and tickets
	log.Println("\n🎟️  Step 12: Initializing registrations...")
	registrationsRepo := registrations.NewPostgresRepository(db)
	registrationsService := registrations.NewService(
		registrationsRepo,
		eventsRepo,
		notificationsService,
		recommendService,
		activityService,
	)
	registrationsHandler := registrations.NewHandler(registrationsService, cfg.DefaultPageSize, cfg.MaxPageSize)
	log.Println("✅ Registrations initialized")

	// 13. Admin dashboard
	log.Println("\n🛡️  Step 13: Initializing admin module...")
	statsService := admin.NewStatsService(db)
	adminService := admin.NewService(db, statsService, activityService)
	adminHandler := admin.NewHandler(adminService, cfg.DefaultPageSize, cfg.MaxPageSize)
	log.Println("✅ Admin module initialized")

	// 14. Stats assistant
	log.Println("\n🤖 Step 14: Initializing stats assistant...")
	assistantProvider, err := assistant.NewProvider(cfg.AssistantProvider, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("❌ Failed to initialize assistant provider: ", err)
	}
	assistantService := assistant.NewService(assistantProvider, statsService, cfg.AssistantSystemPrompt)
	assistantHandler := assistant.NewHandler(assistantService)
	log.Println("✅ Stats assistant initialized")

	// 15. Routes
	log.Println("\n🛣️  Step 15: Setting up routes...")
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
		log.Println("   ✅ Static file server configured")
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authHandler.RegisterRoutes(router, authMiddleware)
	users.RegisterRoutes(router, usersHandler, authMiddleware)
	events.RegisterRoutes(router, eventsHandler, authMiddleware)
	registrations.RegisterRoutes(router, registrationsHandler, authMiddleware)
	recommend.RegisterRoutes(router, recommendHandler, authMiddleware)
	activity.RegisterRoutes(router, activityHandler, authMiddleware)
	admin.RegisterRoutes(router, adminHandler, authMiddleware)
	assistant.RegisterRoutes(router, assistantHandler, authMiddleware)
	log.Println("   ✅ All routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 16. Reminder scheduler
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	reminderScheduler := notifications.NewReminderScheduler(db, notificationsService, cfg.ReminderInterval, cfg.ReminderWindow)
	go reminderScheduler.Start(schedulerCtx)
	log.Println("   ✅ Reminder scheduler started")

	// 17. Start HTTP server
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

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
			email VARCHAR(255) UNIQUE NOT NULL,
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255),
			provider VARCHAR(50) DEFAULT 'local',
			provider_id VARCHAR(255),
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			refresh_token TEXT NOT NULL UNIQUE,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			display_name VARCHAR(100),
			bio TEXT,
			location VARCHAR(255),
			phone VARCHAR(20),
			preferences JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description TEXT,
			category VARCHAR(100) NOT NULL,
			date TIMESTAMP WITH TIME ZONE NOT NULL,
			time_str VARCHAR(50) NOT NULL,
			location VARCHAR(255) NOT NULL,
			capacity INTEGER NOT NULL CHECK (capacity > 0),
			image_url TEXT,
			created_by BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS registrations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'REGISTERED',
			ticket_code UUID NOT NULL UNIQUE,
			checked_in_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_user_event UNIQUE(user_id, event_id)
		)`,

		`CREATE TABLE IF NOT EXISTS activity_logs (
			id BIGSERIAL PRIMARY KEY,
			actor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			action VARCHAR(100) NOT NULL,
			entity_type VARCHAR(50) NOT NULL,
			entity_id BIGINT,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS reminders (
			registration_id BIGINT PRIMARY KEY REFERENCES registrations(id) ON DELETE CASCADE,
			sent_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_refresh_token ON sessions(refresh_token)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created_by ON events(created_by)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_user_id ON registrations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_event_id ON registrations(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_status ON registrations(event_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_actor ON activity_logs(actor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_created ON activity_logs(created_at DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
