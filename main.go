package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davyaugustnurismail/ukk-sub001/handlers"
	"github.com/davyaugustnurismail/ukk-sub001/internal/backendapi"
	"github.com/davyaugustnurismail/ukk-sub001/internal/fonts"
	"github.com/davyaugustnurismail/ukk-sub001/internal/render"
	"github.com/davyaugustnurismail/ukk-sub001/internal/workers"
	"github.com/davyaugustnurismail/ukk-sub001/middleware"
	"github.com/davyaugustnurismail/ukk-sub001/services"
)

var (
	dbPool          *pgxpool.Pool
	templateService *services.TemplateService
	uploadService   *services.UploadService
	backendClient   *backendapi.Client
	fontRegistry    *fonts.Registry
	previewer       *render.Previewer
	storageDir      string
	publicBase      string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	storageDir = os.Getenv("STORAGE_DIR")
	if storageDir == "" {
		storageDir = "./storage"
	}
	publicBase = os.Getenv("PUBLIC_BASE_URL")
	if publicBase == "" {
		publicBase = "http://localhost:3333"
	}

	backendBase := os.Getenv("BACKEND_BASE_URL")
	if backendBase == "" {
		log.Fatal("BACKEND_BASE_URL environment variable is not set")
	}

	templateService = services.NewTemplateService(dbPool)
	uploadService = services.NewUploadService(storageDir, publicBase)
	backendClient = backendapi.NewClient(backendBase, os.Getenv("BACKEND_TOKEN"))
	previewer = render.NewPreviewer(storageDir)

	fontRegistry = fonts.NewRegistry(publicBase)
	registerCatalogFonts(fontRegistry)

	middleware.InitPrometheus()
}

// registerCatalogFonts loads the font catalog the templates reference. The
// catalog is the explicit {weight, style} -> file table; registration is
// memoized, so re-running it on restart is harmless.
func registerCatalogFonts(reg *fonts.Registry) {
	catalog := []struct {
		folder, file, weight, style string
	}{
		{"poppins", "Poppins-Regular.ttf", "400", "normal"},
		{"poppins", "Poppins-Bold.ttf", "700", "normal"},
		{"poppins", "Poppins-Italic.ttf", "400", "italic"},
		{"playfair", "PlayfairDisplay-Regular.ttf", "400", "normal"},
		{"playfair", "PlayfairDisplay-Bold.ttf", "700", "normal"},
		{"greatvibes", "GreatVibes-Regular.ttf", "400", "normal"},
	}
	for _, f := range catalog {
		if _, ok := reg.Register(f.folder, f.file, f.weight, f.style); !ok {
			log.Printf("Skipping unrecognized font file %s/%s", f.folder, f.file)
		}
	}
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	templateHandler := handlers.NewTemplateHandler(templateService, uploadService)
	certificateHandler := handlers.NewCertificateHandler(templateService, previewer, backendClient, fontRegistry, publicBase)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()
	workers.StartCleanupWorker(dbPool, storageDir)

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	fs := http.FileServer(http.Dir(storageDir))
	r.PathPrefix("/storage/").Handler(http.StripPrefix("/storage/", fs))
	log.Printf("Serving uploaded files from %s at /storage/", storageDir)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "sertifikat-admin"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(middleware.StaticTokenValidator(os.Getenv("MERCHANT_TOKENS"))))

	protected.HandleFunc("/templates", templateHandler.ListTemplates).Methods("GET")
	protected.HandleFunc("/templates", templateHandler.CreateTemplate).Methods("POST")
	protected.HandleFunc("/templates/upload-image", templateHandler.UploadImage).Methods("POST")
	protected.HandleFunc("/templates/{id}", templateHandler.GetTemplate).Methods("GET")
	protected.HandleFunc("/templates/{id}", templateHandler.UpdateTemplate).Methods("PUT")
	protected.HandleFunc("/templates/{id}", templateHandler.DeleteTemplate).Methods("DELETE")

	protected.HandleFunc("/templates/{id}/elements", templateHandler.AddElement).Methods("POST")
	protected.HandleFunc("/templates/{id}/elements/{elementID}", templateHandler.UpdateElement).Methods("PUT")
	protected.HandleFunc("/templates/{id}/elements/{elementID}", templateHandler.RemoveElement).Methods("DELETE")

	protected.HandleFunc("/templates/{id}/preview.png", certificateHandler.Preview).Methods("GET")
	protected.HandleFunc("/templates/{id}/generate-pdf", certificateHandler.GeneratePDF).Methods("POST")
	protected.HandleFunc("/fonts.css", certificateHandler.FontsCSS).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
