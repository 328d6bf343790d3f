package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/reed-hollis/photoshelfbackend/config"
	"github.com/reed-hollis/photoshelfbackend/database"
	"github.com/reed-hollis/photoshelfbackend/handlers"
	"github.com/reed-hollis/photoshelfbackend/metadata"
	"github.com/reed-hollis/photoshelfbackend/realtime"
	"github.com/reed-hollis/photoshelfbackend/repository"
	"github.com/reed-hollis/photoshelfbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.RatingStoresPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	appDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize app database: %v", err)
	}
	if err := database.AutoMigrateModels(appDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate app database: %v", err)
	}

	pool, err := database.NewCollectionPool(cfg.RatingStoresPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize rating store pool: %v", err)
	}
	defer pool.CloseAll()

	exifTool := metadata.NewExifTool(cfg.ExifToolPath, cfg.ExifToolTimeout)
	loader := metadata.NewSnapshotLoader(exifTool, cfg.RawSubdir)
	writebackPool := workers.NewWritebackPool(cfg.WritebackWorkers)

	ratingRepo := repository.NewRatingRepository(pool)
	collectionRepo := repository.NewCollectionRepository(appDB)
	preferenceRepo := repository.NewPreferenceRepository(appDB)

	hub := realtime.NewHub()
	go hub.Run()

	log.Printf("Serving photo collections from root: %s", cfg.RootDirectory)
	log.Printf("Using app database: %s", cfg.DatabasePath)
	log.Printf("Storing rating stores in: %s", cfg.RatingStoresPath)
	log.Printf("RAW subfolder name: %s", cfg.RawSubdir)
	log.Printf("Write-back workers: %d", cfg.WritebackWorkers)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	collectionHandler := &handlers.CollectionHandler{
		Cfg: cfg, Ratings: ratingRepo, Collections: collectionRepo, Loader: loader, Hub: hub,
	}
	ratingHandler := &handlers.RatingHandler{Cfg: cfg, Ratings: ratingRepo, Loader: loader}
	conflictHandler := &handlers.ConflictHandler{Cfg: cfg, Ratings: ratingRepo, Loader: loader}
	applyHandler := &handlers.ApplyHandler{
		Cfg: cfg, Ratings: ratingRepo, Loader: loader, Writer: exifTool, Pool: writebackPool,
	}
	preferenceHandler := &handlers.PreferenceHandler{Preferences: preferenceRepo}

	r.Route("/api", func(r chi.Router) {
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", collectionHandler.ListCollections)
			r.Get("/contents", collectionHandler.GetContents)
			r.Get("/photo", collectionHandler.GetPhoto)
			r.Put("/sort_order", collectionHandler.UpdateSortOrder)
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Get("/", ratingHandler.GetRatings)
			r.Put("/", ratingHandler.PutRating)
			r.Post("/resolve", ratingHandler.ResolveConflict)
			r.Get("/conflicts", conflictHandler.ListConflicts)
			r.Post("/apply", applyHandler.Apply)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", preferenceHandler.ListPreferences)
			r.Put("/", preferenceHandler.SetPreference)
			r.Get("/{key}", preferenceHandler.GetPreference)
		})
	})

	r.Get("/ws", hub.ServeWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
