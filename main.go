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
	"github.com/joho/godotenv"

	cfg "github.com/example/moviefav/internal/config"
	_ "modernc.org/sqlite"
)

// Fixed bootstrap credentials; a deliberate, documented weak point of the
// deployment model.
const (
	adminName     = "Admin"
	adminEmail    = "admin@admin.admin"
	adminPassword = "admin123"
)

type App struct {
	DB          DB
	Tokens      *TokenService
	rateLimiter *RateLimiter
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

// newRouter wires the middleware chain and every route. Only the
// favorites and profile endpoints sit behind TokenRequired; the admin
// listing intentionally does not (see HandleAdminUsers).
func newRouter(app *App) *mux.Router {
	r := mux.NewRouter()

	r.Use(SecurityHeaders)
	r.Use(app.Logging)
	r.Use(app.CORS)
	r.Use(app.RateLimit)

	// Liveness endpoints (no auth required)
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Server is running!"))
	}).Methods("GET")
	r.HandleFunc("/api/test", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Backend API is running!"})
	}).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if p, ok := app.DB.(interface{ ping() bool }); ok {
			if !p.ping() {
				w.WriteHeader(503)
				w.Write([]byte(`{"ready":false}`))
				return
			}
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"ready":true}`))
	}).Methods("GET")

	// Account endpoints
	r.HandleFunc("/api/signup", app.HandleSignup).Methods("POST")
	r.HandleFunc("/api/login", app.HandleLogin).Methods("POST")
	r.HandleFunc("/api/profile", app.TokenRequired(app.HandleProfile)).Methods("GET")

	// Favorites endpoints
	r.HandleFunc("/api/favorites/add", app.TokenRequired(app.HandleAddFavorite)).Methods("POST")
	r.HandleFunc("/api/favorites/remove", app.TokenRequired(app.HandleRemoveFavorite)).Methods("POST")
	r.HandleFunc("/api/favorites", app.TokenRequired(app.HandleListFavorites)).Methods("GET")
	r.HandleFunc("/api/favorites/check/{movieID:[0-9]+}", app.TokenRequired(app.HandleCheckFavorite)).Methods("GET")

	// Admin endpoint: no auth middleware attached.
	r.HandleFunc("/api/admin/users", app.HandleAdminUsers).Methods("GET")

	// Catch-all for CORS preflights; the CORS middleware answers before
	// this handler runs.
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func main() {
	_ = godotenv.Load()

	c, err := cfg.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var db DB
	switch c.DBAdapter {
	case "sqlite":
		s, err := NewSQLiteDB(c.SQLiteFile)
		if err != nil {
			log.Fatalf("sqlite init: %v", err)
		}
		db = s
	case "postgres":
		log.Println("Applying database migrations...")
		if err := ApplyMigrations("./migrations", c.PostgresDSN); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		p, err := NewPostgresDB(c.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres init: %v", err)
		}
		db = p
		log.Println("Connected to PostgreSQL database")
	case "memory":
		log.Println("Using in-memory database (not recommended for production)")
		db = NewMemoryDB()
	default:
		log.Fatalf("unsupported DB_ADAPTER: %s (supported: postgres, sqlite, memory)", c.DBAdapter)
	}

	if c.BootstrapAdmin {
		hash, err := hashPassword(adminPassword)
		if err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		if err := db.BootstrapAdmin(adminName, adminEmail, hash); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		log.Printf("Admin user ready: %s", adminEmail)
	}

	tokens := NewTokenService([]byte(c.JwtSecret), time.Duration(c.TokenTTLDays)*24*time.Hour)
	app := &App{
		DB:          db,
		Tokens:      tokens,
		rateLimiter: NewRateLimiter(c.RateLimitPerMinute),
	}

	srv := &http.Server{
		Handler:      newRouter(app),
		Addr:         ":" + c.Port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Println("Starting server on", c.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closer, ok := app.DB.(interface{ close() error }); ok {
		_ = closer.close()
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed:%+v", err)
	}
	fmt.Println("Server exited properly")
}
