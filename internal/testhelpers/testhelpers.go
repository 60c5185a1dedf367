package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"materialroi/internal/config"
)

// dsn construit la chaîne de connexion de test depuis l'environnement
func dsn() string {
	_ = godotenv.Load("../../.env")
	return config.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "roiuser"),
		Password: getEnv("DB_PASSWORD", "roipass"),
		Name:     getEnv("DB_NAME", "materialroi_test"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}.DSN()
}

// SetupTestDB ouvre une connexion à la base de test et la ferme en fin de test
func SetupTestDB(tb testing.TB) *sqlx.DB {
	tb.Helper()

	db, err := sqlx.Open("postgres", dsn())
	if err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		tb.Fatalf("Failed to ping database: %v", err)
	}

	tb.Cleanup(func() { db.Close() })
	return db
}

// SkipIfNoDatabase skip le test/benchmark si la DB n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	db, err := sqlx.Open("postgres", dsn())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		tb.Skip("Database not available:", err)
	}
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
