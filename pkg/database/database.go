package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"taskboard/configs"

	_ "github.com/lib/pq"
)

func DSN(cfg configs.Config, dbName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, dbName, cfg.DBSSLMode)
}

// ConnectDB membuka pool koneksi Postgres. Pool dimiliki main dan ditutup saat shutdown.
func ConnectDB(ctx context.Context, cfg configs.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg, cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
