package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/pokedeck/storefront/internal/platform/config"
)

//go:embed schema.sql
var schema string

// Schema retorna o DDL aplicado por Migrate
func Schema() string {
	return schema
}

// Migrate aplica o schema do storefront usando database/sql com o driver lib/pq
func Migrate(ctx context.Context, cfg config.Database) error {
	db, err := sql.Open("postgres", cfg.KeywordDSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}
