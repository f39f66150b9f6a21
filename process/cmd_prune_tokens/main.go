package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"adminpanel/pkg/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Deletes refresh tokens that are revoked or expired for longer than -grace.
func main() {
	grace := flag.Duration("grace", 24*time.Hour, "keep expired tokens this long before deleting")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseDSN == "" {
		log.Fatal("DB_DSN not set")
	}
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	cutoff := time.Now().Add(-*grace)
	res, err := db.Exec(`DELETE FROM refresh_tokens WHERE revoked OR expires_at < $1`, cutoff)
	if err != nil {
		log.Fatalf("prune refresh tokens: %v", err)
	}
	n, _ := res.RowsAffected()
	fmt.Printf("pruned %d refresh token(s)\n", n)
}
