package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminpanel/pkg/config"
	"adminpanel/pkg/vault"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var verbose bool

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func mustInitDB(cfg *config.Config) *gorm.DB {
	if cfg.DatabaseDSN == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// Main: uploads every file in a directory into the vault, moving each one
// out of the way once stored, then optionally keeps watching for new files.
func main() {
	dirFlag := flag.String("dir", "public/vault", "directory to import files from")
	uploadedBy := flag.String("uploaded-by", vault.DefaultUploader, "uploaded_by value for imported files")
	processed := flag.String("processed", "", "where uploaded files are moved (default <dir>/processed)")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	settle := flag.Duration("settle", 500*time.Millisecond, "how long a file must stay unchanged before upload")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	svc, _, _, err := vault.OpenPostgres(ctx, mustInitDB(cfg), cfg)
	if err != nil {
		log.Fatalf("vault: %v", err)
	}

	d := vault.NewDropFolder(svc, *dirFlag)
	d.UploadedBy = *uploadedBy
	d.Settle = *settle
	if *processed != "" {
		d.ProcessedDir = *processed
	}
	d.Logf = logV

	n, err := d.ImportExisting(ctx)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	log.Printf("Imported %d files from %s", n, *dirFlag)

	if *watch {
		d.Logf = log.Printf
		if err := d.Watch(ctx); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}
