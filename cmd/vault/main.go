package main

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"

	"adminpanel/models"
	"adminpanel/pkg/config"
	"adminpanel/pkg/vault"

	"github.com/docopt/docopt-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const VaultVersion = "0.1.0"

func main() {
	usage := `Community file vault.

Connects with DB_DSN and the S3_* settings, the same as the server.

Usage:
    vault list
    vault upload [--by=<name>] <file>...
    vault link <id>
    vault watch

Options:
    -h --help      Show this screen.
    --version      Show version.
    --by=<name>    Uploaded by [default: Community User].`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], VaultVersion)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.DatabaseDSN == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	svc, _, feed, err := vault.OpenPostgres(ctx, db, cfg)
	if err != nil {
		log.Fatalf("vault: %v", err)
	}

	if list_, _ := opts.Bool("list"); list_ {
		files, err := svc.ListFiles(ctx)
		if err != nil {
			log.Fatalf("list: %v", err)
		}
		printFiles(files)
	} else if upload_, _ := opts.Bool("upload"); upload_ {
		by, _ := opts.String("--by")
		paths, _ := opts["<file>"].([]string)
		for _, p := range paths {
			if err := upload(ctx, svc, p, by); err != nil {
				log.Fatalf("upload %s: %v", p, err)
			}
		}
	} else if link_, _ := opts.Bool("link"); link_ {
		idStr, _ := opts.String("<id>")
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			log.Fatalf("invalid id %q", idStr)
		}
		f, err := svc.File(ctx, uint(id))
		if err != nil {
			log.Fatalf("file %d: %v", id, err)
		}
		msg, err := vault.CopyLink(vault.WriterClipboard{W: os.Stdout}, f.URL)
		if err != nil {
			log.Fatalf("copy: %v", err)
		}
		fmt.Fprintln(os.Stderr, msg)
	} else if watch_, _ := opts.Bool("watch"); watch_ {
		w := vault.NewWidget(svc, feed, func(files []models.FileMeta) {
			fmt.Print("\033[H\033[2J")
			printFiles(files)
		})
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("watch: %v", err)
		}
	}
}

func upload(ctx context.Context, svc *vault.Service, path, by string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	m, err := svc.Upload(ctx, name, f, st.Size(), ct, by)
	if err != nil {
		return err
	}
	fmt.Printf("%d\t%s\t%s\n", m.ID, m.Name, m.URL)
	return nil
}

func printFiles(files []models.FileMeta) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tSIZE\tBY\tUPLOADED")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, vault.PreviewKind(f.Name), f.Size, f.UploadedBy, f.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}
