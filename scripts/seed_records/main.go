package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"adminpanel/models"
	"adminpanel/pkg/config"
	"adminpanel/pkg/records"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDB(cfg *config.Config) *gorm.DB {
	if cfg.DatabaseDSN == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// readStudents parses "name,course,rollNo,batch,timing" rows. A first row
// starting with "name" is treated as a header.
func readStudents(r io.Reader) ([]records.Fields, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true
	var out []records.Fields
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(row[0], "name") {
			continue
		}
		f := records.Fields{Name: row[0], Course: row[1], RollNo: row[2], Batch: row[3], Timing: row[4]}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, f)
	}
}

func main() {
	file := flag.String("file", "students.csv", "CSV file with name,course,rollNo,batch,timing")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	flag.Parse()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open %s: %v", *file, err)
	}
	defer f.Close()
	students, err := readStudents(f)
	if err != nil {
		log.Fatalf("parse %s: %v", *file, err)
	}
	log.Printf("parsed %d students", len(students))
	if *dry {
		for _, s := range students {
			fmt.Printf("would create %s (%s, roll %s)\n", s.Name, s.Course, s.RollNo)
		}
		return
	}

	gdb := mustDB(config.Load())
	if err := gdb.AutoMigrate(&models.Record{}); err != nil {
		log.Fatalf("migrate records: %v", err)
	}
	store := records.NewGormStore(gdb)
	ctx := context.Background()
	created := 0
	for _, s := range students {
		rec, err := store.Create(ctx, s)
		if err != nil {
			log.Printf("create %s: %v", s.Name, err)
			continue
		}
		log.Printf("created %s id=%s", rec.Name, rec.ID)
		created++
	}
	fmt.Printf("created %d of %d records\n", created, len(students))
}
