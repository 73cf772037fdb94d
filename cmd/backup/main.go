// Package main provides a backup and restore tool for the Shelfmark database.
//
// Usage:
//
//	DATA_PATH=~/Shelfmark/data go run ./cmd/backup
//	DATA_PATH=~/Shelfmark/data go run ./cmd/backup -restore backup-2026-01-02.shelfmark.zip
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shelfmark/shelfmark-server/internal/backup"
	"github.com/shelfmark/shelfmark-server/internal/media/images"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

var (
	restorePath = flag.String("restore", "", "Restore from the given archive instead of creating one")
	mode        = flag.String("mode", "merge", "Restore mode: merge or replace")
	dryRun      = flag.Bool("dry-run", false, "Validate a restore without writing")
	pictures    = flag.Bool("pictures", true, "Include profile pictures in the backup")
	output      = flag.String("output", "", "Backup output path (defaults to a timestamped file)")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Shelfmark/data")
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(filepath.Join(dataPath, "db"), quiet)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	pics, err := images.NewStorage(filepath.Join(dataPath, "media"))
	if err != nil {
		log.Fatalf("Failed to open media storage: %v", err)
	}

	progress := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := backup.NewService(st, pics, filepath.Join(dataPath, "backups"), "Shelfmark Server", "dev", progress)

	ctx := context.Background()

	if *restorePath != "" {
		result, err := svc.Restore(ctx, *restorePath, backup.RestoreOptions{
			Mode:   backup.RestoreMode(*mode),
			DryRun: *dryRun,
		})
		if err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
		fmt.Printf("Restored from %s\n", *restorePath)
		fmt.Printf("  Imported: %v\n", result.Imported)
		fmt.Printf("  Skipped:  %v\n", result.Skipped)
		return
	}

	result, err := svc.Create(ctx, backup.Options{
		OutputPath:      *output,
		IncludePictures: *pictures,
	})
	if err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
	fmt.Printf("Backup written to %s (%d bytes)\n", result.Path, result.Size)
	fmt.Printf("  Users: %d, books: %d, reviews: %d, pictures: %d\n",
		result.Counts.Users, result.Counts.ListEntries, result.Counts.Reviews, result.Counts.Pictures)
	fmt.Printf("  SHA-256: %s\n", result.Checksum)
}
