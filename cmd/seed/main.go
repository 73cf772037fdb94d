// Package main provides a tool to seed the database with demo shelf data.
//
// This creates a demo account, pulls real books from the public catalog,
// and saves them across the reading lists so the API has something to show.
//
// Usage:
//
//	DATA_PATH=~/Shelfmark/data go run ./cmd/seed
//	DATA_PATH=~/Shelfmark/data go run ./cmd/seed --email reader@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/auth"
	"github.com/shelfmark/shelfmark-server/internal/catalog"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

var (
	email    = flag.String("email", "demo@shelfmark.local", "Email for the demo account")
	password = flag.String("password", "shelfmark-demo", "Password for the demo account")
	subjects = flag.String("subjects", "fantasy,science_fiction,mystery", "Comma-separated catalog subjects to sample")
	perShelf = flag.Int("per-shelf", 4, "Books to save per reading status")
)

var comments = []string{
	"Could not put it down.",
	"Slow start, strong finish.",
	"Better than I expected.",
	"The ending made the whole book.",
	"Will read again in a few years.",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Shelfmark/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(dbPath, quiet)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	keyHex, err := auth.LoadOrGenerateKey(dataPath)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(keyHex, 15*time.Minute)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	authService := service.NewAuthService(s, tokens, quiet)
	libraryService := service.NewLibraryService(s, quiet)

	ownerID, err := demoAccount(ctx, s, authService)
	if err != nil {
		log.Fatalf("Failed to set up demo account: %v", err)
	}
	fmt.Printf("Demo account: %s (%s)\n", *email, ownerID)

	client := catalog.NewClient(quiet)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	statuses := []domain.ReadingStatus{domain.StatusToBeRead, domain.StatusReading, domain.StatusRead}

	saved := 0
	reviewed := 0

	for i, subject := range splitSubjects(*subjects) {
		if i >= len(statuses) {
			break
		}
		status := statuses[i]

		fmt.Printf("\nSampling subject %q for the %q shelf...\n", subject, status)
		records, err := client.SampleSubject(ctx, subject, *perShelf)
		if err != nil {
			log.Printf("Subject %q failed, skipping: %v", subject, err)
			continue
		}

		for _, record := range records {
			entry, err := libraryService.SaveBook(ctx, ownerID, record, status)
			if err != nil {
				log.Printf("  Failed to save %q: %v", record.Title, err)
				continue
			}
			saved++
			fmt.Printf("  Saved: %s by %s\n", entry.Title, entry.Author)

			// Finished books get a review so the reviews endpoint has data.
			if status == domain.StatusRead && entry.ExternalID != "" {
				rating := 3 + rng.Intn(3)
				comment := comments[rng.Intn(len(comments))]
				if _, err := libraryService.AddReview(ctx, ownerID, entry.ExternalID, rating, comment); err != nil {
					log.Printf("  Failed to review %q: %v", entry.Title, err)
					continue
				}
				reviewed++
			}
		}
	}

	fmt.Printf("\nDone: %d books saved, %d reviews written\n", saved, reviewed)
}

// demoAccount registers the demo user, or reuses it if a previous run
// already created it.
func demoAccount(ctx context.Context, s *store.Store, authService *service.AuthService) (string, error) {
	resp, err := authService.Register(ctx, service.RegisterRequest{
		Email:       *email,
		Password:    *password,
		DisplayName: "Demo Reader",
	})
	if err == nil {
		return resp.OwnerID, nil
	}

	user, lookupErr := s.GetUserByEmail(ctx, *email)
	if lookupErr != nil {
		return "", errors.Join(err, lookupErr)
	}
	return user.ID, nil
}

func splitSubjects(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
