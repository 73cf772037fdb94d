// Package backup provides archive and restore for the Shelfmark database.
//
// A backup is a zip file holding a manifest plus JSONL streams of the
// user accounts, saved list entries, and reviews, optionally with the
// uploaded profile pictures.
package backup

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"encoding/json/v2"

	"github.com/shelfmark/shelfmark-server/internal/media/images"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// FormatVersion is the backup format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Archive member paths.
const (
	manifestPath = "manifest.json"
	usersPath    = "users.jsonl"
	listsPath    = "lists.jsonl"
	reviewsPath  = "reviews.jsonl"
	picturesDir  = "pictures/"
)

var (
	// ErrInvalidManifest indicates the manifest is missing or malformed.
	ErrInvalidManifest = errors.New("invalid or missing manifest")

	// ErrVersionMismatch indicates the backup version is not supported.
	ErrVersionMismatch = errors.New("backup version not supported")
)

// Manifest describes backup contents and metadata.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	ServerName       string `json:"server_name"`
	ShelfmarkVersion string `json:"shelfmark_version"`

	Counts           EntityCounts `json:"counts"`
	IncludesPictures bool         `json:"includes_pictures"`
}

// EntityCounts tracks entity counts for validation and progress reporting.
type EntityCounts struct {
	Users       int `json:"users"`
	ListEntries int `json:"list_entries"`
	Reviews     int `json:"reviews"`
	Pictures    int `json:"pictures,omitempty"`
}

// Options configures backup creation.
type Options struct {
	OutputPath      string // Where to write the backup file
	IncludePictures bool   // Include uploaded profile pictures
}

// Result contains the outcome of a backup operation.
type Result struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Counts   EntityCounts  `json:"counts"`
	Duration time.Duration `json:"duration"`
	Checksum string        `json:"checksum"`
}

// Service creates and restores backups.
type Service struct {
	store      *store.Store
	pictures   *images.Storage
	backupDir  string
	serverName string
	version    string
	logger     *slog.Logger
}

// NewService creates a backup service.
func NewService(s *store.Store, pictures *images.Storage, backupDir, serverName, version string, logger *slog.Logger) *Service {
	return &Service{
		store:      s,
		pictures:   pictures,
		backupDir:  backupDir,
		serverName: serverName,
		version:    version,
		logger:     logger,
	}
}

// Create writes a new backup archive and returns its summary.
func (s *Service) Create(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		timestamp := time.Now().Format("2006-01-02-150405")
		outputPath = filepath.Join(s.backupDir, fmt.Sprintf("backup-%s.shelfmark.zip", timestamp))
	}

	s.logger.Info("creating backup",
		"output", outputPath,
		"include_pictures", opts.IncludePictures)

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}

	counts, err := s.writeArchive(ctx, f, opts.IncludePictures)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return nil, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup: %w", err)
	}

	checksum, err := fileChecksum(outputPath)
	if err != nil {
		return nil, fmt.Errorf("checksum backup: %w", err)
	}

	result := &Result{
		Path:     outputPath,
		Size:     info.Size(),
		Counts:   counts,
		Duration: time.Since(start),
		Checksum: checksum,
	}

	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"users", counts.Users,
		"list_entries", counts.ListEntries,
		"reviews", counts.Reviews,
		"duration", result.Duration)

	return result, nil
}

func (s *Service) writeArchive(ctx context.Context, w io.Writer, includePictures bool) (EntityCounts, error) {
	var counts EntityCounts

	zw := zip.NewWriter(w)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return counts, fmt.Errorf("list users: %w", err)
	}

	uw, err := newLineWriter(zw, usersPath)
	if err != nil {
		return counts, err
	}
	for _, user := range users {
		if err := uw.write(user); err != nil {
			return counts, fmt.Errorf("write user %s: %w", user.ID, err)
		}
	}
	counts.Users = uw.count

	// archive/zip permits only one open member at a time, so each
	// JSONL stream must be written in full before the next begins.
	lw, err := newLineWriter(zw, listsPath)
	if err != nil {
		return counts, err
	}
	for _, user := range users {
		entries, err := s.store.GetListEntries(ctx, user.ID)
		if err != nil {
			return counts, fmt.Errorf("list entries for %s: %w", user.ID, err)
		}
		for i := range entries {
			if err := lw.write(&entries[i]); err != nil {
				return counts, fmt.Errorf("write list entry: %w", err)
			}
		}
	}
	counts.ListEntries = lw.count

	rw, err := newLineWriter(zw, reviewsPath)
	if err != nil {
		return counts, err
	}
	for _, user := range users {
		reviews, err := s.store.GetReviews(ctx, user.ID)
		if err != nil {
			return counts, fmt.Errorf("reviews for %s: %w", user.ID, err)
		}
		for i := range reviews {
			if err := rw.write(&reviews[i]); err != nil {
				return counts, fmt.Errorf("write review: %w", err)
			}
		}
	}
	counts.Reviews = rw.count

	if includePictures && s.pictures != nil {
		for _, user := range users {
			if !s.pictures.Exists(user.ID) {
				continue
			}
			data, err := s.pictures.Get(user.ID)
			if err != nil {
				return counts, fmt.Errorf("read picture %s: %w", user.ID, err)
			}
			pw, err := zw.Create(picturesDir + user.ID + ".jpg")
			if err != nil {
				return counts, err
			}
			if _, err := pw.Write(data); err != nil {
				return counts, fmt.Errorf("write picture %s: %w", user.ID, err)
			}
			counts.Pictures++
		}
	}

	manifest := Manifest{
		Version:          FormatVersion,
		CreatedAt:        time.Now().UTC(),
		ServerName:       s.serverName,
		ShelfmarkVersion: s.version,
		Counts:           counts,
		IncludesPictures: includePictures,
	}
	mw, err := zw.Create(manifestPath)
	if err != nil {
		return counts, err
	}
	if err := json.MarshalWrite(mw, &manifest); err != nil {
		return counts, fmt.Errorf("write manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return counts, fmt.Errorf("finalize archive: %w", err)
	}
	return counts, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
