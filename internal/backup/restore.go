package backup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"encoding/json/v2"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/reconcile"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// RestoreMode determines how to handle existing data.
type RestoreMode string

const (
	// RestoreModeMerge adds backup data to existing data, keeping the
	// local version on conflict.
	RestoreModeMerge RestoreMode = "merge"

	// RestoreModeReplace overwrites each restored account's shelf data
	// with the backup's version.
	RestoreModeReplace RestoreMode = "replace"
)

// Valid reports whether the restore mode is recognized.
func (m RestoreMode) Valid() bool {
	return m == RestoreModeMerge || m == RestoreModeReplace
}

// RestoreOptions configures restoration.
type RestoreOptions struct {
	Mode   RestoreMode
	DryRun bool // Validate without writing
}

// RestoreResult contains the outcome of a restore operation.
type RestoreResult struct {
	Manifest *Manifest      `json:"manifest"`
	Imported map[string]int `json:"imported"`
	Skipped  map[string]int `json:"skipped"`
	Duration time.Duration  `json:"duration"`
}

// Restore reads a backup archive and merges it into the live database.
func (s *Service) Restore(ctx context.Context, archivePath string, opts RestoreOptions) (*RestoreResult, error) {
	start := time.Now()

	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("unknown restore mode %q", opts.Mode)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer zr.Close()

	manifest, err := readManifest(zr)
	if err != nil {
		return nil, err
	}

	s.logger.Info("restoring backup",
		"path", archivePath,
		"mode", opts.Mode,
		"dry_run", opts.DryRun,
		"backup_created_at", manifest.CreatedAt)

	result := &RestoreResult{
		Manifest: manifest,
		Imported: map[string]int{},
		Skipped:  map[string]int{},
	}

	if err := s.restoreUsers(ctx, zr, opts, result); err != nil {
		return nil, err
	}
	if err := s.restoreLists(ctx, zr, opts, result); err != nil {
		return nil, err
	}
	if err := s.restoreReviews(ctx, zr, opts, result); err != nil {
		return nil, err
	}
	if err := s.restorePictures(zr, opts, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	s.logger.Info("restore complete",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"duration", result.Duration)
	return result, nil
}

func readManifest(zr *zip.ReadCloser) (*Manifest, error) {
	rc, err := openMember(zr, manifestPath)
	if err != nil {
		return nil, ErrInvalidManifest
	}
	defer rc.Close()

	var manifest Manifest
	if err := json.UnmarshalRead(rc, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	major, _, _ := strings.Cut(manifest.Version, ".")
	currentMajor, _, _ := strings.Cut(FormatVersion, ".")
	if major != currentMajor {
		return nil, fmt.Errorf("%w: backup is %s, server reads %s", ErrVersionMismatch, manifest.Version, FormatVersion)
	}
	return &manifest, nil
}

// restoreUsers creates missing accounts. Existing accounts are never
// overwritten, regardless of mode, so live credentials survive a restore.
func (s *Service) restoreUsers(ctx context.Context, zr *zip.ReadCloser, opts RestoreOptions, result *RestoreResult) error {
	for user, err := range readLines[domain.User](zr, usersPath) {
		if err != nil {
			return fmt.Errorf("read user: %w", err)
		}

		if _, getErr := s.store.GetUser(ctx, user.ID); getErr == nil {
			result.Skipped["users"]++
			continue
		}
		if _, getErr := s.store.GetUserByEmail(ctx, user.Email); getErr == nil {
			result.Skipped["users"]++
			continue
		}

		if !opts.DryRun {
			if createErr := s.store.CreateUser(ctx, &user); createErr != nil {
				if errors.Is(createErr, store.ErrUserExists) || errors.Is(createErr, store.ErrEmailExists) {
					result.Skipped["users"]++
					continue
				}
				return fmt.Errorf("restore user %s: %w", user.ID, createErr)
			}
		}
		result.Imported["users"]++
	}
	return nil
}

func (s *Service) restoreLists(ctx context.Context, zr *zip.ReadCloser, opts RestoreOptions, result *RestoreResult) error {
	byOwner := map[string][]domain.ListEntry{}
	for entry, err := range readLines[domain.ListEntry](zr, listsPath) {
		if err != nil {
			return fmt.Errorf("read list entry: %w", err)
		}
		byOwner[entry.OwnerID] = append(byOwner[entry.OwnerID], entry)
	}

	for ownerID, restored := range byOwner {
		merged := restored
		if opts.Mode == RestoreModeMerge {
			existing, err := s.store.GetListEntries(ctx, ownerID)
			if err != nil {
				return fmt.Errorf("load list entries for %s: %w", ownerID, err)
			}
			merged = mergeListEntries(existing, restored, result)
			result.Imported["list_entries"] += len(merged) - len(existing)
		} else {
			result.Imported["list_entries"] += len(merged)
		}

		if !opts.DryRun {
			if err := s.store.SaveListEntries(ctx, ownerID, merged); err != nil {
				return fmt.Errorf("save list entries for %s: %w", ownerID, err)
			}
		}
	}
	return nil
}

// mergeListEntries keeps every existing entry and appends restored books
// not already on the list. Books join on ExternalID; entries without one
// cannot match anything and are always appended.
func mergeListEntries(existing, restored []domain.ListEntry, result *RestoreResult) []domain.ListEntry {
	merged := existing
	for _, candidate := range restored {
		found := false
		for i := range existing {
			if existing[i].SameBook(candidate.ExternalID, candidate.OwnerID) {
				found = true
				break
			}
		}
		if found {
			result.Skipped["list_entries"]++
			continue
		}
		merged = append(merged, candidate)
	}
	return merged
}

func (s *Service) restoreReviews(ctx context.Context, zr *zip.ReadCloser, opts RestoreOptions, result *RestoreResult) error {
	byOwner := map[string][]domain.ReviewEntry{}
	for review, err := range readLines[domain.ReviewEntry](zr, reviewsPath) {
		if err != nil {
			return fmt.Errorf("read review: %w", err)
		}
		byOwner[review.OwnerID] = append(byOwner[review.OwnerID], review)
	}

	for ownerID, restored := range byOwner {
		merged := restored
		if opts.Mode == RestoreModeMerge {
			existing, err := s.store.GetReviews(ctx, ownerID)
			if err != nil {
				return fmt.Errorf("load reviews for %s: %w", ownerID, err)
			}
			merged = reconcile.MergeReviews(existing, restored, reconcile.WithDeduplication())
			result.Imported["reviews"] += len(merged) - len(existing)
			result.Skipped["reviews"] += len(existing) + len(restored) - len(merged)
		} else {
			result.Imported["reviews"] += len(merged)
		}

		if !opts.DryRun {
			if err := s.store.SaveReviews(ctx, ownerID, merged); err != nil {
				return fmt.Errorf("save reviews for %s: %w", ownerID, err)
			}
		}
	}
	return nil
}

func (s *Service) restorePictures(zr *zip.ReadCloser, opts RestoreOptions, result *RestoreResult) error {
	if s.pictures == nil {
		return nil
	}

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, picturesDir) || f.FileInfo().IsDir() {
			continue
		}
		id := strings.TrimSuffix(path.Base(f.Name), ".jpg")

		if opts.Mode == RestoreModeMerge && s.pictures.Exists(id) {
			result.Skipped["pictures"]++
			continue
		}

		if !opts.DryRun {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open picture %s: %w", f.Name, err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("read picture %s: %w", f.Name, err)
			}
			if err := s.pictures.Save(id, data); err != nil {
				return fmt.Errorf("save picture %s: %w", id, err)
			}
		}
		result.Imported["pictures"]++
	}
	return nil
}
