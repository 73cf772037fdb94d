// Package main provides a read-only inspection tool for the Shelfmark database.
//
// Usage:
//
//	DATA_PATH=~/Shelfmark/data go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Shelfmark/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	userCount := 0
	ownersWithLists := 0
	totalEntries := 0
	statusCounts := map[domain.ReadingStatus]int{}
	ownersWithReviews := 0
	totalReviews := 0

	err = db.View(func(txn *badger.Txn) error {
		if err := scanUsers(txn, &userCount); err != nil {
			return err
		}
		if err := scanLists(txn, &ownersWithLists, &totalEntries, statusCounts); err != nil {
			return err
		}
		return scanReviews(txn, &ownersWithReviews, &totalReviews)
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Users: %d\n", userCount)
	fmt.Printf("Owners with saved books: %d\n", ownersWithLists)
	fmt.Printf("Total saved books: %d\n", totalEntries)
	for _, status := range []domain.ReadingStatus{domain.StatusToBeRead, domain.StatusReading, domain.StatusRead} {
		fmt.Printf("  %s: %d\n", status, statusCounts[status])
	}
	fmt.Printf("Owners with reviews: %d\n", ownersWithReviews)
	fmt.Printf("Total reviews: %d\n", totalReviews)
}

func scanUsers(txn *badger.Txn, count *int) error {
	prefix := []byte("user:")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := string(item.Key())

		// Skip index keys
		if strings.HasPrefix(key[len(prefix):], "idx:") {
			continue
		}

		err := item.Value(func(val []byte) error {
			var user domain.User
			if err := json.Unmarshal(val, &user); err != nil {
				return err
			}
			*count++
			if *count <= 5 {
				fmt.Printf("User: %s\n", user.Name())
				fmt.Printf("  ID: %s\n", user.ID)
				fmt.Printf("  Email: %s\n", user.Email)
				fmt.Println()
			}
			return nil
		})
		if err != nil {
			log.Printf("Error reading user %s: %v", key, err)
		}
	}
	return nil
}

func scanLists(txn *badger.Txn, owners, total *int, statusCounts map[domain.ReadingStatus]int) error {
	prefix := []byte("list:")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := string(item.Key())

		err := item.Value(func(val []byte) error {
			var entries []domain.ListEntry
			if err := json.Unmarshal(val, &entries); err != nil {
				return err
			}
			*owners++
			*total += len(entries)
			for i := range entries {
				statusCounts[entries[i].Status]++
			}
			return nil
		})
		if err != nil {
			log.Printf("Error reading list %s: %v", key, err)
		}
	}
	return nil
}

func scanReviews(txn *badger.Txn, owners, total *int) error {
	prefix := []byte("review:")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := string(item.Key())

		err := item.Value(func(val []byte) error {
			var reviews []domain.ReviewEntry
			if err := json.Unmarshal(val, &reviews); err != nil {
				return err
			}
			*owners++
			*total += len(reviews)
			return nil
		})
		if err != nil {
			log.Printf("Error reading reviews %s: %v", key, err)
		}
	}
	return nil
}
