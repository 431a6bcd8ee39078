// Command dbinspect dumps the badger job journal for offline debugging.
// It opens the journal read-only so it is safe to run against a live
// data directory.
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/1899nils/Spherix-sub000/internal/jobs"
)

func main() {
	jobsPath := os.Getenv("JOBS_PATH")
	if jobsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("resolve home directory: %v", err)
		}
		jobsPath = filepath.Join(home, "Spherix", "data", "jobs")
	}

	opts := badger.DefaultOptions(jobsPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("open job journal: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Job Journal ===")
	fmt.Println()

	total := 0
	byStatus := map[jobs.Status]int{}
	byLibrary := map[string]int{}

	err = db.View(func(txn *badger.Txn) error {
		prefix := []byte("job:")
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Index keys carry extra segments; records are job:{id}.
			if strings.HasPrefix(key, "job:idx:") {
				continue
			}

			err := item.Value(func(val []byte) error {
				var job jobs.Job
				if err := json.Unmarshal(val, &job); err != nil {
					return err
				}

				total++
				byStatus[job.Status]++
				byLibrary[job.LibraryID]++

				fmt.Printf("Job: %s\n", job.ID)
				fmt.Printf("  Library:  %s\n", job.LibraryID)
				fmt.Printf("  Status:   %s\n", job.Status)
				fmt.Printf("  Created:  %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
				if !job.FinishedAt.IsZero() {
					fmt.Printf("  Duration: %s\n", job.FinishedAt.Sub(job.StartedAt).Round(time.Millisecond))
				}
				c := job.Progress.Counters
				fmt.Printf("  Counters: files=%d new=%d updated=%d removed=%d restored=%d matched=%d linked=%d errors=%d\n",
					c.Files, c.NewTracks, c.UpdatedTracks, c.RemovedTracks,
					c.RestoredTracks, c.MatchedAlbums, c.AutoLinkedAlbums, c.Errors)
				if job.Error != "" {
					fmt.Printf("  Error:    %s\n", job.Error)
				}
				fmt.Println()
				return nil
			})
			if err != nil {
				log.Printf("read job %s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("iterate job journal: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total jobs: %d\n", total)
	for _, status := range []jobs.Status{jobs.StatusQueued, jobs.StatusRunning, jobs.StatusDone, jobs.StatusFailed} {
		if n := byStatus[status]; n > 0 {
			fmt.Printf("  %s: %d\n", status, n)
		}
	}
	fmt.Printf("Libraries seen: %d\n", len(byLibrary))
}
