package jobs

import (
	"context"
	"encoding/json/v2"
	stderrors "errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/1899nils/Spherix-sub000/internal/errors"
	"github.com/1899nils/Spherix-sub000/internal/logger"
)

const (
	jobPrefix = "job:"

	// Index prefix for jobs by library.
	jobByLibraryPrefix = "job:idx:library:"
)

// Log is the Badger-backed job journal. It survives restarts so a scan's
// outcome can be inspected after the fact.
type Log struct {
	db  *badger.DB
	log *logger.Logger
}

// OpenLog opens (or creates) the job journal at path.
func OpenLog(path string, log *logger.Logger) (*Log, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Job state must survive crashes

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open job journal: %w", err)
	}

	log.Info("job journal opened", "path", path)
	return &Log{db: db, log: log}, nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Put writes a job record, overwriting any previous state.
func (l *Log) Put(_ context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	return l.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(jobKey(job.ID), data); err != nil {
			return err
		}
		return txn.Set(jobLibraryKey(job.LibraryID, job.ID), []byte{})
	})
}

// Get retrieves a job by ID.
func (l *Log) Get(_ context.Context, id string) (*Job, error) {
	var job Job
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(jobKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &job)
		})
	})
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil, errors.NotFoundf("job %s", id)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// ListByLibrary returns all jobs recorded for a library, unordered.
func (l *Log) ListByLibrary(_ context.Context, libraryID string) ([]*Job, error) {
	prefix := []byte(jobLibraryKeyPrefix(libraryID))
	var ids []string

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		job, err := l.Get(context.Background(), id)
		if err != nil {
			if stderrors.Is(err, errors.ErrNotFound) {
				continue // index entry outlived the record
			}
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

func jobKey(id string) []byte {
	return []byte(jobPrefix + id)
}

func jobLibraryKeyPrefix(libraryID string) string {
	return jobByLibraryPrefix + libraryID + ":"
}

func jobLibraryKey(libraryID, id string) []byte {
	return []byte(jobLibraryKeyPrefix(libraryID) + id)
}
