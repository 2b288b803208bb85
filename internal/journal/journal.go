// Package journal keeps a durable history of committed settings events in Badger.
//
// Entries are keyed by inverted timestamp so a forward prefix scan yields the
// newest first.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/qualcodeapp/prefs-core/internal/domain"
	"github.com/qualcodeapp/prefs-core/internal/id"
)

const eventPrefix = "event:"

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 50

// Entry is one recorded settings event.
type Entry struct {
	ID            string           `json:"id"`
	Kind          domain.EventKind `json:"kind"`
	OccurredAt    time.Time        `json:"occurred_at"`
	CorrelationID string           `json:"correlation_id"`
	Payload       json.RawMessage  `json:"payload"`
}

// Journal appends and lists settings events.
type Journal struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) a journal at path.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	return open(opts, logger)
}

// OpenInMemory opens a journal that lives only for the life of the process.
func OpenInMemory(logger *slog.Logger) (*Journal, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Journal{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends event. It has the bus handler signature so it can be
// subscribed directly.
func (j *Journal) Record(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	entryID, err := id.Generate(id.PrefixEvent)
	if err != nil {
		return err
	}

	meta := event.Metadata()
	entry := Entry{
		ID:            entryID,
		Kind:          event.Kind(),
		OccurredAt:    meta.OccurredAt,
		CorrelationID: meta.CorrelationID,
		Payload:       payload,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	// event:{inverted_timestamp}:{id}
	key := []byte(eventPrefix + invertedTimestamp(meta.OccurredAt) + ":" + entryID)

	if err := j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		j.logger.Warn("failed to record settings event",
			slog.String("kind", string(entry.Kind)),
			slog.String("error", err.Error()))
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	entries := make([]Entry, 0, limit)
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(eventPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if len(entries) >= limit {
				break
			}
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				j.logger.Warn("skipping unreadable journal entry",
					slog.String("key", string(it.Item().Key())),
					slog.String("error", err.Error()))
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return entries, nil
}

// Count returns the number of recorded entries.
func (j *Journal) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(eventPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// invertedTimestamp returns a string that sorts in descending time order.
func invertedTimestamp(t time.Time) string {
	return fmt.Sprintf("%019d", math.MaxInt64-t.UnixNano())
}
