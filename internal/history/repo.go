package history

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/store"
)

const (
	// Key is the store key holding the JSON history array.
	Key = "am2_fault_history"

	// MaxRecords is the history cap; the oldest records are evicted first.
	MaxRecords = 50
)

// Repo reads and writes the session history in a KV store.
type Repo struct {
	kv     store.KV
	logger *zap.Logger
}

// NewRepo creates a Repo over kv. A nil logger discards output.
func NewRepo(kv store.KV, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{kv: kv, logger: logger}
}

// Load returns the stored history, oldest first. A missing, corrupt or
// unreadable history yields an empty slice.
func (r *Repo) Load(ctx context.Context) []SessionRecord {
	raw, ok, err := r.kv.Get(ctx, Key)
	if err != nil {
		r.logger.Warn("history read failed", zap.Error(err))
		return []SessionRecord{}
	}
	if !ok || raw == "" {
		return []SessionRecord{}
	}

	var records []SessionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		r.logger.Warn("history corrupt, treating as empty", zap.Error(err))
		return []SessionRecord{}
	}
	if records == nil {
		records = []SessionRecord{}
	}
	return records
}

// Append adds rec to the history and trims it to MaxRecords. The returned
// error is informational; callers show results regardless.
func (r *Repo) Append(ctx context.Context, rec SessionRecord) error {
	records := append(r.Load(ctx), rec)
	if len(records) > MaxRecords {
		records = records[len(records)-MaxRecords:]
	}

	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := r.kv.Set(ctx, Key, string(b)); err != nil {
		r.logger.Warn("history write failed", zap.Error(err))
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Clear removes the stored history.
func (r *Repo) Clear(ctx context.Context) error {
	if err := r.kv.Remove(ctx, Key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Latest returns the most recent record.
func (r *Repo) Latest(ctx context.Context) (SessionRecord, bool) {
	records := r.Load(ctx)
	if len(records) == 0 {
		return SessionRecord{}, false
	}
	return records[len(records)-1], true
}
