package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressTTL keeps finished import progress readable for a day.
const ProgressTTL = 24 * time.Hour

// ImportProgress mirrors one running or finished import into redis so
// the API can report on it without touching the database.
type ImportProgress struct {
	Key           string    `json:"key"`
	Phase         string    `json:"phase"` // discovering, importing, completed, failed
	TotalRows     int64     `json:"total_rows"`
	ImportedCount int64     `json:"imported_count"`
	DroppedCount  int64     `json:"dropped_count"`
	DupeCount     int64     `json:"dupe_count"`
	Error         string    `json:"error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProgressTracker persists ImportProgress blobs in redis.
type ProgressTracker struct {
	redis *redis.Client
}

func NewProgressTracker(redisClient *redis.Client) *ProgressTracker {
	return &ProgressTracker{redis: redisClient}
}

func progressKey(key string) string {
	return "leadg:import:progress:" + key
}

// Save writes the progress blob, refreshing its TTL.
func (t *ProgressTracker) Save(ctx context.Context, p *ImportProgress) error {
	p.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := t.redis.Set(ctx, progressKey(p.Key), data, ProgressTTL).Err(); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Load reads the progress blob for one import key. Returns nil when no
// progress is recorded.
func (t *ProgressTracker) Load(ctx context.Context, key string) (*ImportProgress, error) {
	data, err := t.redis.Get(ctx, progressKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	var p ImportProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &p, nil
}
