// Package runrecord persists a small JSON record per run, so past
// launches can be inspected without trawling logs.
package runrecord

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Terminal states a record can carry.
const (
	StateEnd         = "end"
	StateFail        = "fail"
	StateTimeout     = "timeout"
	StateSetupFailed = "setup_failed"
	StateSubmitted   = "submitted"
)

// Record captures one launch of one job.
type Record struct {
	ID         string    `json:"id"`
	Job        string    `json:"job"`
	Mode       string    `json:"mode"`
	State      string    `json:"state"`
	ExitCode   int       `json:"exit_code"`
	SlurmJobID string    `json:"slurm_job_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRecord starts a record for a job launch.
func NewRecord(job, mode string) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Job:       job,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}
}

// Store writes records as one JSON file each under a results directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on
// first save, not here, so a render-only invocation touches nothing.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save finalizes and persists the record, returning the file path.
func (s *Store) Save(rec *Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory %q: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run record: %w", err)
	}

	path := filepath.Join(s.dir, rec.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run record: %w", err)
	}
	return path, nil
}

// Load reads a record back by ID.
func (s *Store) Load(id string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("run record %q: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("run record %q is corrupt: %w", id, err)
	}
	return &rec, nil
}

// List returns all records in the store, oldest first.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory %q: %w", s.dir, err)
	}

	var recs []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := s.Load(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].StartedAt.Before(recs[j].StartedAt) })
	return recs, nil
}
