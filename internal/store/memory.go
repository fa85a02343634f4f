package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/models"
)

// maxListLimit caps list queries against the memory store.
const maxListLimit = 1000

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in process memory. Snapshots are cloned on
// the way in and out so stored history can never be mutated by callers.
type MemoryStore struct {
	mu sync.RWMutex

	snapshots []*models.Snapshot
	summaries []models.HistoryEntry
	byID      map[int64]int
	latest    *models.Snapshot
	nextScan  int64

	alerts    []models.Alert
	nextAlert int64

	settings map[string]string

	now func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[int64]int),
		settings: make(map[string]string),
		now:      time.Now,
	}
}

// Append implements ScanStore.
func (s *MemoryStore) Append(ctx context.Context, snapshot *models.Snapshot) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.ErrPersistence(err)
	}
	if snapshot == nil {
		return 0, errors.ErrPersistence(fmt.Errorf("nil snapshot"))
	}

	// Normalized the same way the database backend reads snapshots back.
	stored := models.NewSnapshot(snapshot.Network, snapshot.ScanTime, snapshot.Clone().Devices)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextScan++
	stored.ID = s.nextScan
	s.byID[stored.ID] = len(s.snapshots)
	s.snapshots = append(s.snapshots, stored)
	s.summaries = append(s.summaries, stored.Summary())
	s.latest = stored

	return stored.ID, nil
}

// Latest implements ScanStore.
func (s *MemoryStore) Latest(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, errors.ErrNotFound("scan")
	}
	return s.latest.Clone(), nil
}

// Get implements ScanStore.
func (s *MemoryStore) Get(_ context.Context, id int64) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return nil, errors.ErrNotFound("scan")
	}
	return s.snapshots[idx].Clone(), nil
}

// List implements ScanStore.
func (s *MemoryStore) List(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	limit = NormalizeLimit(limit, maxListLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HistoryEntry, 0, min(limit, len(s.summaries)))
	for i := len(s.summaries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.summaries[i])
	}
	return out, nil
}

// Count implements ScanStore.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots), nil
}

// InsertAlerts implements AlertStore.
func (s *MemoryStore) InsertAlerts(_ context.Context, alerts []models.Alert) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range alerts {
		if _, ok := s.byID[alerts[i].ScanID]; !ok {
			return nil, errors.NewDatabaseError(errors.CodeValidation,
				fmt.Sprintf("alert references unknown scan %d", alerts[i].ScanID))
		}
	}

	out := make([]models.Alert, len(alerts))
	now := s.now().UTC()
	for i, a := range alerts {
		s.nextAlert++
		a.ID = s.nextAlert
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		s.alerts = append(s.alerts, a)
		out[i] = a
	}
	return out, nil
}

// ListAlerts implements AlertStore.
func (s *MemoryStore) ListAlerts(_ context.Context, limit int) ([]models.Alert, error) {
	limit = NormalizeLimit(limit, maxListLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, 0, min(limit, len(s.alerts)))
	for i := len(s.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.alerts[i])
	}
	return out, nil
}

// ListUnnotified implements AlertStore.
func (s *MemoryStore) ListUnnotified(_ context.Context, limit int) ([]models.Alert, error) {
	limit = NormalizeLimit(limit, maxListLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Alert{}
	for _, a := range s.alerts {
		if a.Notified {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkNotified implements AlertStore. Unknown IDs are ignored.
func (s *MemoryStore) MarkNotified(_ context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if _, ok := want[s.alerts[i].ID]; ok {
			s.alerts[i].Notified = true
		}
	}
	return nil
}

// CountUnnotified implements AlertStore.
func (s *MemoryStore) CountUnnotified(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.alerts {
		if !a.Notified {
			n++
		}
	}
	return n, nil
}

// GetSetting implements SettingsStore.
func (s *MemoryStore) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.settings[key]
	if !ok {
		return "", errors.ErrNotFound("setting")
	}
	return v, nil
}

// SetSetting implements SettingsStore.
func (s *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
