// Package store defines the persistence contracts for snapshots, alerts and
// settings, and provides an in-memory implementation of all three.
package store

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/anstrom/netsentinel/internal/store ScanStore,AlertStore,SettingsStore

import (
	"context"

	"github.com/anstrom/netsentinel/internal/models"
)

// Settings keys.
const (
	SettingDiscordWebhookURL = "discord_webhook_url"
)

// DefaultListLimit applies when a caller passes a non-positive limit.
const DefaultListLimit = 50

// ScanStore is the append-only history of snapshots.
//
// Append is atomic: the snapshot becomes visible to Latest and Get only once
// it is completely written. Latest and Get return an errors.CodeNotFound
// error when there is nothing to return.
type ScanStore interface {
	Append(ctx context.Context, snapshot *models.Snapshot) (int64, error)
	Latest(ctx context.Context) (*models.Snapshot, error)
	Get(ctx context.Context, id int64) (*models.Snapshot, error)
	List(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	Count(ctx context.Context) (int, error)
}

// AlertStore persists alerts and their notification state.
type AlertStore interface {
	// InsertAlerts stores alerts and returns them with IDs and creation
	// times assigned. Every alert must reference an existing snapshot.
	InsertAlerts(ctx context.Context, alerts []models.Alert) ([]models.Alert, error)
	// ListAlerts returns the most recent alerts first.
	ListAlerts(ctx context.Context, limit int) ([]models.Alert, error)
	// ListUnnotified returns alerts whose dispatch has not succeeded, oldest first.
	ListUnnotified(ctx context.Context, limit int) ([]models.Alert, error)
	MarkNotified(ctx context.Context, ids []int64) error
	CountUnnotified(ctx context.Context) (int, error)
}

// SettingsStore is a string key/value map. GetSetting returns an
// errors.CodeNotFound error for unknown keys.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Store bundles every contract behind one backend.
type Store interface {
	ScanStore
	AlertStore
	SettingsStore
	Close() error
}

// NormalizeLimit clamps limit into [1, max], substituting DefaultListLimit
// for non-positive values.
func NormalizeLimit(limit, max int) int {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
