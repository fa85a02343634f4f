package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/store"
)

// maxListLimit caps history and alert queries.
const maxListLimit = 1000

// JSONB wraps json.RawMessage for PostgreSQL JSONB columns.
type JSONB json.RawMessage

// Scan implements sql.Scanner.
func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSONB(nil), v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

type scanRow struct {
	ID          int64     `db:"id"`
	ScanTime    time.Time `db:"scan_time"`
	Network     string    `db:"network"`
	DeviceCount int       `db:"device_count"`
}

type deviceRow struct {
	IP          string         `db:"ip"`
	MAC         string         `db:"mac"`
	Hostname    sql.NullString `db:"hostname"`
	Vendor      string         `db:"vendor"`
	Ports       JSONB          `db:"ports"`
	RiskScore   int            `db:"risk_score"`
	RiskLevel   string         `db:"risk_level"`
	RiskReasons pq.StringArray `db:"risk_reasons"`
}

func (r *deviceRow) toDevice() (models.Device, error) {
	d := models.Device{
		IP:     r.IP,
		MAC:    r.MAC,
		Vendor: r.Vendor,
		Ports:  []models.Port{},
		Risk: models.RiskAssessment{
			Score:   r.RiskScore,
			Level:   models.RiskLevel(r.RiskLevel),
			Reasons: append([]string{}, r.RiskReasons...),
		},
	}
	if r.Hostname.Valid {
		d.Hostname = models.StringPtr(r.Hostname.String)
	}
	if len(r.Ports) > 0 {
		if err := json.Unmarshal(r.Ports, &d.Ports); err != nil {
			return d, fmt.Errorf("decode ports for %s: %w", r.IP, err)
		}
	}
	return d, nil
}

// ScanRepository stores snapshots in the scans and devices tables.
type ScanRepository struct {
	db *DB
}

// NewScanRepository creates a new scan repository.
func NewScanRepository(db *DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Append writes the snapshot and its devices in one transaction. Readers
// ordering by id only see it after commit.
func (r *ScanRepository) Append(ctx context.Context, snapshot *models.Snapshot) (int64, error) {
	if snapshot == nil {
		return 0, errors.ErrPersistence(fmt.Errorf("nil snapshot"))
	}
	summary := snapshot.Summary()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.ErrPersistence(sanitizeDBError("begin append", err))
	}
	defer func() { _ = tx.Rollback() }()

	scanQuery := `
		INSERT INTO scans (scan_time, network, device_count, high_risk_count, medium_risk_count,
		                   low_risk_count, minimal_risk_count, total_open_ports)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err = tx.QueryRowxContext(ctx, scanQuery,
		snapshot.ScanTime.UTC(), snapshot.Network, len(snapshot.Devices),
		summary.HighRiskCount, summary.MediumRiskCount, summary.LowRiskCount,
		summary.MinimalRiskCount, summary.TotalOpenPorts,
	).Scan(&id)
	if err != nil {
		return 0, errors.ErrPersistence(sanitizeDBError("insert scan", err))
	}

	deviceQuery := `
		INSERT INTO devices (scan_id, ip, mac, hostname, vendor, ports, risk_score, risk_level, risk_reasons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for i := range snapshot.Devices {
		d := &snapshot.Devices[i]
		ports, err := json.Marshal(nonNilPorts(d.Ports))
		if err != nil {
			return 0, errors.ErrPersistence(err)
		}
		var hostname sql.NullString
		if d.Hostname != nil {
			hostname = sql.NullString{String: *d.Hostname, Valid: true}
		}
		_, err = tx.ExecContext(ctx, deviceQuery,
			id, d.IP, d.MAC, hostname, d.Vendor, JSONB(ports),
			d.Risk.Score, string(d.Risk.Level), pq.Array(nonNilStrings(d.Risk.Reasons)),
		)
		if err != nil {
			return 0, errors.ErrPersistence(sanitizeDBError("insert device", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.ErrPersistence(sanitizeDBError("commit append", err))
	}
	return id, nil
}

// Latest returns the most recently appended snapshot.
func (r *ScanRepository) Latest(ctx context.Context) (*models.Snapshot, error) {
	var row scanRow
	query := `SELECT id, scan_time, network, device_count FROM scans ORDER BY id DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, notFoundOr("get latest scan", "scan", err)
	}
	return r.load(ctx, row)
}

// Get returns the snapshot with the given id.
func (r *ScanRepository) Get(ctx context.Context, id int64) (*models.Snapshot, error) {
	var row scanRow
	query := `SELECT id, scan_time, network, device_count FROM scans WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFoundOr("get scan", "scan", err)
	}
	return r.load(ctx, row)
}

func (r *ScanRepository) load(ctx context.Context, row scanRow) (*models.Snapshot, error) {
	var rows []deviceRow
	query := `
		SELECT host(ip) AS ip, mac, hostname, vendor, ports, risk_score, risk_level, risk_reasons
		FROM devices WHERE scan_id = $1 ORDER BY ip`
	if err := r.db.SelectContext(ctx, &rows, query, row.ID); err != nil {
		return nil, sanitizeDBError("get devices", err)
	}

	devices := make([]models.Device, 0, len(rows))
	for i := range rows {
		d, err := rows[i].toDevice()
		if err != nil {
			return nil, sanitizeDBError("decode device", err)
		}
		devices = append(devices, d)
	}
	sort.SliceStable(devices, func(i, j int) bool { return models.LessIP(devices[i].IP, devices[j].IP) })

	return &models.Snapshot{
		ID:          row.ID,
		ScanTime:    row.ScanTime.UTC(),
		Network:     row.Network,
		DeviceCount: len(devices),
		Devices:     devices,
	}, nil
}

// List returns history entries, most recent first.
func (r *ScanRepository) List(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	limit = store.NormalizeLimit(limit, maxListLimit)

	entries := []models.HistoryEntry{}
	query := `
		SELECT id, scan_time, network, device_count, high_risk_count, medium_risk_count,
		       low_risk_count, minimal_risk_count, total_open_ports
		FROM scans ORDER BY id DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, sanitizeDBError("list scans", err)
	}
	for i := range entries {
		entries[i].ScanTime = entries[i].ScanTime.UTC()
	}
	return entries, nil
}

// Count returns the number of stored snapshots.
func (r *ScanRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM scans`); err != nil {
		return 0, sanitizeDBError("count scans", err)
	}
	return n, nil
}

// AlertRepository stores alerts.
type AlertRepository struct {
	db *DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, scan_id, device_ip, alert_type, message, severity, notified, created_at`

// InsertAlerts stores alerts in one transaction. The scan_id foreign key
// rejects alerts for unknown snapshots.
func (r *AlertRepository) InsertAlerts(ctx context.Context, alerts []models.Alert) ([]models.Alert, error) {
	if len(alerts) == 0 {
		return []models.Alert{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, sanitizeDBError("begin insert alerts", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO alerts (scan_id, device_ip, alert_type, message, severity, notified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	out := make([]models.Alert, len(alerts))
	for i, a := range alerts {
		err := tx.QueryRowxContext(ctx, query,
			a.ScanID, a.DeviceIP, string(a.AlertType), a.Message, string(a.Severity), a.Notified,
		).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return nil, sanitizeDBError("insert alert", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out[i] = a
	}

	if err := tx.Commit(); err != nil {
		return nil, sanitizeDBError("commit alerts", err)
	}
	return out, nil
}

// ListAlerts returns the most recent alerts first.
func (r *AlertRepository) ListAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	limit = store.NormalizeLimit(limit, maxListLimit)

	alerts := []models.Alert{}
	query := `SELECT ` + alertColumns + ` FROM alerts ORDER BY id DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &alerts, query, limit); err != nil {
		return nil, sanitizeDBError("list alerts", err)
	}
	return alerts, nil
}

// ListUnnotified returns undelivered alerts, oldest first.
func (r *AlertRepository) ListUnnotified(ctx context.Context, limit int) ([]models.Alert, error) {
	limit = store.NormalizeLimit(limit, maxListLimit)

	alerts := []models.Alert{}
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE notified = FALSE ORDER BY id ASC LIMIT $1`
	if err := r.db.SelectContext(ctx, &alerts, query, limit); err != nil {
		return nil, sanitizeDBError("list unnotified alerts", err)
	}
	return alerts, nil
}

// MarkNotified flags the given alerts as delivered.
func (r *AlertRepository) MarkNotified(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE alerts SET notified = TRUE WHERE id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return sanitizeDBError("mark alerts notified", err)
	}
	return nil
}

// CountUnnotified returns the number of undelivered alerts.
func (r *AlertRepository) CountUnnotified(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM alerts WHERE notified = FALSE`); err != nil {
		return 0, sanitizeDBError("count unnotified alerts", err)
	}
	return n, nil
}

// SettingsRepository stores key/value settings.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting returns the value stored under key.
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key); err != nil {
		return "", notFoundOr("get setting", "setting", err)
	}
	return value, nil
}

// SetSetting inserts or replaces the value stored under key.
func (r *SettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return sanitizeDBError("set setting", err)
	}
	return nil
}

// Store combines the repositories into a store.Store.
type Store struct {
	*ScanRepository
	*AlertRepository
	*SettingsRepository
	db *DB
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an open connection.
func NewStore(db *DB) *Store {
	return &Store{
		ScanRepository:     NewScanRepository(db),
		AlertRepository:    NewAlertRepository(db),
		SettingsRepository: NewSettingsRepository(db),
		db:                 db,
	}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func notFoundOr(operation, entity string, err error) error {
	if err == sql.ErrNoRows {
		return errors.ErrNotFound(entity)
	}
	return sanitizeDBError(operation, err)
}

func nonNilPorts(p []models.Port) []models.Port {
	if p == nil {
		return []models.Port{}
	}
	return p
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// OpenStore returns the store selected by cfg.Driver. The postgres driver
// connects and applies pending migrations first.
func OpenStore(ctx context.Context, cfg *Config, logger *logging.Logger) (store.Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		logging.OrDefault(logger).InfoDatabase("Using in-memory store; history is lost on restart")
		return store.NewMemoryStore(), nil
	case DriverPostgres:
		database, err := ConnectAndMigrate(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewStore(database), nil
	default:
		return nil, errors.ErrConfigInvalid("database.driver", cfg.Driver)
	}
}
