package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/critflow/studio/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one concurrent writer. A single pooled connection
	// serializes access and avoids "database is locked" errors from
	// concurrent API requests.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Slots ---

func (s *SQLiteStore) CreateSlot(ctx context.Context, slot *models.Slot) error {
	if slot.ID == "" {
		slot.ID = newULID()
	}
	if slot.Status == "" {
		slot.Status = models.SlotStatusOpen
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (id, title, content_type, reviewer, status, claimed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		slot.ID, slot.Title, slot.ContentType, slot.Reviewer, string(slot.Status),
		slot.ClaimedAt, slot.CreatedAt, slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	slot := &models.Slot{}
	var status string
	var claimedAt sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, content_type, reviewer, status, claimed_at, created_at, updated_at
		FROM slots WHERE id = ?`, id,
	).Scan(&slot.ID, &slot.Title, &slot.ContentType, &slot.Reviewer, &status, &claimedAt, &slot.CreatedAt, &slot.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("slot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	slot.Status = models.SlotStatus(status)
	if claimedAt.Valid {
		slot.ClaimedAt = &claimedAt.Time
	}
	return slot, nil
}

func (s *SQLiteStore) ListSlots(ctx context.Context, filter SlotListFilter) ([]*models.Slot, error) {
	query := `SELECT id, title, content_type, reviewer, status, claimed_at, created_at, updated_at FROM slots`
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Reviewer != "" {
		conds = append(conds, "reviewer = ?")
		args = append(args, filter.Reviewer)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var slots []*models.Slot
	for rows.Next() {
		slot := &models.Slot{}
		var status string
		var claimedAt sql.NullTime
		if err := rows.Scan(&slot.ID, &slot.Title, &slot.ContentType, &slot.Reviewer, &status, &claimedAt, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.Status = models.SlotStatus(status)
		if claimedAt.Valid {
			slot.ClaimedAt = &claimedAt.Time
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *SQLiteStore) UpdateSlot(ctx context.Context, slot *models.Slot) error {
	slot.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE slots SET title=?, content_type=?, reviewer=?, status=?, claimed_at=?, updated_at=? WHERE id=?`,
		slot.Title, slot.ContentType, slot.Reviewer, string(slot.Status), slot.ClaimedAt, slot.UpdatedAt, slot.ID,
	)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("slot %s: %w", slot.ID, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteSlot(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM slots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("slot %s: %w", id, ErrNotFound)
	}
	return nil
}

// --- Drafts ---

// PutDraft upserts the draft for a slot. Saving an identical payload
// twice is a harmless overwrite.
func (s *SQLiteStore) PutDraft(ctx context.Context, d *models.DraftRecord) error {
	d.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (slot_id, payload, format, version, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot_id) DO UPDATE SET payload=excluded.payload, format=excluded.format, version=excluded.version, updated_at=excluded.updated_at`,
		d.SlotID, d.Payload, d.Format, d.Version, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDraft(ctx context.Context, slotID string) (*models.DraftRecord, error) {
	d := &models.DraftRecord{}
	err := s.db.QueryRowContext(ctx,
		`SELECT slot_id, payload, format, version, updated_at FROM drafts WHERE slot_id = ?`, slotID,
	).Scan(&d.SlotID, &d.Payload, &d.Format, &d.Version, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("draft for slot %s: %w", slotID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) DeleteDraft(ctx context.Context, slotID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE slot_id = ?", slotID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("draft for slot %s: %w", slotID, ErrNotFound)
	}
	return nil
}

// --- Submissions ---

func (s *SQLiteStore) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	if sub.ID == "" {
		sub.ID = newULID()
	}
	sub.SubmittedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, slot_id, payload, attachments, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		sub.ID, sub.SlotID, sub.Payload, sub.Attachments, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context, slotID string) ([]*models.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slot_id, payload, attachments, submitted_at FROM submissions WHERE slot_id = ? ORDER BY submitted_at DESC`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []*models.Submission
	for rows.Next() {
		sub := &models.Submission{}
		if err := rows.Scan(&sub.ID, &sub.SlotID, &sub.Payload, &sub.Attachments, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
