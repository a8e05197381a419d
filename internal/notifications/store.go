package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/dynbook/internal/db"
)

// ErrNotFound is returned when a notice does not exist.
var ErrNotFound = errors.New("notice not found")

// ListFilter controls which notices are returned by List.
type ListFilter struct {
	// ActiveAt, when set, limits results to notices neither dismissed nor
	// expired at that time.
	ActiveAt time.Time
	Severity Severity
	Limit    int
}

// Store persists notices so they survive a redirect between pages.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a notice. Empty ids and creation times are filled in.
func (s *Store) Create(ctx context.Context, n Notice) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Severity == "" {
		n.Severity = SeverityInfo
	}
	if n.Action == "" {
		n.Action = ActionClose
	}

	dismissed := 0
	if n.Dismissed {
		dismissed = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices (id, severity, message, action, duration_ms, dismissed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Severity), n.Message, n.Action,
		n.Duration.Milliseconds(), dismissed, n.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting notice: %w", err)
	}
	return nil
}

// GetByID retrieves a single notice.
func (s *Store) GetByID(ctx context.Context, id string) (*Notice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, severity, message, action, duration_ms, dismissed, created_at
		FROM notices WHERE id = ?`, id)

	n, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return n, err
}

// List returns notices matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Notice, error) {
	var (
		clauses []string
		args    []any
	)

	if !filter.ActiveAt.IsZero() {
		clauses = append(clauses, "dismissed = 0", "created_at + duration_ms >= ?")
		args = append(args, filter.ActiveAt.UnixMilli())
	}
	if filter.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, string(filter.Severity))
	}

	query := "SELECT id, severity, message, action, duration_ms, dismissed, created_at FROM notices"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notices: %w", err)
	}
	defer rows.Close()

	var result []Notice
	for rows.Next() {
		n, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}
	return result, rows.Err()
}

// Active returns the notices still visible at now.
func (s *Store) Active(ctx context.Context, now time.Time) ([]Notice, error) {
	return s.List(ctx, ListFilter{ActiveAt: now})
}

// Dismiss hides a notice.
func (s *Store) Dismiss(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notices SET dismissed = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("dismissing notice: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBefore removes notices created before t and returns how many were
// removed.
func (s *Store) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notices WHERE created_at < ?", t.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("deleting old notices: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Notice, error) {
	var (
		n          Notice
		severity   string
		durationMS int64
		dismissed  int
		createdMS  int64
	)

	if err := sc.Scan(&n.ID, &severity, &n.Message, &n.Action, &durationMS, &dismissed, &createdMS); err != nil {
		return nil, err
	}

	n.Severity = Severity(severity)
	n.Duration = time.Duration(durationMS) * time.Millisecond
	n.Dismissed = dismissed != 0
	n.CreatedAt = time.UnixMilli(createdMS)
	return &n, nil
}
